package indicator

import "math"

// Divergence classifies a price/indicator disagreement over a trailing window.
type Divergence int

const (
	DivergenceNone Divergence = iota
	DivergenceBullish
	DivergenceBearish
)

func (d Divergence) String() string {
	switch d {
	case DivergenceBullish:
		return "bullish"
	case DivergenceBearish:
		return "bearish"
	default:
		return "none"
	}
}

// DetectDivergence inspects the trailing lookback samples of prices and an
// aligned indicator series.
//
// Bullish: of the two lowest prices in the window, the higher one carries a
// lower indicator value than the lower one (price holds a higher low while
// momentum weakens). Bearish is the mirror over the two highest prices.
//
// The extreme pair is ordered by value, not by time of occurrence, so the
// comparison can run against chronology. That is the established behavior of
// this rule and callers depend on it; do not reorder by timestamp.
//
// Returns DivergenceNone when the series is shorter than twice the lookback,
// either pair is incomplete, or neither pattern holds.
func DetectDivergence(prices, ind []float64, lookback int) Divergence {
	if lookback < 2 || len(prices) < lookback*2 || len(ind) != len(prices) {
		return DivergenceNone
	}
	start := len(prices) - lookback

	lo1, lo2 := extremePair(prices[start:], true)
	if lo1 >= 0 && lo2 >= 0 {
		p1, p2 := prices[start+lo1], prices[start+lo2]
		v1, v2 := ind[start+lo1], ind[start+lo2]
		if p2 > p1 && v2 < v1 {
			return DivergenceBullish
		}
	}

	hi1, hi2 := extremePair(prices[start:], false)
	if hi1 >= 0 && hi2 >= 0 {
		p1, p2 := prices[start+hi1], prices[start+hi2]
		v1, v2 := ind[start+hi1], ind[start+hi2]
		if p2 < p1 && v2 > v1 {
			return DivergenceBearish
		}
	}

	return DivergenceNone
}

// extremePair returns the indices of the most and second-most extreme defined
// values in win (lowest two when smallest, highest two otherwise). Earlier
// positions win ties. Returns -1 indices when fewer than two values are defined.
func extremePair(win []float64, smallest bool) (first, second int) {
	first, second = -1, -1
	better := func(a, b float64) bool {
		if smallest {
			return a < b
		}
		return a > b
	}
	for i, v := range win {
		if math.IsNaN(v) {
			continue
		}
		switch {
		case first < 0:
			first = i
		case better(v, win[first]):
			second = first
			first = i
		case second < 0 || better(v, win[second]):
			second = i
		}
	}
	return first, second
}
