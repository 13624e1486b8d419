package indicator

import "math"

// RSI calculates the Relative Strength Index: the rolling mean of positive
// price deltas over the rolling mean of negative deltas, mapped into 0..100.
// Uses plain rolling means over the trailing period deltas (Wilder-style
// averaging, not exponential smoothing).
//
// A position is defined once period deltas precede it, i.e. from index period.
// When the mean loss is zero the RSI is 100 by definition.
func RSI(prices []float64, period int) []float64 {
	out := nanSeries(len(prices))
	if period <= 0 {
		return out
	}
	for i := period; i < len(prices); i++ {
		var gain, loss float64
		ok := true
		for j := i - period + 1; j <= i; j++ {
			d := prices[j] - prices[j-1]
			if math.IsNaN(d) {
				ok = false
				break
			}
			if d > 0 {
				gain += d
			} else {
				loss -= d
			}
		}
		if !ok {
			continue
		}
		avgGain := gain / float64(period)
		avgLoss := loss / float64(period)
		if avgLoss == 0 {
			out[i] = 100
			continue
		}
		rs := avgGain / avgLoss
		out[i] = 100 - 100/(1+rs)
	}
	return out
}
