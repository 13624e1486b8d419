package indicator

import "math"

// EMA calculates the Exponential Moving Average with smoothing factor
// 2/(period+1). The recurrence is seeded with the first available value, so
// the output is defined from the first defined input position onward.
// Unavailable input positions stay unavailable and do not advance the state.
func EMA(prices []float64, period int) []float64 {
	out := nanSeries(len(prices))
	if period <= 0 {
		return out
	}
	factor := 2.0 / float64(period+1)
	seeded := false
	var prev float64
	for i, p := range prices {
		if math.IsNaN(p) {
			continue
		}
		if !seeded {
			prev = p
			seeded = true
		} else {
			prev += factor * (p - prev)
		}
		out[i] = prev
	}
	return out
}
