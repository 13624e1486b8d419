package indicator

import "math"

// Rolling primitives shared by the indicators and the strategies.
//
// Each returns a series aligned with the input: position i holds the aggregate
// of values[i-period+1..i], or NaN while the window is not yet full or any
// value inside it is unavailable. The windows here are small (tens of samples),
// so the direct per-position scan is the whole story — no incremental state.

// RollingMean computes the simple moving average over a trailing window.
func RollingMean(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	if period <= 0 {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		sum, ok := windowSum(values[i-period+1 : i+1])
		if ok {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// RollingStd computes the rolling population standard deviation.
func RollingStd(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	if period <= 0 {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		win := values[i-period+1 : i+1]
		sum, ok := windowSum(win)
		if !ok {
			continue
		}
		mean := sum / float64(period)
		var sq float64
		for _, v := range win {
			d := v - mean
			sq += d * d
		}
		out[i] = math.Sqrt(sq / float64(period))
	}
	return out
}

// RollingMax computes the rolling maximum over a trailing window.
func RollingMax(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	if period <= 0 {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		best := math.Inf(-1)
		ok := true
		for _, v := range values[i-period+1 : i+1] {
			if math.IsNaN(v) {
				ok = false
				break
			}
			if v > best {
				best = v
			}
		}
		if ok {
			out[i] = best
		}
	}
	return out
}

// RollingMin computes the rolling minimum over a trailing window.
func RollingMin(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	if period <= 0 {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		best := math.Inf(1)
		ok := true
		for _, v := range values[i-period+1 : i+1] {
			if math.IsNaN(v) {
				ok = false
				break
			}
			if v < best {
				best = v
			}
		}
		if ok {
			out[i] = best
		}
	}
	return out
}

// windowSum sums a window, reporting false if any value is unavailable.
func windowSum(win []float64) (float64, bool) {
	var sum float64
	for _, v := range win {
		if math.IsNaN(v) {
			return 0, false
		}
		sum += v
	}
	return sum, true
}
