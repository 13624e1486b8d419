package indicator

import "math"

// ATR calculates the Average True Range: the rolling mean of the true range,
// where TR = max(high−low, |high−prevClose|, |low−prevClose|). The first
// position has no previous close, so its TR is just high−low.
// ATR is never negative wherever defined.
func ATR(high, low, close []float64, period int) []float64 {
	n := len(close)
	if len(high) != n || len(low) != n {
		return nanSeries(n)
	}
	tr := make([]float64, n)
	for i := 0; i < n; i++ {
		hl := high[i] - low[i]
		if i == 0 {
			tr[i] = hl
			continue
		}
		hc := math.Abs(high[i] - close[i-1])
		lc := math.Abs(low[i] - close[i-1])
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}
	return RollingMean(tr, period)
}
