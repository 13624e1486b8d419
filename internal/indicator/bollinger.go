package indicator

import "math"

// Bollinger calculates Bollinger Bands: middle is the simple moving average,
// upper/lower are middle ± k times the rolling population standard deviation.
// Upper and lower are symmetric around the middle band by construction.
func Bollinger(prices []float64, period int, k float64) (upper, middle, lower []float64) {
	n := len(prices)
	middle = RollingMean(prices, period)
	std := RollingStd(prices, period)
	upper = nanSeries(n)
	lower = nanSeries(n)
	for i := 0; i < n; i++ {
		if !math.IsNaN(middle[i]) && !math.IsNaN(std[i]) {
			upper[i] = middle[i] + k*std[i]
			lower[i] = middle[i] - k*std[i]
		}
	}
	return upper, middle, lower
}
