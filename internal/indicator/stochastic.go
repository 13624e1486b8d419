package indicator

import "math"

// Stochastic calculates the Stochastic Oscillator:
// %K = 100·(close − lowestLow)/(highestHigh − lowestLow) over kPeriod,
// %D = rolling mean of %K over dPeriod.
// In a flat market (highestHigh == lowestLow) %K has no defined position
// within the range, so the position stays unavailable instead of dividing
// by zero.
func Stochastic(high, low, close []float64, kPeriod, dPeriod int) (k, d []float64) {
	n := len(close)
	k = nanSeries(n)
	if len(high) != n || len(low) != n {
		return k, nanSeries(n)
	}
	hh := RollingMax(high, kPeriod)
	ll := RollingMin(low, kPeriod)
	for i := 0; i < n; i++ {
		if math.IsNaN(hh[i]) || math.IsNaN(ll[i]) {
			continue
		}
		rng := hh[i] - ll[i]
		if rng == 0 {
			continue // flat market, %K undefined
		}
		k[i] = 100 * (close[i] - ll[i]) / rng
	}
	d = RollingMean(k, dPeriod)
	return k, d
}
