package indicator

import "math"

// MACD calculates Moving Average Convergence Divergence:
// line = EMA(fast) − EMA(slow), signal = EMA(line, signalPeriod),
// histogram = line − signal. All three series are aligned with the input.
func MACD(prices []float64, fast, slow, signalPeriod int) (line, signal, histogram []float64) {
	n := len(prices)
	line = nanSeries(n)
	emaFast := EMA(prices, fast)
	emaSlow := EMA(prices, slow)
	for i := 0; i < n; i++ {
		if !math.IsNaN(emaFast[i]) && !math.IsNaN(emaSlow[i]) {
			line[i] = emaFast[i] - emaSlow[i]
		}
	}
	signal = EMA(line, signalPeriod)
	histogram = nanSeries(n)
	for i := 0; i < n; i++ {
		if !math.IsNaN(line[i]) && !math.IsNaN(signal[i]) {
			histogram[i] = line[i] - signal[i]
		}
	}
	return line, signal, histogram
}
