package indicator

import (
	"math"
	"testing"
)

// ────────────────────────────────────────────────────────────
// Helpers
// ────────────────────────────────────────────────────────────

func assertClose(t *testing.T, label string, got, want, tol float64) {
	t.Helper()
	if math.IsNaN(got) {
		t.Errorf("%s: got NaN, want %.6f", label, want)
		return
	}
	if math.Abs(got-want) > tol {
		t.Errorf("%s: got %.6f, want %.6f (tol=%.6f, diff=%.6f)", label, got, want, tol, math.Abs(got-want))
	}
}

func assertNaN(t *testing.T, label string, got float64) {
	t.Helper()
	if !math.IsNaN(got) {
		t.Errorf("%s: got %.6f, want NaN", label, got)
	}
}

func constSeries(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// ────────────────────────────────────────────────────────────
// Rolling primitives
// ────────────────────────────────────────────────────────────

func TestRollingMean_Correctness(t *testing.T) {
	// Prices: 100, 102, 104, 103, 105
	// Mean(3) i=2: (100+102+104)/3 = 102
	// Mean(3) i=3: (102+104+103)/3 = 103
	// Mean(3) i=4: (104+103+105)/3 = 104
	got := RollingMean([]float64{100, 102, 104, 103, 105}, 3)
	assertNaN(t, "mean i=0", got[0])
	assertNaN(t, "mean i=1", got[1])
	assertClose(t, "mean i=2", got[2], 102, 1e-9)
	assertClose(t, "mean i=3", got[3], 103, 1e-9)
	assertClose(t, "mean i=4", got[4], 104, 1e-9)
}

func TestRollingStd_Population(t *testing.T) {
	// Values 1,2,3: mean 2, population variance (1+0+1)/3, std = sqrt(2/3).
	got := RollingStd([]float64{1, 2, 3, 4}, 3)
	assertClose(t, "std i=2", got[2], math.Sqrt(2.0/3.0), 1e-9)
	assertClose(t, "std i=3", got[3], math.Sqrt(2.0/3.0), 1e-9)
}

func TestRolling_NaNPoisonsWindow(t *testing.T) {
	vals := []float64{1, math.NaN(), 3, 4, 5}
	assertNaN(t, "mean over NaN", RollingMean(vals, 3)[2])
	assertNaN(t, "max over NaN", RollingMax(vals, 3)[3])
	// window 2..4 has no NaN
	assertClose(t, "mean past NaN", RollingMean(vals, 3)[4], 4, 1e-9)
	assertClose(t, "min past NaN", RollingMin(vals, 3)[4], 3, 1e-9)
}

// ────────────────────────────────────────────────────────────
// RSI
// ────────────────────────────────────────────────────────────

func TestRSI_Correctness_Period3(t *testing.T) {
	// Prices: 10, 12, 11, 13, 14, 12
	// i=3 deltas (+2,-1,+2): avgGain 4/3, avgLoss 1/3, RS=4, RSI=80
	// i=4 deltas (-1,+2,+1): avgGain 1, avgLoss 1/3, RS=3, RSI=75
	// i=5 deltas (+2,+1,-2): avgGain 1, avgLoss 2/3, RS=1.5, RSI=60
	got := RSI([]float64{10, 12, 11, 13, 14, 12}, 3)
	for i := 0; i < 3; i++ {
		assertNaN(t, "rsi warmup", got[i])
	}
	assertClose(t, "rsi i=3", got[3], 80, 1e-9)
	assertClose(t, "rsi i=4", got[4], 75, 1e-9)
	assertClose(t, "rsi i=5", got[5], 60, 1e-9)
}

func TestRSI_AllGains_Is100(t *testing.T) {
	got := RSI([]float64{1, 2, 3, 4, 5, 6}, 3)
	assertClose(t, "rsi monotone up", got[5], 100, 1e-9)
}

func TestRSI_FlatSeries_Is100(t *testing.T) {
	// Zero deltas mean zero average loss, which maps to 100 by definition.
	got := RSI(constSeries(100, 30), 14)
	assertClose(t, "rsi flat", got[29], 100, 1e-9)
}

func TestRSI_Bounds(t *testing.T) {
	prices := []float64{50, 53, 47, 60, 41, 55, 39, 62, 44, 58, 43, 61, 40, 59, 45, 57}
	for i, v := range RSI(prices, 5) {
		if math.IsNaN(v) {
			continue
		}
		if v < 0 || v > 100 {
			t.Errorf("rsi i=%d out of bounds: %.6f", i, v)
		}
	}
}

// ────────────────────────────────────────────────────────────
// EMA
// ────────────────────────────────────────────────────────────

func TestEMA_Correctness_Period3(t *testing.T) {
	// factor = 2/4 = 0.5, seeded with the first value:
	// 100, 101, 102.5, 102.75, 103.875
	got := EMA([]float64{100, 102, 104, 103, 105}, 3)
	want := []float64{100, 101, 102.5, 102.75, 103.875}
	for i := range want {
		assertClose(t, "ema", got[i], want[i], 1e-9)
	}
}

func TestEMA_ConstantSeries_IsConstant(t *testing.T) {
	for _, v := range EMA(constSeries(42, 25), 5) {
		assertClose(t, "ema constant", v, 42, 1e-12)
	}
}

func TestEMA_SkipsNaNWithoutAdvancing(t *testing.T) {
	got := EMA([]float64{math.NaN(), 100, math.NaN(), 102}, 3)
	assertNaN(t, "ema i=0", got[0])
	assertClose(t, "ema seeds at first defined", got[1], 100, 1e-9)
	assertNaN(t, "ema i=2", got[2])
	assertClose(t, "ema i=3", got[3], 101, 1e-9) // 100 + 0.5*(102-100)
}

// ────────────────────────────────────────────────────────────
// MACD
// ────────────────────────────────────────────────────────────

func TestMACD_HistogramIdentity(t *testing.T) {
	prices := []float64{100, 103, 101, 106, 104, 109, 107, 112, 110, 115, 111, 117, 113, 119}
	line, signal, hist := MACD(prices, 3, 6, 4)
	for i := range prices {
		if math.IsNaN(hist[i]) {
			continue
		}
		assertClose(t, "hist = line - signal", hist[i], line[i]-signal[i], 1e-12)
	}
}

func TestMACD_ConstantSeries_IsZero(t *testing.T) {
	line, signal, hist := MACD(constSeries(100, 40), 12, 26, 9)
	assertClose(t, "line", line[39], 0, 1e-12)
	assertClose(t, "signal", signal[39], 0, 1e-12)
	assertClose(t, "hist", hist[39], 0, 1e-12)
}

// ────────────────────────────────────────────────────────────
// Bollinger Bands
// ────────────────────────────────────────────────────────────

func TestBollinger_Correctness(t *testing.T) {
	// Values 1,2,3 with k=2: middle 2, population std sqrt(2/3)=0.8164966.
	// Upper = 3.6329932, lower = 0.3670068.
	upper, middle, lower := Bollinger([]float64{1, 2, 3, 4}, 3, 2)
	assertNaN(t, "upper warmup", upper[1])
	assertClose(t, "middle i=2", middle[2], 2, 1e-6)
	assertClose(t, "upper i=2", upper[2], 3.6329932, 1e-6)
	assertClose(t, "lower i=2", lower[2], 0.3670068, 1e-6)
}

func TestBollinger_Symmetry(t *testing.T) {
	prices := []float64{100, 105, 95, 110, 90, 108, 97, 104, 99, 106}
	upper, middle, lower := Bollinger(prices, 4, 2.5)
	for i := range prices {
		if math.IsNaN(middle[i]) {
			continue
		}
		assertClose(t, "band symmetry", upper[i]-middle[i], middle[i]-lower[i], 1e-9)
	}
}

// ────────────────────────────────────────────────────────────
// ATR
// ────────────────────────────────────────────────────────────

func TestATR_Correctness_Period3(t *testing.T) {
	// Candles (H,L,C): (10,8,9) (11,9,10) (12,9,11) (14,11,12)
	// TR: 2 (first: high-low), 2, 3, 3
	// ATR i=2: (2+2+3)/3 = 2.3333, ATR i=3: (2+3+3)/3 = 2.6667
	high := []float64{10, 11, 12, 14}
	low := []float64{8, 9, 9, 11}
	close := []float64{9, 10, 11, 12}
	got := ATR(high, low, close, 3)
	assertNaN(t, "atr warmup", got[1])
	assertClose(t, "atr i=2", got[2], 7.0/3.0, 1e-9)
	assertClose(t, "atr i=3", got[3], 8.0/3.0, 1e-9)
}

func TestATR_NeverNegative(t *testing.T) {
	high := []float64{10, 15, 9, 20, 8, 14, 11, 17}
	low := []float64{7, 10, 6, 12, 5, 9, 8, 13}
	close := []float64{9, 12, 8, 18, 6, 13, 10, 15}
	for i, v := range ATR(high, low, close, 3) {
		if !math.IsNaN(v) && v < 0 {
			t.Errorf("atr i=%d negative: %.6f", i, v)
		}
	}
}

func TestATR_LengthMismatch_AllNaN(t *testing.T) {
	got := ATR([]float64{1, 2}, []float64{1, 2, 3}, []float64{1, 2, 3}, 2)
	for i, v := range got {
		assertNaN(t, "atr mismatch i="+string(rune('0'+i)), v)
	}
}

// ────────────────────────────────────────────────────────────
// Stochastic
// ────────────────────────────────────────────────────────────

func TestStochastic_Correctness(t *testing.T) {
	// H: 10,11,12,13  L: 8,9,9,11  C: 9,10,12,12
	// i=2: hh=12 ll=8, %K = 100*(12-8)/4 = 100
	// i=3: hh=13 ll=9, %K = 100*(12-9)/4 = 75
	// %D(2) i=3: (100+75)/2 = 87.5
	k, d := Stochastic([]float64{10, 11, 12, 13}, []float64{8, 9, 9, 11}, []float64{9, 10, 12, 12}, 3, 2)
	assertNaN(t, "k warmup", k[1])
	assertClose(t, "k i=2", k[2], 100, 1e-9)
	assertClose(t, "k i=3", k[3], 75, 1e-9)
	assertNaN(t, "d warmup", d[2])
	assertClose(t, "d i=3", d[3], 87.5, 1e-9)
}

func TestStochastic_FlatRange_Undefined(t *testing.T) {
	// highestHigh == lowestLow: no position within a zero-width range.
	k, _ := Stochastic(constSeries(100, 5), constSeries(100, 5), constSeries(100, 5), 3, 2)
	for i, v := range k {
		assertNaN(t, "flat %K i="+string(rune('0'+i)), v)
	}
}

// ────────────────────────────────────────────────────────────
// Defined
// ────────────────────────────────────────────────────────────

func TestDefined(t *testing.T) {
	if Defined(math.NaN()) {
		t.Error("NaN must not be defined")
	}
	if !Defined(0) || !Defined(-1.5) {
		t.Error("finite values must be defined")
	}
}
