// Package indicator provides technical indicator calculations over numeric
// series extracted from candle windows.
//
// All functions are pure and deterministic: same input, same output, no state.
// Windowed computations look only backward. Output series are aligned with the
// input; positions with insufficient history carry NaN as the explicit
// "unavailable" marker rather than a fabricated value. Callers test positions
// with Defined before using them.
package indicator

import "math"

// Defined reports whether a series position holds a computed value.
func Defined(v float64) bool {
	return !math.IsNaN(v)
}

// nanSeries allocates a series of n unavailable positions.
func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
