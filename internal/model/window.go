// Package model defines the market data types shared across the engine:
// candles, ordered candle windows, and column extraction for indicator input.
package model

import "fmt"

// Closes extracts the close column from a candle window.
func Closes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

// Highs extracts the high column from a candle window.
func Highs(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.High
	}
	return out
}

// Lows extracts the low column from a candle window.
func Lows(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Low
	}
	return out
}

// Volumes extracts the volume column from a candle window.
func Volumes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Volume
	}
	return out
}

// ValidateWindow checks that a candle window is usable as strategy input:
// strictly ascending timestamps and per-candle OHLC consistency.
// Interval gaps are the data source's responsibility; ordering is checked here
// because every rolling computation assumes it.
func ValidateWindow(candles []Candle) error {
	for i := range candles {
		if err := candles[i].Validate(); err != nil {
			return err
		}
		if i > 0 && !candles[i].TS.After(candles[i-1].TS) {
			return fmt.Errorf("window not strictly ascending at index %d: %s <= %s",
				i, candles[i].TS, candles[i-1].TS)
		}
	}
	return nil
}
