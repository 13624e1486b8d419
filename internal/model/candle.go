package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Candle represents a single OHLCV candle for one symbol at a fixed interval.
// Prices and volume are float64 — all indicator math downstream is floating-point.
type Candle struct {
	Symbol string    `json:"symbol"`
	TS     time.Time `json:"ts"` // bucket open time (UTC, interval-aligned)
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// JSON returns the JSON-encoded candle (ignoring errors for hot-path usage).
func (c *Candle) JSON() []byte {
	b, _ := json.Marshal(c)
	return b
}

// Validate checks OHLC consistency of a single candle.
func (c *Candle) Validate() error {
	if c.High < c.Low {
		return fmt.Errorf("candle %s@%s: high %.8f < low %.8f", c.Symbol, c.TS, c.High, c.Low)
	}
	if c.High < c.Open || c.High < c.Close {
		return fmt.Errorf("candle %s@%s: high %.8f below open/close", c.Symbol, c.TS, c.High)
	}
	if c.Low > c.Open || c.Low > c.Close {
		return fmt.Errorf("candle %s@%s: low %.8f above open/close", c.Symbol, c.TS, c.Low)
	}
	if c.Volume < 0 {
		return fmt.Errorf("candle %s@%s: negative volume %.8f", c.Symbol, c.TS, c.Volume)
	}
	return nil
}
