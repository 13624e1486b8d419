// Package strategy provides the signal-generation engine: a common Signal
// contract, the Strategy interface every rule set implements, and four
// independent strategy variants evaluated over trailing candle windows.
//
// Strategies are stateless rule evaluators. Their only configuration is a set
// of numeric parameters fixed at construction, so evaluating the same window
// twice yields the same signal (or none both times). Returning no signal is a
// normal outcome, not an error.
package strategy

import (
	"encoding/json"
	"errors"
	"math"
	"time"

	"signal-engine/internal/model"
)

// Direction is the side of a trade signal.
type Direction string

const (
	Long  Direction = "LONG"
	Short Direction = "SHORT"
)

// ErrInvalidParameter is returned by strategy constructors for non-positive
// or inconsistent parameters. Construction fails fast — parameters are never
// silently clamped.
var ErrInvalidParameter = errors.New("invalid strategy parameter")

// Signal is the common output contract of every strategy: an immutable value
// created fresh per evaluation, describing a discretionary trade.
//
// Invariant: StopLoss and TakeProfit sit on the correct side of EntryPrice —
// stop below and take above entry for Long, mirrored for Short.
type Signal struct {
	Strategy   string    `json:"strategy"`
	Symbol     string    `json:"symbol"`
	TS         time.Time `json:"ts"`
	Direction  Direction `json:"direction"`
	EntryPrice float64   `json:"entry_price"`
	StopLoss   float64   `json:"stop_loss"`
	TakeProfit float64   `json:"take_profit"`
	Confidence float64   `json:"confidence"` // 0..1

	// Meta carries strategy-specific measurements (volume_ratio, rsi,
	// bb_width, ema values) without widening the fixed contract.
	Meta map[string]float64 `json:"meta,omitempty"`
}

// JSON returns the JSON-encoded signal (ignoring errors for hot-path usage).
func (s *Signal) JSON() []byte {
	b, _ := json.Marshal(s)
	return b
}

// Strategy is the capability contract all strategy variants implement,
// enabling uniform dispatch for batch evaluation.
type Strategy interface {
	// Name returns the unique name of the strategy.
	Name() string

	// GenerateSignal evaluates the most recent state of the window.
	// Returns nil when preconditions (minimum history, rule conditions)
	// are not met.
	GenerateSignal(window []model.Candle) *Signal

	// CalculateStopLoss computes the protective stop for an entry at
	// entryPrice in the given direction, using the window's recent extremes.
	CalculateStopLoss(window []model.Candle, entryPrice float64, dir Direction) float64

	// CalculateTakeProfit projects the profit target from the risk distance:
	// reward = |entry − stop| × riskReward, added above entry for Long
	// (entry > stop), subtracted below for Short.
	CalculateTakeProfit(entryPrice, stopLoss, riskReward float64) float64
}

// takeProfit is the shared risk/reward projection used by every variant.
// Zero risk distance yields zero reward: the target collapses onto the entry
// rather than producing a division artifact.
func takeProfit(entry, stop, riskReward float64) float64 {
	risk := math.Abs(entry - stop)
	reward := risk * riskReward
	if entry > stop {
		return entry + reward
	}
	return entry - reward
}

// trailingMean averages the last n values. NaN when fewer than n values exist
// or any of them is unavailable.
func trailingMean(values []float64, n int) float64 {
	if n <= 0 || len(values) < n {
		return math.NaN()
	}
	var sum float64
	for _, v := range values[len(values)-n:] {
		if math.IsNaN(v) {
			return math.NaN()
		}
		sum += v
	}
	return sum / float64(n)
}

// trailingMax returns the maximum of the last n values, NaN when unavailable.
func trailingMax(values []float64, n int) float64 {
	if n <= 0 || len(values) < n {
		return math.NaN()
	}
	best := math.Inf(-1)
	for _, v := range values[len(values)-n:] {
		if math.IsNaN(v) {
			return math.NaN()
		}
		if v > best {
			best = v
		}
	}
	return best
}

// trailingMin returns the minimum of the last n values, NaN when unavailable.
func trailingMin(values []float64, n int) float64 {
	if n <= 0 || len(values) < n {
		return math.NaN()
	}
	best := math.Inf(1)
	for _, v := range values[len(values)-n:] {
		if math.IsNaN(v) {
			return math.NaN()
		}
		if v < best {
			best = v
		}
	}
	return best
}
