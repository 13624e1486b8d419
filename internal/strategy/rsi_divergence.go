package strategy

import (
	"fmt"

	"signal-engine/internal/indicator"
	"signal-engine/internal/model"
)

const (
	rsiDivergenceLookback = 10
	rsiStopWindow         = 10
	rsiRiskReward         = 3.0
)

// RSIDivergenceConfig holds the tunable parameters of the RSI divergence
// strategy.
type RSIDivergenceConfig struct {
	Period     int
	Oversold   float64
	Overbought float64
}

// RSIDivergence signals on price/RSI divergence near the key RSI levels.
//
// Long: bullish divergence while RSI is below the overbought threshold —
// confidence 0.7 when RSI is also oversold, 0.5 otherwise. Short mirrors with
// bearish divergence above the oversold threshold.
type RSIDivergence struct {
	cfg RSIDivergenceConfig
}

// NewRSIDivergence validates the configuration and builds the strategy.
func NewRSIDivergence(cfg RSIDivergenceConfig) (*RSIDivergence, error) {
	if cfg.Period <= 0 {
		return nil, fmt.Errorf("%w: RSI period %d must be positive", ErrInvalidParameter, cfg.Period)
	}
	if cfg.Oversold <= 0 || cfg.Overbought <= 0 || cfg.Oversold >= cfg.Overbought {
		return nil, fmt.Errorf("%w: RSI thresholds oversold=%.2f overbought=%.2f", ErrInvalidParameter, cfg.Oversold, cfg.Overbought)
	}
	return &RSIDivergence{cfg: cfg}, nil
}

func (s *RSIDivergence) Name() string { return "RSI_Divergence" }

func (s *RSIDivergence) GenerateSignal(window []model.Candle) *Signal {
	if len(window) < s.cfg.Period+20 {
		return nil
	}

	closes := model.Closes(window)
	rsi := indicator.RSI(closes, s.cfg.Period)
	current := rsi[len(rsi)-1]
	div := indicator.DetectDivergence(closes, rsi, rsiDivergenceLookback)

	var dir Direction
	var confidence float64
	switch {
	case div == indicator.DivergenceBullish && current < s.cfg.Overbought:
		dir = Long
		confidence = 0.5
		if current < s.cfg.Oversold {
			confidence = 0.7
		}
	case div == indicator.DivergenceBearish && current > s.cfg.Oversold:
		dir = Short
		confidence = 0.5
		if current > s.cfg.Overbought {
			confidence = 0.7
		}
	default:
		return nil
	}

	last := window[len(window)-1]
	entry := last.Close
	stop := s.CalculateStopLoss(window, entry, dir)
	return &Signal{
		Strategy:   s.Name(),
		Symbol:     last.Symbol,
		TS:         last.TS,
		Direction:  dir,
		EntryPrice: entry,
		StopLoss:   stop,
		TakeProfit: s.CalculateTakeProfit(entry, stop, rsiRiskReward),
		Confidence: confidence,
		Meta:       map[string]float64{"rsi": current},
	}
}

// CalculateStopLoss places the stop 2% beyond the 10-period price extreme
// opposite the entry direction. Divergence entries sit at turning points, so
// the stop is wider than a breakout stop.
func (s *RSIDivergence) CalculateStopLoss(window []model.Candle, entryPrice float64, dir Direction) float64 {
	if dir == Long {
		return trailingMin(model.Lows(window), rsiStopWindow) * 0.98
	}
	return trailingMax(model.Highs(window), rsiStopWindow) * 1.02
}

func (s *RSIDivergence) CalculateTakeProfit(entryPrice, stopLoss, riskReward float64) float64 {
	return takeProfit(entryPrice, stopLoss, riskReward)
}
