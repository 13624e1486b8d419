package strategy

import (
	"fmt"
	"math"

	"signal-engine/internal/indicator"
	"signal-engine/internal/model"
)

const (
	emaVolumeWindow = 10
	emaStopWindow   = 10
	emaRiskReward   = 2.5
)

// EMACrossoverConfig holds the tunable parameters of the EMA crossover
// strategy.
type EMACrossoverConfig struct {
	FastPeriod int
	SlowPeriod int
	// VolumeMultiplier is the minimum current-volume to average-volume ratio
	// required to act on a cross.
	VolumeMultiplier float64
}

// EMACrossover signals when the fast EMA crosses the slow EMA on the current
// candle, confirmed by above-average volume.
//
// Long on an upward cross (confidence 0.7 when fast clears slow by more than
// 1%, else 0.5); Short on the mirrored downward cross.
type EMACrossover struct {
	cfg EMACrossoverConfig
}

// NewEMACrossover validates the configuration and builds the strategy.
func NewEMACrossover(cfg EMACrossoverConfig) (*EMACrossover, error) {
	if cfg.FastPeriod <= 0 || cfg.SlowPeriod <= 0 {
		return nil, fmt.Errorf("%w: EMA periods fast=%d slow=%d must be positive", ErrInvalidParameter, cfg.FastPeriod, cfg.SlowPeriod)
	}
	if cfg.FastPeriod >= cfg.SlowPeriod {
		return nil, fmt.Errorf("%w: fast period %d must be below slow period %d", ErrInvalidParameter, cfg.FastPeriod, cfg.SlowPeriod)
	}
	if cfg.VolumeMultiplier <= 0 {
		return nil, fmt.Errorf("%w: volume multiplier %.4f must be positive", ErrInvalidParameter, cfg.VolumeMultiplier)
	}
	return &EMACrossover{cfg: cfg}, nil
}

func (s *EMACrossover) Name() string { return "EMA_Crossover" }

func (s *EMACrossover) GenerateSignal(window []model.Candle) *Signal {
	if len(window) < s.cfg.SlowPeriod+5 {
		return nil
	}

	closes := model.Closes(window)
	emaFast := indicator.EMA(closes, s.cfg.FastPeriod)
	emaSlow := indicator.EMA(closes, s.cfg.SlowPeriod)
	i := len(closes) - 1
	curFast, curSlow := emaFast[i], emaSlow[i]
	prevFast, prevSlow := emaFast[i-1], emaSlow[i-1]

	last := window[i]
	avgVolume := trailingMean(model.Volumes(window), emaVolumeWindow)
	if math.IsNaN(avgVolume) || last.Volume < avgVolume*s.cfg.VolumeMultiplier {
		return nil
	}

	var dir Direction
	var confidence float64
	switch {
	case prevFast <= prevSlow && curFast > curSlow:
		dir = Long
		confidence = 0.5
		if curFast > curSlow*1.01 {
			confidence = 0.7
		}
	case prevFast >= prevSlow && curFast < curSlow:
		dir = Short
		confidence = 0.5
		if curFast < curSlow*0.99 {
			confidence = 0.7
		}
	default:
		return nil
	}

	entry := last.Close
	stop := s.CalculateStopLoss(window, entry, dir)
	return &Signal{
		Strategy:   s.Name(),
		Symbol:     last.Symbol,
		TS:         last.TS,
		Direction:  dir,
		EntryPrice: entry,
		StopLoss:   stop,
		TakeProfit: s.CalculateTakeProfit(entry, stop, emaRiskReward),
		Confidence: confidence,
		Meta: map[string]float64{
			"ema_fast": curFast,
			"ema_slow": curSlow,
		},
	}
}

// CalculateStopLoss places the stop 0.5% beyond the 10-period price extreme
// opposite the entry direction.
func (s *EMACrossover) CalculateStopLoss(window []model.Candle, entryPrice float64, dir Direction) float64 {
	if dir == Long {
		return trailingMin(model.Lows(window), emaStopWindow) * 0.995
	}
	return trailingMax(model.Highs(window), emaStopWindow) * 1.005
}

func (s *EMACrossover) CalculateTakeProfit(entryPrice, stopLoss, riskReward float64) float64 {
	return takeProfit(entryPrice, stopLoss, riskReward)
}
