package strategy

import (
	"fmt"
	"math"

	"signal-engine/internal/model"
)

const (
	vbMinHistory     = 20
	vbBreakoutWindow = 20
	vbVolumeWindow   = 10
	vbStopWindow     = 10
	vbRiskReward     = 2.0
)

// VolumeBreakoutConfig holds the tunable parameters of the volume breakout
// strategy.
type VolumeBreakoutConfig struct {
	// VolumeMultiplier is the minimum current-volume to average-volume ratio
	// required before a breakout is considered confirmed.
	VolumeMultiplier float64
}

// VolumeBreakout signals when price closes beyond the prior 20-period extreme
// on volume well above its 10-period average.
//
// Long: close above the prior 20-period high (current candle excluded).
// Short: close below the prior 20-period low. Confidence grows with the
// volume ratio and is capped at 0.9.
type VolumeBreakout struct {
	cfg VolumeBreakoutConfig
}

// NewVolumeBreakout validates the configuration and builds the strategy.
func NewVolumeBreakout(cfg VolumeBreakoutConfig) (*VolumeBreakout, error) {
	if cfg.VolumeMultiplier <= 0 {
		return nil, fmt.Errorf("%w: volume multiplier %.4f must be positive", ErrInvalidParameter, cfg.VolumeMultiplier)
	}
	return &VolumeBreakout{cfg: cfg}, nil
}

func (s *VolumeBreakout) Name() string { return "Volume_Breakout" }

func (s *VolumeBreakout) GenerateSignal(window []model.Candle) *Signal {
	if len(window) < vbMinHistory {
		return nil
	}

	last := window[len(window)-1]
	avgVolume := trailingMean(model.Volumes(window), vbVolumeWindow)
	if math.IsNaN(avgVolume) || last.Volume < avgVolume*s.cfg.VolumeMultiplier {
		return nil
	}

	highs := model.Highs(window)
	lows := model.Lows(window)
	price := last.Close

	// Prior 20-period extremes, excluding the current candle. Unavailable
	// until the window reaches 21 candles — no breakout reference, no signal.
	priorHigh := trailingMax(highs[:len(highs)-1], vbBreakoutWindow)
	priorLow := trailingMin(lows[:len(lows)-1], vbBreakoutWindow)

	var dir Direction
	switch {
	case !math.IsNaN(priorHigh) && price > priorHigh:
		dir = Long
	case !math.IsNaN(priorLow) && price < priorLow:
		dir = Short
	default:
		return nil
	}

	stop := s.CalculateStopLoss(window, price, dir)
	volumeRatio := last.Volume / avgVolume
	return &Signal{
		Strategy:   s.Name(),
		Symbol:     last.Symbol,
		TS:         last.TS,
		Direction:  dir,
		EntryPrice: price,
		StopLoss:   stop,
		TakeProfit: s.CalculateTakeProfit(price, stop, vbRiskReward),
		Confidence: math.Min(0.9, 0.5+(volumeRatio-2)*0.1),
		Meta:       map[string]float64{"volume_ratio": volumeRatio},
	}
}

// CalculateStopLoss places the stop 0.5% beyond the 10-period extreme
// opposite the entry direction.
func (s *VolumeBreakout) CalculateStopLoss(window []model.Candle, entryPrice float64, dir Direction) float64 {
	if dir == Long {
		return trailingMin(model.Lows(window), vbStopWindow) * 0.995
	}
	return trailingMax(model.Highs(window), vbStopWindow) * 1.005
}

func (s *VolumeBreakout) CalculateTakeProfit(entryPrice, stopLoss, riskReward float64) float64 {
	return takeProfit(entryPrice, stopLoss, riskReward)
}
