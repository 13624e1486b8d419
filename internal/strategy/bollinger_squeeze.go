package strategy

import (
	"fmt"
	"math"

	"signal-engine/internal/indicator"
	"signal-engine/internal/model"
)

const (
	bbSqueezeAvgWindow  = 15
	bbWidthSqueezeRatio = 0.7
	bbATRSqueezeRatio   = 0.8
	bbVolumeWindow      = 10
	bbATRStopMultiplier = 1.3
	bbRiskReward        = 2.0
)

// BollingerSqueezeConfig holds the tunable parameters of the Bollinger
// squeeze breakout strategy.
type BollingerSqueezeConfig struct {
	BBPeriod   int
	BBStd      float64
	ATRPeriod  int
	MACDFast   int
	MACDSlow   int
	MACDSignal int
}

// BollingerSqueeze looks for calm-before-the-storm periods: band width and
// ATR both compressed well below their recent averages. Only inside such a
// squeeze does it consider a breakout beyond the bands, and only with MACD
// agreeing on direction.
type BollingerSqueeze struct {
	cfg BollingerSqueezeConfig
}

// NewBollingerSqueeze validates the configuration and builds the strategy.
func NewBollingerSqueeze(cfg BollingerSqueezeConfig) (*BollingerSqueeze, error) {
	if cfg.BBPeriod <= 0 || cfg.ATRPeriod <= 0 {
		return nil, fmt.Errorf("%w: periods bb=%d atr=%d must be positive", ErrInvalidParameter, cfg.BBPeriod, cfg.ATRPeriod)
	}
	if cfg.BBStd <= 0 {
		return nil, fmt.Errorf("%w: band std multiplier %.4f must be positive", ErrInvalidParameter, cfg.BBStd)
	}
	if cfg.MACDFast <= 0 || cfg.MACDSlow <= 0 || cfg.MACDSignal <= 0 {
		return nil, fmt.Errorf("%w: MACD periods %d/%d/%d must be positive", ErrInvalidParameter, cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal)
	}
	return &BollingerSqueeze{cfg: cfg}, nil
}

func (s *BollingerSqueeze) Name() string { return "Bollinger_Squeeze" }

func (s *BollingerSqueeze) minHistory() int {
	p := s.cfg.BBPeriod
	if s.cfg.ATRPeriod > p {
		p = s.cfg.ATRPeriod
	}
	return p + 20
}

func (s *BollingerSqueeze) GenerateSignal(window []model.Candle) *Signal {
	if len(window) < s.minHistory() {
		return nil
	}

	closes := model.Closes(window)
	highs := model.Highs(window)
	lows := model.Lows(window)
	i := len(window) - 1

	upper, _, lower := indicator.Bollinger(closes, s.cfg.BBPeriod, s.cfg.BBStd)
	atr := indicator.ATR(highs, lows, closes, s.cfg.ATRPeriod)
	macdLine, macdSignal, _ := indicator.MACD(closes, s.cfg.MACDFast, s.cfg.MACDSlow, s.cfg.MACDSignal)

	// Band width relative to price, as a series so it can be averaged.
	widths := make([]float64, len(closes))
	for j := range widths {
		if indicator.Defined(upper[j]) && closes[j] != 0 {
			widths[j] = (upper[j] - lower[j]) / closes[j]
		} else {
			widths[j] = math.NaN()
		}
	}

	bbWidth := widths[i]
	avgWidth := trailingMean(widths, bbSqueezeAvgWindow)
	currentATR := atr[i]
	avgATR := trailingMean(atr, bbSqueezeAvgWindow)

	// NaN comparisons are false, so missing history never declares a squeeze.
	squeeze := bbWidth < avgWidth*bbWidthSqueezeRatio && currentATR < avgATR*bbATRSqueezeRatio
	if !squeeze {
		return nil
	}

	macdAbove := macdLine[i] > macdSignal[i]
	macdConfirm := macdLine[i] < 0
	if macdAbove {
		macdConfirm = macdLine[i] > 0
	}

	price := closes[i]
	var dir Direction
	switch {
	case price > upper[i] && macdConfirm && macdAbove:
		dir = Long
	case price < lower[i] && macdConfirm && !macdAbove:
		dir = Short
	default:
		return nil
	}

	last := window[i]
	confidence := 0.6
	if avgVol := trailingMean(model.Volumes(window), bbVolumeWindow); last.Volume > avgVol {
		confidence = 0.8
	}

	stop := s.CalculateStopLoss(window, price, dir)
	return &Signal{
		Strategy:   s.Name(),
		Symbol:     last.Symbol,
		TS:         last.TS,
		Direction:  dir,
		EntryPrice: price,
		StopLoss:   stop,
		TakeProfit: s.CalculateTakeProfit(price, stop, bbRiskReward),
		Confidence: confidence,
		Meta: map[string]float64{
			"bb_width":  bbWidth,
			"atr_ratio": currentATR / avgATR,
		},
	}
}

// CalculateStopLoss places the stop 1.3×ATR beyond the entry, opposite the
// trade direction — a volatility-scaled stop rather than a structural one.
func (s *BollingerSqueeze) CalculateStopLoss(window []model.Candle, entryPrice float64, dir Direction) float64 {
	atr := indicator.ATR(model.Highs(window), model.Lows(window), model.Closes(window), s.cfg.ATRPeriod)
	currentATR := atr[len(atr)-1]
	if dir == Long {
		return entryPrice - currentATR*bbATRStopMultiplier
	}
	return entryPrice + currentATR*bbATRStopMultiplier
}

func (s *BollingerSqueeze) CalculateTakeProfit(entryPrice, stopLoss, riskReward float64) float64 {
	return takeProfit(entryPrice, stopLoss, riskReward)
}
