package indicator

import (
	"math"

	"signal-engine/internal/model"
)

// PriceLevel is one bucket of a volume profile: the bucket's floor price and
// the volume accumulated into it.
type PriceLevel struct {
	Price  float64 `json:"price"`
	Volume float64 `json:"volume"`
}

// VolumeProfile is the distribution of traded volume across price levels over
// a candle window, plus the Point of Control (the level with the most volume)
// and the observed price range.
type VolumeProfile struct {
	Levels    []PriceLevel `json:"levels"` // ascending by price
	POC       float64      `json:"poc"`
	RangeHigh float64      `json:"range_high"`
	RangeLow  float64      `json:"range_low"`
}

// ComputeVolumeProfile partitions the observed low..high price range into
// bins equal-width buckets and credits each candle's full volume to every
// bucket whose floor price lies within that candle's low..high span.
//
// O(candles × bins) — intended for periodic profiling, not per-tick use.
// Returns the zero profile when the window is empty or bins is non-positive.
func ComputeVolumeProfile(candles []model.Candle, bins int) VolumeProfile {
	if len(candles) == 0 || bins <= 0 {
		return VolumeProfile{POC: math.NaN()}
	}

	rangeLow := candles[0].Low
	rangeHigh := candles[0].High
	for _, c := range candles[1:] {
		if c.Low < rangeLow {
			rangeLow = c.Low
		}
		if c.High > rangeHigh {
			rangeHigh = c.High
		}
	}
	binSize := (rangeHigh - rangeLow) / float64(bins)

	levels := make([]PriceLevel, bins)
	for i := range levels {
		levels[i].Price = rangeLow + float64(i)*binSize
	}
	for _, c := range candles {
		for i := range levels {
			if c.Low <= levels[i].Price && levels[i].Price <= c.High {
				levels[i].Volume += c.Volume
			}
		}
	}

	poc := levels[0].Price
	maxVol := levels[0].Volume
	for _, lvl := range levels[1:] {
		if lvl.Volume > maxVol {
			maxVol = lvl.Volume
			poc = lvl.Price
		}
	}

	return VolumeProfile{
		Levels:    levels,
		POC:       poc,
		RangeHigh: rangeHigh,
		RangeLow:  rangeLow,
	}
}
