package indicator

import (
	"errors"
	"math"

	"rsimaster/internal/model"
)

// EMA computes the Exponential Moving Average over the full candle
// sequence. The seed is the simple mean of the first `period` closes;
// each later close folds in via ema = (close-ema)*multiplier + ema with
// multiplier 2/(period+1). The result is rounded to 2 decimals for
// display and comparison stability. Requires at least `period` candles.
func EMA(candles []model.Candle, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("indicator: ema period must be positive")
	}
	if len(candles) < period {
		return 0, ErrInsufficientData
	}

	closes := model.Closes(candles)
	multiplier := 2.0 / float64(period+1)

	var ema float64
	for i := 0; i < period; i++ {
		ema += closes[i]
	}
	ema /= float64(period)

	for _, price := range closes[period:] {
		ema = (price-ema)*multiplier + ema
	}

	return round2(ema), nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
