package indicator

import (
	"errors"
	"iter"

	"rsimaster/internal/model"
)

// ErrInsufficientData is returned when a candle sequence is too short
// for the requested computation. It is never fatal: the decision layer
// converts it into a non-actionable signal with an explanatory reason.
var ErrInsufficientData = errors.New("indicator: insufficient candle data")

// RSI computes the Relative Strength Index over the full candle
// sequence using Wilder's smoothing.
//
// The seed averages are the simple mean of the first `period` gain/loss
// values; each later step folds in via avg = (avg*(period-1)+v)/period.
// Requires at least period+1 candles (one extra for the first delta).
// Output is bounded to [0, 100]; exactly 100.0 when avgLoss == 0.
func RSI(candles []model.Candle, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("indicator: rsi period must be positive")
	}
	if len(candles) < period+1 {
		return 0, ErrInsufficientData
	}

	closes := model.Closes(candles)

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			avgGain += delta
		} else {
			avgLoss -= delta
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	// Wilder's smoothing over the remainder of the series
	p := float64(period)
	for i := period + 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
	}

	if avgLoss == 0 {
		return 100.0, nil
	}
	rs := avgGain / avgLoss
	return 100.0 - (100.0 / (1.0 + rs)), nil
}

// RSIHistory returns a lazy sequence of up to `lookback` RSI values,
// oldest first, ending at the most recent candle. Each value is the RSI
// of a growing prefix of the sequence; prefixes that are too short are
// skipped. The sequence is single-use — callers needing trend data
// beyond crossover detection must request a fresh one.
func RSIHistory(candles []model.Candle, period, lookback int) iter.Seq[float64] {
	return func(yield func(float64) bool) {
		if lookback <= 0 {
			return
		}
		start := len(candles) - lookback + 1
		if start < 0 {
			start = 0
		}
		for end := start; end <= len(candles); end++ {
			v, err := RSI(candles[:end], period)
			if err != nil {
				continue
			}
			if !yield(v) {
				return
			}
		}
	}
}

// LastTwoRSI collects the two most recent RSI values for crossover
// detection: (previous, current). Returns ErrInsufficientData when the
// sequence cannot produce two values.
func LastTwoRSI(candles []model.Candle, period int) (prev, curr float64, err error) {
	n := 0
	for v := range RSIHistory(candles, period, 2) {
		prev, curr = curr, v
		n++
	}
	if n < 2 {
		return 0, 0, ErrInsufficientData
	}
	return prev, curr, nil
}
