// Package indicator computes the oscillator and trend-filter values the
// signal detector consumes. All computations are pure functions over
// candle sequences; the Engine only bundles the configured periods.
package indicator

import (
	"fmt"
	"time"

	"rsimaster/internal/model"
)

// Config holds the indicator periods. OscPeriod drives the smoothed
// oscillator on the short timeframe; TrendPeriod drives the EMA trend
// filter on the long timeframe.
type Config struct {
	OscPeriod   int
	TrendPeriod int
}

// Snapshot is one tick's derived indicator state. Recomputed every
// tick, never persisted.
type Snapshot struct {
	OscCurrent  float64
	OscPrevious float64
	TrendValue  float64
	RefPrice    float64
	Timestamp   time.Time
}

// Engine computes indicator snapshots from raw candle sets.
type Engine struct {
	cfg Config
}

// NewEngine creates an indicator engine with the given periods.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Compute derives a snapshot from the short-timeframe candles (for the
// oscillator crossover pair) and the long-timeframe candles (for the
// trend filter). refPrice is used as the reference when positive;
// otherwise the last short-timeframe close stands in.
func (e *Engine) Compute(short, long []model.Candle, refPrice float64, now time.Time) (Snapshot, error) {
	prev, curr, err := LastTwoRSI(short, e.cfg.OscPeriod)
	if err != nil {
		return Snapshot{}, fmt.Errorf("oscillator(%d) over %d candles: %w", e.cfg.OscPeriod, len(short), err)
	}

	trend, err := EMA(long, e.cfg.TrendPeriod)
	if err != nil {
		return Snapshot{}, fmt.Errorf("trend filter(%d) over %d candles: %w", e.cfg.TrendPeriod, len(long), err)
	}

	if refPrice <= 0 {
		refPrice = model.LastClose(short)
	}

	return Snapshot{
		OscCurrent:  curr,
		OscPrevious: prev,
		TrendValue:  trend,
		RefPrice:    refPrice,
		Timestamp:   now,
	}, nil
}
