// Package position converts account and risk configuration into
// position size, stop/target levels, and theoretical expectancy.
package position

import (
	"math"

	"rsimaster/internal/model"
)

// Config holds the account and strategy parameters the sizer needs.
// Percentages are expressed as whole numbers (0.8 means 0.8%).
type Config struct {
	CapitalTotal    float64
	CapitalFutures  float64
	Leverage        float64
	RiskPct         float64
	StopLossPct     float64
	TakeProfitPct   float64
	RoundTripFeePct float64
	ExpectedWinRate float64 // configured constant, not measured live
}

// Sizing is the outcome of a position-size calculation.
type Sizing struct {
	Size       float64 // notional actually used
	RiskAmount float64 // capital at risk at the stop
	MaxSize    float64 // margin * leverage ceiling
}

// Levels are the stop and target prices for an entry.
type Levels struct {
	Entry  float64
	Stop   float64
	Target float64
}

// Expectancy is the probability-weighted per-trade outcome at the
// configured win rate. A theoretical figure, not a backtest.
type Expectancy struct {
	GrossWin  float64
	GrossLoss float64
	Fees      float64
	NetWin    float64
	NetLoss   float64
	RRRatio   float64
	PerTrade  float64
	WinRate   float64
}

// Sizer performs all position arithmetic for a fixed configuration.
type Sizer struct {
	cfg Config
}

// NewSizer creates a sizer. The configuration is validated upstream at
// load time; a zero stop-loss here degenerates to zero sizing rather
// than dividing by zero.
func NewSizer(cfg Config) *Sizer {
	return &Sizer{cfg: cfg}
}

// Size computes the notional position size: risk-derived ideal size
// capped by futures margin times leverage.
func (s *Sizer) Size() Sizing {
	if s.cfg.StopLossPct == 0 {
		return Sizing{}
	}
	riskAmount := s.cfg.CapitalTotal * s.cfg.RiskPct / 100
	ideal := riskAmount / (s.cfg.StopLossPct / 100)
	maxSize := s.cfg.CapitalFutures * s.cfg.Leverage

	actual := math.Min(ideal, maxSize)
	return Sizing{
		Size:       actual,
		RiskAmount: actual * s.cfg.StopLossPct / 100,
		MaxSize:    maxSize,
	}
}

// LevelsFor computes stop and target prices for an entry. The target
// being closer than the stop is an intentional, validated asymmetry of
// the strategy. An entry of 0 yields zeroed levels; invalid input is
// signalled upstream, not here.
func (s *Sizer) LevelsFor(entry float64, dir model.Direction) Levels {
	if entry == 0 {
		return Levels{}
	}
	var stop, target float64
	if dir == model.Long {
		stop = entry * (1 - s.cfg.StopLossPct/100)
		target = entry * (1 + s.cfg.TakeProfitPct/100)
	} else {
		stop = entry * (1 + s.cfg.StopLossPct/100)
		target = entry * (1 - s.cfg.TakeProfitPct/100)
	}
	return Levels{
		Entry:  entry,
		Stop:   round2(stop),
		Target: round2(target),
	}
}

// ExpectedPnL computes fee-adjusted win/loss amounts and the expectancy
// per trade for the given position size.
func (s *Sizer) ExpectedPnL(size float64) Expectancy {
	grossWin := size * s.cfg.TakeProfitPct / 100
	grossLoss := size * s.cfg.StopLossPct / 100
	fees := size * s.cfg.RoundTripFeePct / 100

	netWin := grossWin - fees
	netLoss := grossLoss + fees // fees deepen the loss

	winRate := s.cfg.ExpectedWinRate / 100
	expectancy := winRate*netWin - (1-winRate)*netLoss

	rr := 0.0
	if netLoss > 0 {
		rr = netWin / netLoss
	}

	return Expectancy{
		GrossWin:  round2(grossWin),
		GrossLoss: round2(grossLoss),
		Fees:      round2(fees),
		NetWin:    round2(netWin),
		NetLoss:   round2(netLoss),
		RRRatio:   round2(rr),
		PerTrade:  round2(expectancy),
		WinRate:   s.cfg.ExpectedWinRate,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
