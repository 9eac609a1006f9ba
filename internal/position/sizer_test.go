package position

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"rsimaster/internal/model"
)

func defaultSizer() *Sizer {
	return NewSizer(Config{
		CapitalTotal:    3000,
		CapitalFutures:  600,
		Leverage:        10,
		RiskPct:         1,
		StopLossPct:     0.8,
		TakeProfitPct:   0.5,
		RoundTripFeePct: 0.07,
		ExpectedWinRate: 75.9,
	})
}

func TestSize(t *testing.T) {
	s := defaultSizer()
	sz := s.Size()

	// risk 1% of 3000 = $30; at a 0.8% stop the ideal notional is $3750,
	// under the $6000 margin ceiling.
	assert.InDelta(t, 3750, sz.Size, 1e-9)
	assert.InDelta(t, 6000, sz.MaxSize, 1e-9)
	assert.InDelta(t, 30, sz.RiskAmount, 1e-9)
}

func TestSize_CappedByMargin(t *testing.T) {
	s := NewSizer(Config{
		CapitalTotal:   3000,
		CapitalFutures: 200,
		Leverage:       10,
		RiskPct:        1,
		StopLossPct:    0.8,
	})
	sz := s.Size()

	assert.InDelta(t, 2000, sz.Size, 1e-9, "margin ceiling binds")
	assert.InDelta(t, 2000, sz.MaxSize, 1e-9)
	// Risk shrinks with the cap: 0.8% of $2000.
	assert.InDelta(t, 16, sz.RiskAmount, 1e-9)
}

func TestSize_ZeroStopLoss(t *testing.T) {
	s := NewSizer(Config{CapitalTotal: 3000, CapitalFutures: 600, Leverage: 10, RiskPct: 1})
	assert.Equal(t, Sizing{}, s.Size())
}

func TestLevelsFor(t *testing.T) {
	s := defaultSizer()

	long := s.LevelsFor(100, model.Long)
	assert.Equal(t, Levels{Entry: 100, Stop: 99.2, Target: 100.5}, long)

	short := s.LevelsFor(100, model.Short)
	assert.Equal(t, Levels{Entry: 100, Stop: 100.8, Target: 99.5}, short)
}

func TestLevelsFor_ZeroEntry(t *testing.T) {
	s := defaultSizer()
	assert.Equal(t, Levels{}, s.LevelsFor(0, model.Long))
}

func TestExpectedPnL(t *testing.T) {
	s := defaultSizer()
	exp := s.ExpectedPnL(3750)

	assert.InDelta(t, 18.75, exp.GrossWin, 1e-9)
	assert.InDelta(t, 30, exp.GrossLoss, 1e-9)
	assert.InDelta(t, 2.63, exp.Fees, 1e-9)
	assert.InDelta(t, 16.13, exp.NetWin, 1e-9)
	assert.InDelta(t, 32.63, exp.NetLoss, 1e-9)
	assert.InDelta(t, 0.49, exp.RRRatio, 1e-9)
	// 0.759*16.125 - 0.241*32.625
	assert.InDelta(t, 4.38, exp.PerTrade, 1e-9)
	assert.Equal(t, 75.9, exp.WinRate)
}

func TestExpectedPnL_ZeroSize(t *testing.T) {
	s := defaultSizer()
	exp := s.ExpectedPnL(0)

	assert.Zero(t, exp.NetWin)
	assert.Zero(t, exp.NetLoss)
	assert.Zero(t, exp.RRRatio, "no loss means the ratio is defined as 0")
	assert.Zero(t, exp.PerTrade)
}
