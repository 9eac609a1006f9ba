package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rsimaster/internal/indicator"
	"rsimaster/internal/model"
)

func snap(prev, curr, price, trend float64) indicator.Snapshot {
	return indicator.Snapshot{
		OscPrevious: prev,
		OscCurrent:  curr,
		RefPrice:    price,
		TrendValue:  trend,
		Timestamp:   time.Now(),
	}
}

func TestEvaluate_LongCrossover(t *testing.T) {
	d := NewDetector(20, 80, 21)

	ev := d.Evaluate(snap(19.9, 20.1, 3100, 3000))
	assert.Equal(t, model.Long, ev.Direction)
	assert.True(t, ev.TrendAligned)
	assert.True(t, ev.CanTrade)
	assert.Empty(t, ev.Warnings)
}

func TestEvaluate_TouchingLevelFires(t *testing.T) {
	d := NewDetector(20, 80, 21)

	// Landing exactly on the level counts as crossing it.
	ev := d.Evaluate(snap(19.9, 20.0, 3100, 3000))
	assert.Equal(t, model.Long, ev.Direction)
}

func TestEvaluate_EnteringZoneIsNotASignal(t *testing.T) {
	d := NewDetector(20, 80, 21)

	// Falling into the oversold zone must not fire; only the exit does.
	ev := d.Evaluate(snap(20.1, 19.9, 3100, 3000))
	assert.Equal(t, model.None, ev.Direction)
	assert.False(t, ev.CanTrade)
	require.NotEmpty(t, ev.Reasons)
	assert.Contains(t, ev.Reasons[0], "oversold zone")
}

func TestEvaluate_PrevAtLevelIsNotACrossover(t *testing.T) {
	d := NewDetector(20, 80, 21)

	// prev must be strictly below the level.
	ev := d.Evaluate(snap(20.0, 25.0, 3100, 3000))
	assert.Equal(t, model.None, ev.Direction)
}

func TestEvaluate_LongBlockedByTrend(t *testing.T) {
	d := NewDetector(20, 80, 21)

	ev := d.Evaluate(snap(19.5, 21.0, 2900, 3000))
	assert.Equal(t, model.Long, ev.Direction, "direction survives the block")
	assert.False(t, ev.TrendAligned)
	assert.False(t, ev.CanTrade)
	require.NotEmpty(t, ev.Warnings)
	assert.Contains(t, ev.Warnings[0], "LONG blocked")
}

func TestEvaluate_ShortCrossover(t *testing.T) {
	d := NewDetector(20, 80, 21)

	ev := d.Evaluate(snap(80.5, 79.5, 2900, 3000))
	assert.Equal(t, model.Short, ev.Direction)
	assert.True(t, ev.CanTrade)

	// A passing short still carries the asymmetric-risk advisory.
	require.NotEmpty(t, ev.Warnings)
	assert.Contains(t, ev.Warnings[0], "asymmetric")
}

func TestEvaluate_ShortBlockedByTrend(t *testing.T) {
	d := NewDetector(20, 80, 21)

	ev := d.Evaluate(snap(80.5, 79.5, 3100, 3000))
	assert.Equal(t, model.Short, ev.Direction)
	assert.False(t, ev.CanTrade)
	require.NotEmpty(t, ev.Warnings)
	assert.Contains(t, ev.Warnings[0], "SHORT blocked")
}

func TestEvaluate_NeutralZone(t *testing.T) {
	d := NewDetector(20, 80, 21)

	ev := d.Evaluate(snap(50, 55, 3100, 3000))
	assert.Equal(t, model.None, ev.Direction)
	require.NotEmpty(t, ev.Reasons)
	assert.Contains(t, ev.Reasons[0], "neutral")
}

func TestUnavailable(t *testing.T) {
	ev := Unavailable("fetch failed")
	assert.Equal(t, model.None, ev.Direction)
	assert.False(t, ev.CanTrade)
	assert.Equal(t, []string{"fetch failed"}, ev.Reasons)
}

func TestZone(t *testing.T) {
	d := NewDetector(20, 80, 21)

	assert.Equal(t, "extreme oversold", d.Zone(5))
	assert.Equal(t, "oversold", d.Zone(15))
	assert.Equal(t, "near oversold", d.Zone(30))
	assert.Equal(t, "neutral", d.Zone(50))
	assert.Equal(t, "near overbought", d.Zone(70))
	assert.Equal(t, "overbought", d.Zone(85))
	assert.Equal(t, "extreme overbought", d.Zone(95))
}
