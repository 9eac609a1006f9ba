package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"rsimaster/internal/indicator"
	"rsimaster/internal/model"
	"rsimaster/internal/position"
)

func TestSignalAlert(t *testing.T) {
	ev := model.SignalEvent{
		Direction: model.Short,
		CanTrade:  true,
		Warnings:  []string{"shorts carry asymmetric directional risk"},
	}
	snap := indicator.Snapshot{OscCurrent: 79.5, RefPrice: 3205.12, TrendValue: 3250.40}
	lv := position.Levels{Entry: 3205.12, Stop: 3230.76, Target: 3189.09}
	sz := position.Sizing{Size: 3750}

	a := SignalAlert(ev, snap, lv, sz, 10)
	assert.Equal(t, AlertCritical, a.Level)
	assert.False(t, a.Silent)
	assert.Contains(t, a.Title, "SHORT")
	assert.Contains(t, a.Message, "SELL")
	assert.Contains(t, a.Message, "3230.76")
	assert.Contains(t, a.Message, "3189.09")
	assert.Contains(t, a.Message, "asymmetric")
}

func TestPreAlert(t *testing.T) {
	a := PreAlert(model.Long, 23.4, 3105.5)
	assert.Equal(t, AlertWarning, a.Level)
	assert.Contains(t, a.Title, "LONG")
	assert.Contains(t, a.Message, "23.4")
}

func TestHeartbeat_IsSilent(t *testing.T) {
	a := Heartbeat(48.2, 3105.5, model.TierOptimal, "neutral")
	assert.Equal(t, AlertInfo, a.Level)
	assert.True(t, a.Silent)
	assert.Contains(t, a.Message, "OPTIMAL")
	assert.Contains(t, a.Message, "neutral")
}
