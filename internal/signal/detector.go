// Package signal turns indicator snapshots into directional decisions.
// The rule is crossover, not threshold-touch: the oscillator must exit
// the extreme zone between two consecutive samples.
package signal

import (
	"fmt"

	"rsimaster/internal/indicator"
	"rsimaster/internal/model"
)

// Detector evaluates oscillator crossovers against the trend filter.
// Stateless: each call depends only on its inputs.
type Detector struct {
	oversold   float64
	overbought float64
	oscPeriod  int // for reason text only
}

// NewDetector creates a detector with the given entry levels.
func NewDetector(oversold, overbought float64, oscPeriod int) *Detector {
	return &Detector{oversold: oversold, overbought: overbought, oscPeriod: oscPeriod}
}

// Evaluate produces a SignalEvent from one indicator snapshot.
//
// LONG fires on an upward exit from oversold (prev < level <= curr),
// SHORT on a downward exit from overbought. The trend gate is
// mandatory: a crossover against the trend filter keeps its direction
// but is marked not actionable, with a warning explaining the block.
func (d *Detector) Evaluate(snap indicator.Snapshot) model.SignalEvent {
	ev := model.SignalEvent{Direction: model.None}
	prev, curr := snap.OscPrevious, snap.OscCurrent

	switch {
	case prev < d.oversold && curr >= d.oversold:
		ev.Direction = model.Long
		ev.Strength = 100
		ev.Reasons = append(ev.Reasons, fmt.Sprintf(
			"bullish crossover: oscillator %.1f -> %.1f across %.0f", prev, curr, d.oversold))
	case prev > d.overbought && curr <= d.overbought:
		ev.Direction = model.Short
		ev.Strength = 100
		ev.Reasons = append(ev.Reasons, fmt.Sprintf(
			"bearish crossover: oscillator %.1f -> %.1f across %.0f", prev, curr, d.overbought))
	default:
		switch {
		case curr <= d.oversold:
			ev.Reasons = append(ev.Reasons, fmt.Sprintf(
				"oscillator %.1f in oversold zone — waiting for upward cross of %.0f", curr, d.oversold))
		case curr >= d.overbought:
			ev.Reasons = append(ev.Reasons, fmt.Sprintf(
				"oscillator %.1f in overbought zone — waiting for downward cross of %.0f", curr, d.overbought))
		default:
			ev.Reasons = append(ev.Reasons, fmt.Sprintf(
				"oscillator(%d) = %.1f in neutral zone", d.oscPeriod, curr))
		}
		return ev
	}

	switch ev.Direction {
	case model.Long:
		if snap.RefPrice > snap.TrendValue {
			ev.TrendAligned = true
			ev.Reasons = append(ev.Reasons, fmt.Sprintf(
				"trend filter: price %.2f > %.2f (bullish)", snap.RefPrice, snap.TrendValue))
		} else {
			ev.Warnings = append(ev.Warnings, fmt.Sprintf(
				"trend filter: price %.2f <= %.2f — LONG blocked", snap.RefPrice, snap.TrendValue))
		}
	case model.Short:
		if snap.RefPrice < snap.TrendValue {
			ev.TrendAligned = true
			ev.Reasons = append(ev.Reasons, fmt.Sprintf(
				"trend filter: price %.2f < %.2f (bearish)", snap.RefPrice, snap.TrendValue))
		} else {
			ev.Warnings = append(ev.Warnings, fmt.Sprintf(
				"trend filter: price %.2f >= %.2f — SHORT blocked", snap.RefPrice, snap.TrendValue))
		}
	}

	ev.CanTrade = ev.Direction != model.None && ev.TrendAligned

	// Shorts fight the structural upward bias; advisory only.
	if ev.Direction == model.Short && ev.CanTrade {
		ev.Warnings = append(ev.Warnings, "shorts carry asymmetric directional risk")
	}

	return ev
}

// Unavailable builds the NONE event used when candle data or indicator
// computation is unavailable. The decision layer always returns a
// value; data gaps are reasons, not errors.
func Unavailable(reason string) model.SignalEvent {
	return model.SignalEvent{
		Direction: model.None,
		Reasons:   []string{reason},
	}
}

// Levels returns the configured entry levels; used by callers that need
// the raw thresholds for proximity checks.
func (d *Detector) Levels() (oversold, overbought float64) {
	return d.oversold, d.overbought
}

// Zone describes where the oscillator value sits relative to the entry
// levels; used in status output and heartbeats.
func (d *Detector) Zone(v float64) string {
	switch {
	case v <= d.oversold/2:
		return "extreme oversold"
	case v <= d.oversold:
		return "oversold"
	case v <= d.oversold+15:
		return "near oversold"
	case v < d.overbought-15:
		return "neutral"
	case v < d.overbought:
		return "near overbought"
	case v < (d.overbought+100)/2:
		return "overbought"
	default:
		return "extreme overbought"
	}
}
