package notification

import (
	"fmt"
	"strings"

	"rsimaster/internal/indicator"
	"rsimaster/internal/model"
	"rsimaster/internal/position"
)

// SignalAlert renders a full entry alert with levels and sizing.
func SignalAlert(ev model.SignalEvent, snap indicator.Snapshot, lv position.Levels, sz position.Sizing, leverage float64) Alert {
	icon := "🟢"
	action := "BUY"
	if ev.Direction == model.Short {
		icon = "🔴"
		action = "SELL"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s $%.0f USDT (%gx)\n\n", icon, action, sz.Size, leverage)
	fmt.Fprintf(&b, "Price: $%.2f\n", snap.RefPrice)
	fmt.Fprintf(&b, "Oscillator: %.1f\n", snap.OscCurrent)
	fmt.Fprintf(&b, "Trend filter: $%.2f\n\n", snap.TrendValue)
	fmt.Fprintf(&b, "🎯 Target: $%.2f\n", lv.Target)
	fmt.Fprintf(&b, "🛡 Stop: $%.2f\n", lv.Stop)
	if len(ev.Warnings) > 0 {
		fmt.Fprintf(&b, "\n⚠️ %s", strings.Join(ev.Warnings, "\n⚠️ "))
	}
	b.WriteString("\n\nConfirm in your terminal before entering.")

	return Alert{
		Level:   AlertCritical,
		Title:   fmt.Sprintf("%s signal detected", ev.Direction),
		Message: b.String(),
	}
}

// PreAlert renders the early warning sent when the oscillator
// approaches an entry threshold.
func PreAlert(dir model.Direction, osc, price float64) Alert {
	return Alert{
		Level: AlertWarning,
		Title: fmt.Sprintf("prepare for %s", dir),
		Message: fmt.Sprintf(
			"Oscillator approaching the entry zone.\nCurrent: %.1f\nPrice: $%.2f\n\nWatch for the confirmed crossover.",
			osc, price),
	}
}

// Heartbeat renders the periodic status summary. Sent silently.
func Heartbeat(osc, price float64, tier model.SessionTier, zone string) Alert {
	return Alert{
		Level:  AlertInfo,
		Title:  "scanner heartbeat",
		Silent: true,
		Message: fmt.Sprintf(
			"Running normally.\nOscillator: %.1f (%s)\nPrice: $%.2f\nSession: %s",
			osc, zone, price, tier),
	}
}
