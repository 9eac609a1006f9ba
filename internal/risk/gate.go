// Package risk enforces the trading-permission rules: loss-streak
// cooldown, daily trade cap, and the single-open-trade constraint.
// Denials are normal outcomes, not errors.
package risk

import (
	"fmt"
	"sync"
	"time"

	"rsimaster/internal/model"
)

// Gate names used in decisions and metrics labels.
const (
	GateCooldown  = "cooldown"
	GateDailyCap  = "daily_cap"
	GateOpenTrade = "open_trade"
)

// Config holds the risk thresholds.
type Config struct {
	MaxConsecutiveLosses int
	Cooldown             time.Duration
	MaxDailyTrades       int

	// CooldownRequiresWin selects the streak-expiry policy. When true,
	// an expired cooldown re-arms the clock and the streak only clears
	// on a winning close. When false, the gate passes once the cooldown
	// window has elapsed.
	CooldownRequiresWin bool
}

// Decision is the outcome of a gate check. Gate is empty when allowed.
type Decision struct {
	Allowed bool
	Gate    string
	Reason  string
}

func allowed() Decision {
	return Decision{Allowed: true, Reason: "ok to trade"}
}

func denied(gate, reason string) Decision {
	return Decision{Gate: gate, Reason: reason}
}

// Gate evaluates the three risk gates in fixed order against journal
// day stats. It owns the last-loss timestamp used for cooldown
// arithmetic; that stamp is separate from the journal's statistics.
type Gate struct {
	mu       sync.Mutex
	cfg      Config
	lastLoss time.Time
}

// NewGate creates a gate with the given thresholds.
func NewGate(cfg Config) *Gate {
	return &Gate{cfg: cfg}
}

// Check runs the gates in order — cooldown, daily cap, single open
// trade — and returns the first denial, or permission.
func (g *Gate) Check(day *model.JournalDay, now time.Time) Decision {
	g.mu.Lock()
	defer g.mu.Unlock()

	if d := g.checkCooldown(day.Stats, now); !d.Allowed {
		return d
	}

	if day.Stats.TotalTrades >= g.cfg.MaxDailyTrades {
		return denied(GateDailyCap, fmt.Sprintf(
			"daily limit reached (%d trades)", g.cfg.MaxDailyTrades))
	}

	if t := day.ActiveTrade(); t != nil {
		return denied(GateOpenTrade, fmt.Sprintf("trade #%d is still open", t.ID))
	}

	return allowed()
}

func (g *Gate) checkCooldown(st model.DayStats, now time.Time) Decision {
	if st.ConsecutiveLosses < g.cfg.MaxConsecutiveLosses {
		return allowed()
	}

	if g.lastLoss.IsZero() {
		// No stamp yet (e.g. restart mid-streak) — arm the clock now.
		g.lastLoss = now
		return denied(GateCooldown, fmt.Sprintf(
			"%d consecutive losses — wait %s", st.ConsecutiveLosses, g.cfg.Cooldown))
	}

	elapsed := now.Sub(g.lastLoss)
	if elapsed < g.cfg.Cooldown {
		remaining := g.cfg.Cooldown - elapsed
		return denied(GateCooldown, fmt.Sprintf(
			"cooldown: %dm remaining (%d consecutive losses)",
			int(remaining.Minutes())+1, st.ConsecutiveLosses))
	}

	if g.cfg.CooldownRequiresWin {
		// Streak clears only on a WIN close; time alone re-arms the clock.
		g.lastLoss = now
		return denied(GateCooldown, fmt.Sprintf(
			"%d consecutive losses — a winning close is required to resume",
			st.ConsecutiveLosses))
	}

	return allowed()
}

// RecordLoss stamps the last-loss time for cooldown arithmetic. Called
// by the operator flow when a trade closes as a loss; the statistics
// increment happens in the journal.
func (g *Gate) RecordLoss(t time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastLoss = t
}
