// Package session classifies the time of day into quality tiers for
// mean reversion. Low-volume hours range predictably; the EU/US overlap
// breaks out too often to fade.
package session

import (
	"fmt"
	"time"

	"rsimaster/internal/model"
)

// Window is an hour range [Start, End) in the clock's local zone.
type Window struct {
	Start int
	End   int
}

// Contains reports whether the hour falls inside the window.
func (w Window) Contains(hour int) bool {
	return hour >= w.Start && hour < w.End
}

// Config holds the session windows and the fixed local offset.
type Config struct {
	UTCOffsetHours int
	Asia           Window // OPTIMAL
	Europe         Window // GOOD
	Overlap        Window // AVOID
}

// Clock evaluates session quality against a fixed UTC-offset zone.
type Clock struct {
	cfg Config
	loc *time.Location
}

// New creates a session clock for the configured offset and windows.
func New(cfg Config) *Clock {
	name := fmt.Sprintf("UTC%+d", cfg.UTCOffsetHours)
	return &Clock{
		cfg: cfg,
		loc: time.FixedZone(name, cfg.UTCOffsetHours*3600),
	}
}

// Location returns the clock's fixed local zone.
func (c *Clock) Location() *time.Location { return c.loc }

// Now returns the current time in the clock's local zone.
func (c *Clock) Now() time.Time { return time.Now().In(c.loc) }

// Tier classifies t into a session tier with a short status message.
// Precedence: Asia, then Europe, then overlap, else RISKY.
func (c *Clock) Tier(t time.Time) (model.SessionTier, string) {
	hour := t.In(c.loc).Hour()
	switch {
	case c.cfg.Asia.Contains(hour):
		return model.TierOptimal, fmt.Sprintf("Asia session (%02d:00) — low volume, predictable ranges", hour)
	case c.cfg.Europe.Contains(hour):
		return model.TierGood, fmt.Sprintf("Europe morning (%02d:00) — moderate volatility", hour)
	case c.cfg.Overlap.Contains(hour):
		return model.TierAvoid, fmt.Sprintf("EU/US overlap (%02d:00) — frequent breakouts, do not fade", hour)
	default:
		return model.TierRisky, fmt.Sprintf("off-session (%02d:00) — unpredictable volatility", hour)
	}
}

// NextOptimal returns the time until the next tradeable window opens
// and a human-readable description. Three cases: before today's Asia
// window, between Asia and Europe, and after Europe (wraps to
// tomorrow's Asia window).
func (c *Clock) NextOptimal(t time.Time) (time.Duration, string) {
	lt := t.In(c.loc)
	hour := lt.Hour()

	at := func(hourOfDay, addDays int) time.Time {
		return time.Date(lt.Year(), lt.Month(), lt.Day()+addDays, hourOfDay, 0, 0, 0, c.loc)
	}

	switch {
	case hour < c.cfg.Asia.Start:
		d := at(c.cfg.Asia.Start, 0).Sub(lt)
		return d, fmt.Sprintf("Asia session in %s", fmtDur(d))
	case hour >= c.cfg.Asia.End && hour < c.cfg.Europe.Start:
		d := at(c.cfg.Europe.Start, 0).Sub(lt)
		return d, fmt.Sprintf("Europe session in %s", fmtDur(d))
	case hour >= c.cfg.Europe.End:
		d := at(c.cfg.Asia.Start, 1).Sub(lt)
		return d, fmt.Sprintf("Asia session tomorrow in %s", fmtDur(d))
	}
	return 0, "in session"
}

// CanTrade reports whether trading is permitted at t. Strict mode
// permits only OPTIMAL and GOOD tiers; relaxed mode permits everything
// except AVOID.
func (c *Clock) CanTrade(t time.Time, strict bool) (bool, string) {
	tier, msg := c.Tier(t)
	if strict {
		if tier == model.TierOptimal || tier == model.TierGood {
			return true, msg
		}
		return false, msg + " — wait for an optimal session"
	}
	if tier == model.TierAvoid {
		return false, msg
	}
	return true, msg
}

func fmtDur(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
