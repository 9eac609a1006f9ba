package model

import "time"

// Direction is the side of a detected signal.
type Direction string

const (
	Long  Direction = "LONG"
	Short Direction = "SHORT"
	None  Direction = "NONE"
)

// SessionTier classifies the current time-of-day for mean reversion.
// Ordered from best to worst: OPTIMAL > GOOD > RISKY > AVOID.
type SessionTier string

const (
	TierOptimal SessionTier = "OPTIMAL"
	TierGood    SessionTier = "GOOD"
	TierRisky   SessionTier = "RISKY"
	TierAvoid   SessionTier = "AVOID"
)

// SignalEvent is the outcome of one detector evaluation. It is always
// produced, even when no signal exists or market data is unavailable —
// the reasons explain why.
type SignalEvent struct {
	Direction    Direction `json:"direction"`
	Strength     int       `json:"strength"`
	TrendAligned bool      `json:"trend_aligned"`
	CanTrade     bool      `json:"can_trade"`
	Reasons      []string  `json:"reasons"`
	Warnings     []string  `json:"warnings"`
}

// SignalRecord is the journal snapshot of a detected signal.
type SignalRecord struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Time       string    `json:"time"` // HH:MM:SS in the journal's local zone
	Direction  Direction `json:"direction"`
	Oscillator float64   `json:"oscillator"`
	Price      float64   `json:"price"`
	TrendValue float64   `json:"trend_value"`
}
