package model

import "time"

// TradeStatus is the lifecycle state of a journaled trade.
type TradeStatus string

const (
	StatusOpen   TradeStatus = "OPEN"
	StatusClosed TradeStatus = "CLOSED"
)

// TradeResult is the outcome assigned when a trade is closed.
type TradeResult string

const (
	ResultWin       TradeResult = "WIN"
	ResultLoss      TradeResult = "LOSS"
	ResultBreakeven TradeResult = "BREAKEVEN"
)

// TradeRecord is one manually confirmed trade. IDs are 1-based and
// monotonic within a journal day. Records are never deleted; only the
// close operation mutates them.
type TradeRecord struct {
	ID           int         `json:"id"`
	Direction    Direction   `json:"direction"`
	EntryPrice   float64     `json:"entry_price"`
	StopPrice    float64     `json:"stop_price"`
	TargetPrice  float64     `json:"target_price"`
	PositionSize float64     `json:"position_size"`
	OscAtEntry   float64     `json:"oscillator_at_entry"`
	TrendAtEntry float64     `json:"trend_filter_at_entry"`
	Status       TradeStatus `json:"status"`
	PnL          float64     `json:"pnl"`
	Result       TradeResult `json:"result,omitempty"`
	OpenTime     time.Time   `json:"open_time"`
	CloseTime    *time.Time  `json:"close_time,omitempty"`
}

// DayStats are the running statistics of one journal day.
type DayStats struct {
	TotalTrades       int     `json:"total_trades"`
	Wins              int     `json:"wins"`
	Losses            int     `json:"losses"`
	TotalPnL          float64 `json:"total_pnl"`
	ConsecutiveLosses int     `json:"consecutive_losses"`
	SignalsIgnored    int     `json:"signals_ignored"`
}

// JournalDay is the durable record for one calendar date in the
// configured local zone. The JSON shape is the compatibility contract
// for any replacement store.
type JournalDay struct {
	Date            string         `json:"date"` // YYYY-MM-DD
	Trades          []TradeRecord  `json:"trades"`
	SignalsDetected []SignalRecord `json:"signals_detected"`
	Stats           DayStats       `json:"stats"`
}

// NewJournalDay returns an empty day record for the given date.
func NewJournalDay(date string) *JournalDay {
	return &JournalDay{
		Date:            date,
		Trades:          []TradeRecord{},
		SignalsDetected: []SignalRecord{},
	}
}

// ActiveTrade returns the last OPEN trade by insertion order, or nil.
func (d *JournalDay) ActiveTrade() *TradeRecord {
	for i := len(d.Trades) - 1; i >= 0; i-- {
		if d.Trades[i].Status == StatusOpen {
			return &d.Trades[i]
		}
	}
	return nil
}
