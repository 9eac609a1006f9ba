// Package journal is the append-only, date-partitioned record of
// signals and trades, with running statistics per day. Day records are
// created lazily on first access in the configured local zone.
package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"rsimaster/internal/model"
)

var (
	// ErrOpenTrade is returned when appending a trade while another is
	// still open. At most one trade per day may have status OPEN.
	ErrOpenTrade = errors.New("journal: another trade is still open")

	// ErrTradeNotFound is returned when closing an unknown trade id.
	ErrTradeNotFound = errors.New("journal: trade not found")

	// ErrTradeClosed is returned when closing an already-closed trade.
	ErrTradeClosed = errors.New("journal: trade already closed")
)

// Journal provides the day-record operations over a Store. Every
// mutating operation is a full read-modify-write of the day's record;
// the Journal must therefore be the single logical writer for its
// store (see Store).
type Journal struct {
	store Store
	loc   *time.Location
	now   func() time.Time
}

// New creates a journal that partitions days in the given local zone.
func New(store Store, loc *time.Location) *Journal {
	return &Journal{
		store: store,
		loc:   loc,
		now:   func() time.Time { return time.Now().In(loc) },
	}
}

// SetClock overrides the journal's wall clock; used in tests.
func (j *Journal) SetClock(now func() time.Time) { j.now = now }

func (j *Journal) today() string {
	return j.now().Format("2006-01-02")
}

// Day loads today's record, creating an empty one if none exists yet.
func (j *Journal) Day(ctx context.Context) (*model.JournalDay, error) {
	return j.load(ctx, j.today())
}

// DayFor loads the record for a specific date (YYYY-MM-DD), creating an
// empty one if none exists.
func (j *Journal) DayFor(ctx context.Context, date string) (*model.JournalDay, error) {
	return j.load(ctx, date)
}

func (j *Journal) load(ctx context.Context, date string) (*model.JournalDay, error) {
	day, ok, err := j.store.Load(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("journal: load %s: %w", date, err)
	}
	if !ok {
		day = model.NewJournalDay(date)
	}
	return day, nil
}

// AppendSignal records a detected signal, stamped with a ULID and the
// local wall-clock time.
func (j *Journal) AppendSignal(ctx context.Context, rec model.SignalRecord) error {
	day, err := j.Day(ctx)
	if err != nil {
		return err
	}

	now := j.now()
	if rec.ID == "" {
		rec.ID = ulid.Make().String()
	}
	rec.Timestamp = now
	rec.Time = now.Format("15:04:05")

	day.SignalsDetected = append(day.SignalsDetected, rec)
	return j.save(ctx, day)
}

// AppendTrade records a newly opened trade and returns its id. The id
// is the current trade count plus one; status is forced to OPEN and the
// open time stamped. Fails with ErrOpenTrade if a trade is active.
func (j *Journal) AppendTrade(ctx context.Context, t model.TradeRecord) (int, error) {
	day, err := j.Day(ctx)
	if err != nil {
		return 0, err
	}
	if day.ActiveTrade() != nil {
		return 0, ErrOpenTrade
	}

	t.ID = len(day.Trades) + 1
	t.Status = model.StatusOpen
	t.OpenTime = j.now()
	t.CloseTime = nil
	t.Result = ""
	t.PnL = 0

	day.Trades = append(day.Trades, t)
	day.Stats.TotalTrades++

	if err := j.save(ctx, day); err != nil {
		return 0, err
	}
	return t.ID, nil
}

// CloseTrade closes the trade with the given id, applying pnl and
// result, and updates the day statistics: WIN increments wins and
// resets the loss streak, LOSS increments losses and the streak,
// BREAKEVEN counts toward neither bucket.
func (j *Journal) CloseTrade(ctx context.Context, id int, pnl float64, result model.TradeResult) error {
	day, err := j.Day(ctx)
	if err != nil {
		return err
	}

	var trade *model.TradeRecord
	for i := range day.Trades {
		if day.Trades[i].ID == id {
			trade = &day.Trades[i]
			break
		}
	}
	if trade == nil {
		return fmt.Errorf("%w: id %d", ErrTradeNotFound, id)
	}
	if trade.Status == model.StatusClosed {
		return fmt.Errorf("%w: id %d", ErrTradeClosed, id)
	}

	now := j.now()
	trade.Status = model.StatusClosed
	trade.PnL = pnl
	trade.Result = result
	trade.CloseTime = &now

	switch result {
	case model.ResultWin:
		day.Stats.Wins++
		day.Stats.ConsecutiveLosses = 0
	case model.ResultLoss:
		day.Stats.Losses++
		day.Stats.ConsecutiveLosses++
	case model.ResultBreakeven:
		// counted in total_trades only
	}
	day.Stats.TotalPnL += pnl

	return j.save(ctx, day)
}

// ActiveTrade returns the last OPEN trade of the current day, if any.
func (j *Journal) ActiveTrade(ctx context.Context) (*model.TradeRecord, bool, error) {
	day, err := j.Day(ctx)
	if err != nil {
		return nil, false, err
	}
	t := day.ActiveTrade()
	return t, t != nil, nil
}

// Stats returns the current day's aggregate statistics.
func (j *Journal) Stats(ctx context.Context) (model.DayStats, error) {
	day, err := j.Day(ctx)
	if err != nil {
		return model.DayStats{}, err
	}
	return day.Stats, nil
}

// IncrementSignalsIgnored bumps the ignored-signal counter, used when
// an actionable signal is blocked by a gate or declined by the
// operator.
func (j *Journal) IncrementSignalsIgnored(ctx context.Context) error {
	day, err := j.Day(ctx)
	if err != nil {
		return err
	}
	day.Stats.SignalsIgnored++
	return j.save(ctx, day)
}

func (j *Journal) save(ctx context.Context, day *model.JournalDay) error {
	if err := j.store.Save(ctx, day); err != nil {
		return fmt.Errorf("journal: save %s: %w", day.Date, err)
	}
	return nil
}
