package journal

import (
	"context"
	"encoding/json"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rsimaster/internal/model"
)

var testLoc = time.FixedZone("UTC+5", 5*3600)

func testJournal(t *testing.T) (*Journal, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	j := New(store, testLoc)
	j.SetClock(func() time.Time {
		return time.Date(2025, 6, 2, 14, 30, 0, 0, testLoc)
	})
	return j, dir
}

func TestDay_LazyCreation(t *testing.T) {
	j, dir := testJournal(t)
	ctx := context.Background()

	day, err := j.Day(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-02", day.Date)
	assert.Empty(t, day.Trades)
	assert.Empty(t, day.SignalsDetected)

	// Reading alone must not create a file.
	_, err = os.Stat(filepath.Join(dir, "journal_2025-06-02.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestAppendSignal(t *testing.T) {
	j, _ := testJournal(t)
	ctx := context.Background()

	err := j.AppendSignal(ctx, model.SignalRecord{
		Direction:  model.Long,
		Oscillator: 21.3,
		Price:      3105.5,
		TrendValue: 3080.2,
	})
	require.NoError(t, err)

	day, err := j.Day(ctx)
	require.NoError(t, err)
	require.Len(t, day.SignalsDetected, 1)

	rec := day.SignalsDetected[0]
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "14:30:00", rec.Time)
	assert.Equal(t, model.Long, rec.Direction)
}

func TestAppendTrade_AssignsSequentialIDs(t *testing.T) {
	j, _ := testJournal(t)
	ctx := context.Background()

	id, err := j.AppendTrade(ctx, model.TradeRecord{Direction: model.Long, EntryPrice: 3100})
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	require.NoError(t, j.CloseTrade(ctx, 1, 10, model.ResultWin))

	id, err = j.AppendTrade(ctx, model.TradeRecord{Direction: model.Short, EntryPrice: 3200})
	require.NoError(t, err)
	assert.Equal(t, 2, id)

	st, err := j.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, st.TotalTrades)
}

func TestAppendTrade_RejectsSecondOpen(t *testing.T) {
	j, _ := testJournal(t)
	ctx := context.Background()

	_, err := j.AppendTrade(ctx, model.TradeRecord{Direction: model.Long})
	require.NoError(t, err)

	_, err = j.AppendTrade(ctx, model.TradeRecord{Direction: model.Short})
	require.ErrorIs(t, err, ErrOpenTrade)
}

func TestCloseTrade_StatsPerResult(t *testing.T) {
	j, _ := testJournal(t)
	ctx := context.Background()

	open := func() int {
		id, err := j.AppendTrade(ctx, model.TradeRecord{Direction: model.Long})
		require.NoError(t, err)
		return id
	}

	require.NoError(t, j.CloseTrade(ctx, open(), -24, model.ResultLoss))
	require.NoError(t, j.CloseTrade(ctx, open(), -12, model.ResultLoss))

	st, err := j.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Losses)
	assert.Equal(t, 2, st.ConsecutiveLosses)
	assert.InDelta(t, -36, st.TotalPnL, 1e-9)

	// A win resets the streak.
	require.NoError(t, j.CloseTrade(ctx, open(), 18, model.ResultWin))
	st, err = j.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Wins)
	assert.Equal(t, 0, st.ConsecutiveLosses)

	// Breakeven counts toward neither bucket and keeps the streak.
	require.NoError(t, j.CloseTrade(ctx, open(), 0, model.ResultBreakeven))
	st, err = j.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Wins)
	assert.Equal(t, 2, st.Losses)
	assert.Equal(t, 0, st.ConsecutiveLosses)
	assert.Equal(t, 4, st.TotalTrades)
}

func TestCloseTrade_Errors(t *testing.T) {
	j, _ := testJournal(t)
	ctx := context.Background()

	err := j.CloseTrade(ctx, 7, 0, model.ResultWin)
	require.ErrorIs(t, err, ErrTradeNotFound)

	id, err := j.AppendTrade(ctx, model.TradeRecord{Direction: model.Long})
	require.NoError(t, err)
	require.NoError(t, j.CloseTrade(ctx, id, 5, model.ResultWin))

	err = j.CloseTrade(ctx, id, 5, model.ResultWin)
	require.ErrorIs(t, err, ErrTradeClosed)
}

func TestIncrementSignalsIgnored(t *testing.T) {
	j, _ := testJournal(t)
	ctx := context.Background()

	require.NoError(t, j.IncrementSignalsIgnored(ctx))
	require.NoError(t, j.IncrementSignalsIgnored(ctx))

	st, err := j.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, st.SignalsIgnored)
}

func TestActiveTrade(t *testing.T) {
	j, _ := testJournal(t)
	ctx := context.Background()

	_, ok, err := j.ActiveTrade(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	id, err := j.AppendTrade(ctx, model.TradeRecord{Direction: model.Long})
	require.NoError(t, err)

	tr, ok, err := j.ActiveTrade(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, id, tr.ID)
	assert.Equal(t, model.StatusOpen, tr.Status)
}

// TestFileShape pins the on-disk JSON contract.
func TestFileShape(t *testing.T) {
	j, dir := testJournal(t)
	ctx := context.Background()

	id, err := j.AppendTrade(ctx, model.TradeRecord{Direction: model.Long, EntryPrice: 3100})
	require.NoError(t, err)
	require.NoError(t, j.CloseTrade(ctx, id, -24.5, model.ResultLoss))
	require.NoError(t, j.AppendSignal(ctx, model.SignalRecord{Direction: model.Long, Oscillator: 21}))

	raw, err := os.ReadFile(filepath.Join(dir, "journal_2025-06-02.json"))
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &doc))
	for _, key := range []string{"date", "trades", "signals_detected", "stats"} {
		assert.Contains(t, doc, key)
	}

	var stats map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(doc["stats"], &stats))
	for _, key := range []string{
		"total_trades", "wins", "losses", "total_pnl", "consecutive_losses", "signals_ignored",
	} {
		assert.Contains(t, stats, key)
	}
}

func TestReload_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	clock := func() time.Time { return time.Date(2025, 6, 2, 9, 0, 0, 0, testLoc) }

	j1 := New(store, testLoc)
	j1.SetClock(clock)
	id, err := j1.AppendTrade(ctx, model.TradeRecord{Direction: model.Short, EntryPrice: 3200})
	require.NoError(t, err)
	require.NoError(t, j1.CloseTrade(ctx, id, 12, model.ResultWin))

	// A fresh journal over the same store sees the identical record.
	j2 := New(store, testLoc)
	j2.SetClock(clock)
	d1, err := j1.Day(ctx)
	require.NoError(t, err)
	d2, err := j2.Day(ctx)
	require.NoError(t, err)
	assert.Equal(t, d1, d2)
}

// TestRandomizedSequences drives random open/close sequences and checks
// the day invariants after every step.
func TestRandomizedSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	results := []model.TradeResult{model.ResultWin, model.ResultLoss, model.ResultBreakeven}

	for run := 0; run < 20; run++ {
		j, _ := testJournal(t)
		ctx := context.Background()

		var closed []model.TradeResult
		for step := 0; step < 40; step++ {
			_, hasOpen, err := j.ActiveTrade(ctx)
			require.NoError(t, err)

			if !hasOpen || rng.Intn(3) == 0 {
				if hasOpen {
					tr, _, err := j.ActiveTrade(ctx)
					require.NoError(t, err)
					res := results[rng.Intn(len(results))]
					pnl := rng.Float64()*60 - 30
					if res == model.ResultBreakeven {
						pnl = 0
					}
					require.NoError(t, j.CloseTrade(ctx, tr.ID, pnl, res))
					closed = append(closed, res)
				} else {
					_, err := j.AppendTrade(ctx, model.TradeRecord{Direction: model.Long})
					require.NoError(t, err)
				}
			} else {
				require.NoError(t, j.IncrementSignalsIgnored(ctx))
			}

			day, err := j.Day(ctx)
			require.NoError(t, err)
			checkDayInvariants(t, day, closed)
		}
	}
}

func checkDayInvariants(t *testing.T, day *model.JournalDay, closed []model.TradeResult) {
	t.Helper()

	open := 0
	var pnlSum float64
	for i, tr := range day.Trades {
		assert.Equal(t, i+1, tr.ID, "ids are sequential")
		if tr.Status == model.StatusOpen {
			open++
		}
		pnlSum += tr.PnL
	}
	assert.LessOrEqual(t, open, 1, "at most one open trade")
	assert.Equal(t, len(day.Trades), day.Stats.TotalTrades)
	assert.InDelta(t, pnlSum, day.Stats.TotalPnL, 1e-9)

	wins, losses, streak := 0, 0, 0
	for _, res := range closed {
		switch res {
		case model.ResultWin:
			wins++
			streak = 0
		case model.ResultLoss:
			losses++
			streak++
		}
	}
	assert.Equal(t, wins, day.Stats.Wins)
	assert.Equal(t, losses, day.Stats.Losses)
	assert.Equal(t, streak, day.Stats.ConsecutiveLosses)
}
