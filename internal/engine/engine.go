// Package engine runs the scan cycle: fetch candles, compute
// indicators, evaluate the signal rule, apply session and risk gates,
// and record the outcome. The engine only advises — it sizes and
// journals signals but never places orders.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"rsimaster/internal/indicator"
	"rsimaster/internal/journal"
	"rsimaster/internal/model"
	"rsimaster/internal/notification"
	"rsimaster/internal/position"
	"rsimaster/internal/risk"
	"rsimaster/internal/session"
	"rsimaster/internal/signal"
)

// MarketData is the slice of the feed the engine consumes.
type MarketData interface {
	Klines(ctx context.Context, symbol, interval string, limit int) ([]model.Candle, error)
	MarkPrice(ctx context.Context, symbol string) (float64, error)
}

// Publisher is the alert sink; satisfied by notification.Dispatcher.
type Publisher interface {
	Publish(alert notification.Alert)
}

// Config holds the engine's scan parameters.
type Config struct {
	Symbol        string
	OscInterval   string // short timeframe, e.g. "15m"
	TrendInterval string // long timeframe, e.g. "1h"
	OscLimit      int    // candles fetched for the oscillator
	TrendLimit    int    // candles fetched for the trend filter
	Strict        bool   // strict session mode

	SignalCooldown   time.Duration // min gap between entry alerts
	PreAlertCooldown time.Duration // min gap between pre-alerts
	PreAlertMargin   float64       // oscillator points from a level
	HeartbeatEvery   time.Duration
}

// TickResult is everything one scan cycle produced. Event is always
// populated; a journal write failure is reported in JournalErr without
// suppressing the event.
type TickResult struct {
	Event    model.SignalEvent
	Snapshot indicator.Snapshot
	Tier     model.SessionTier
	TierMsg  string
	Gate     risk.Decision
	Sizing   position.Sizing
	Levels   position.Levels
	Expect   position.Expectancy

	// Actionable is true when the signal passed every gate and an
	// entry alert was published.
	Actionable bool
	JournalErr error
}

// Hooks are optional metrics callbacks; nil hooks are skipped.
type Hooks struct {
	OnTick       func(dur time.Duration)
	OnSignal     func(direction string)
	OnGateDenial func(gate string)
	OnJournalErr func()
	OnObserve    func(osc, price float64)
}

// Engine wires the decision pipeline together.
type Engine struct {
	cfg        Config
	market     MarketData
	indicators *indicator.Engine
	detector   *signal.Detector
	clock      *session.Clock
	gate       *risk.Gate
	sizer      *position.Sizer
	journal    *journal.Journal
	alerts     Publisher
	log        *slog.Logger
	hooks      Hooks

	now func() time.Time

	lastSignalAlert time.Time
	lastPreAlert    time.Time
	lastHeartbeat   time.Time
	leverage        float64
}

// Deps bundles the engine's collaborators.
type Deps struct {
	Market     MarketData
	Indicators *indicator.Engine
	Detector   *signal.Detector
	Clock      *session.Clock
	Gate       *risk.Gate
	Sizer      *position.Sizer
	Journal    *journal.Journal
	Alerts     Publisher
	Log        *slog.Logger
	Hooks      Hooks
	Leverage   float64 // display only, shown in alerts
}

// New creates an engine.
func New(cfg Config, d Deps) *Engine {
	return &Engine{
		cfg:        cfg,
		market:     d.Market,
		indicators: d.Indicators,
		detector:   d.Detector,
		clock:      d.Clock,
		gate:       d.Gate,
		sizer:      d.Sizer,
		journal:    d.Journal,
		alerts:     d.Alerts,
		log:        d.Log,
		hooks:      d.Hooks,
		leverage:   d.Leverage,
		now:        func() time.Time { return time.Now().In(d.Clock.Location()) },
	}
}

// SetClock overrides the engine's wall clock; used in tests.
func (e *Engine) SetClock(now func() time.Time) { e.now = now }

// Tick runs one scan cycle. Data-feed and indicator failures degrade to
// a NONE event with a reason rather than an error: the loop must keep
// running through transient outages.
func (e *Engine) Tick(ctx context.Context) TickResult {
	started := time.Now()
	defer func() {
		if e.hooks.OnTick != nil {
			e.hooks.OnTick(time.Since(started))
		}
	}()

	now := e.now()
	res := TickResult{}
	res.Tier, res.TierMsg = e.clock.Tier(now)

	snap, err := e.observe(ctx, now)
	if err != nil {
		e.log.Warn("scan degraded", "err", err)
		res.Event = signal.Unavailable(err.Error())
		return res
	}
	res.Snapshot = snap
	if e.hooks.OnObserve != nil {
		e.hooks.OnObserve(snap.OscCurrent, snap.RefPrice)
	}

	res.Event = e.detector.Evaluate(snap)

	if res.Event.Direction == model.None {
		e.maybePreAlert(snap, now)
		e.maybeHeartbeat(snap, res.Tier, now)
		return res
	}

	if e.hooks.OnSignal != nil {
		e.hooks.OnSignal(string(res.Event.Direction))
	}
	res.JournalErr = e.recordSignal(ctx, res.Event, snap)

	// Gates run in order: trend alignment, session, risk. The first
	// block marks the signal ignored; the event itself survives.
	day, err := e.journal.Day(ctx)
	if err != nil {
		// Without the day record the risk gates cannot be evaluated;
		// fail closed.
		res.JournalErr = err
		res.Gate = risk.Decision{Gate: "journal", Reason: "journal unavailable"}
		return res
	}

	if !res.Event.CanTrade {
		e.markIgnored(ctx, &res)
		return res
	}

	if ok, msg := e.clock.CanTrade(now, e.cfg.Strict); !ok {
		res.Event.CanTrade = false
		res.Event.Warnings = append(res.Event.Warnings, msg)
		res.Gate = risk.Decision{Gate: "session", Reason: msg}
		if e.hooks.OnGateDenial != nil {
			e.hooks.OnGateDenial("session")
		}
		e.markIgnored(ctx, &res)
		return res
	}

	res.Gate = e.gate.Check(day, now)
	if !res.Gate.Allowed {
		res.Event.CanTrade = false
		res.Event.Warnings = append(res.Event.Warnings, res.Gate.Reason)
		if e.hooks.OnGateDenial != nil {
			e.hooks.OnGateDenial(res.Gate.Gate)
		}
		e.markIgnored(ctx, &res)
		return res
	}

	res.Sizing = e.sizer.Size()
	res.Levels = e.sizer.LevelsFor(snap.RefPrice, res.Event.Direction)
	res.Expect = e.sizer.ExpectedPnL(res.Sizing.Size)
	res.Actionable = true

	if now.Sub(e.lastSignalAlert) >= e.cfg.SignalCooldown {
		e.lastSignalAlert = now
		e.alerts.Publish(notification.SignalAlert(res.Event, snap, res.Levels, res.Sizing, e.leverage))
	}

	e.log.Info("actionable signal",
		"direction", res.Event.Direction,
		"oscillator", snap.OscCurrent,
		"price", snap.RefPrice,
		"size", res.Sizing.Size)

	return res
}

func (e *Engine) observe(ctx context.Context, now time.Time) (indicator.Snapshot, error) {
	short, err := e.market.Klines(ctx, e.cfg.Symbol, e.cfg.OscInterval, e.cfg.OscLimit)
	if err != nil {
		return indicator.Snapshot{}, fmt.Errorf("fetch %s candles: %w", e.cfg.OscInterval, err)
	}
	long, err := e.market.Klines(ctx, e.cfg.Symbol, e.cfg.TrendInterval, e.cfg.TrendLimit)
	if err != nil {
		return indicator.Snapshot{}, fmt.Errorf("fetch %s candles: %w", e.cfg.TrendInterval, err)
	}

	// Mark price is preferred for the reference; the last close stands
	// in when the endpoint is down.
	refPrice, err := e.market.MarkPrice(ctx, e.cfg.Symbol)
	if err != nil {
		e.log.Warn("mark price unavailable, using last close", "err", err)
		refPrice = 0
	}

	return e.indicators.Compute(short, long, refPrice, now)
}

func (e *Engine) recordSignal(ctx context.Context, ev model.SignalEvent, snap indicator.Snapshot) error {
	err := e.journal.AppendSignal(ctx, model.SignalRecord{
		Direction:  ev.Direction,
		Oscillator: snap.OscCurrent,
		Price:      snap.RefPrice,
		TrendValue: snap.TrendValue,
	})
	if err != nil {
		e.log.Error("journal write failed", "err", err)
		if e.hooks.OnJournalErr != nil {
			e.hooks.OnJournalErr()
		}
	}
	return err
}

func (e *Engine) markIgnored(ctx context.Context, res *TickResult) {
	if err := e.journal.IncrementSignalsIgnored(ctx); err != nil {
		e.log.Error("journal write failed", "err", err)
		if e.hooks.OnJournalErr != nil {
			e.hooks.OnJournalErr()
		}
		if res.JournalErr == nil {
			res.JournalErr = err
		}
	}
}

// maybePreAlert warns when the oscillator is within PreAlertMargin of
// an entry level but has not crossed yet.
func (e *Engine) maybePreAlert(snap indicator.Snapshot, now time.Time) {
	if now.Sub(e.lastPreAlert) < e.cfg.PreAlertCooldown {
		return
	}
	oversold, overbought := e.detector.Levels()

	var dir model.Direction
	switch {
	case snap.OscCurrent > oversold && snap.OscCurrent <= oversold+e.cfg.PreAlertMargin:
		dir = model.Long
	case snap.OscCurrent < overbought && snap.OscCurrent >= overbought-e.cfg.PreAlertMargin:
		dir = model.Short
	default:
		return
	}

	e.lastPreAlert = now
	e.alerts.Publish(notification.PreAlert(dir, snap.OscCurrent, snap.RefPrice))
}

func (e *Engine) maybeHeartbeat(snap indicator.Snapshot, tier model.SessionTier, now time.Time) {
	if e.lastHeartbeat.IsZero() {
		e.lastHeartbeat = now
		return
	}
	if now.Sub(e.lastHeartbeat) < e.cfg.HeartbeatEvery {
		return
	}
	e.lastHeartbeat = now
	e.alerts.Publish(notification.Heartbeat(
		snap.OscCurrent, snap.RefPrice, tier, e.detector.Zone(snap.OscCurrent)))
}

// PollInterval returns how long to sleep between scans: tight during
// tradeable sessions, relaxed otherwise.
func (e *Engine) PollInterval() time.Duration {
	tier, _ := e.clock.Tier(e.now())
	if tier == model.TierOptimal || tier == model.TierGood {
		return 30 * time.Second
	}
	return 60 * time.Second
}
