package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"rsimaster/config"
	"rsimaster/internal/engine"
	"rsimaster/internal/feed"
	"rsimaster/internal/indicator"
	"rsimaster/internal/journal"
	"rsimaster/internal/logger"
	"rsimaster/internal/metrics"
	"rsimaster/internal/model"
	"rsimaster/internal/notification"
	"rsimaster/internal/position"
	"rsimaster/internal/risk"
	"rsimaster/internal/session"
	"rsimaster/internal/signal"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[scanner] config: %v", err)
	}

	lg := logger.Init("scanner", logger.ParseLevel(cfg.LogLevel))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	ossignal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		lg.Info("shutdown requested")
		cancel()
	}()

	m := metrics.New(prometheus.DefaultRegisterer)
	msrv := metrics.NewServer(cfg.MetricsAddr, lg)
	msrv.Start()
	defer func() {
		shutdownCtx, c := context.WithTimeout(context.Background(), 5*time.Second)
		defer c()
		msrv.Stop(shutdownCtx)
	}()

	store, err := journal.OpenStore(journal.StoreOptions{
		Backend:    cfg.JournalBackend,
		Dir:        cfg.JournalDir,
		SQLitePath: cfg.SQLitePath,
		Redis: journal.RedisStoreConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		},
	})
	if err != nil {
		log.Fatalf("[scanner] journal store: %v", err)
	}
	defer store.Close()

	clock := session.New(session.Config{
		UTCOffsetHours: cfg.UTCOffsetHours,
		Asia:           session.Window(cfg.AsiaWindow),
		Europe:         session.Window(cfg.EuropeWindow),
		Overlap:        session.Window(cfg.OverlapWindow),
	})

	var notifier notification.Notifier
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != "" {
		notifier = notification.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID)
		lg.Info("alerts via telegram", "chat_id", cfg.TelegramChatID)
	} else {
		notifier = notification.NewLogNotifier(lg)
		lg.Info("no telegram configured, alerts go to the log")
	}
	dispatcher := notification.NewDispatcher(notifier, 16, lg)
	dispatcher.OnFailure = m.NotifyFailures.Inc
	dispatcher.Start(ctx)

	client := feed.NewClient(lg)
	client.OnRetry = m.FeedRetries.Inc

	eng := engine.New(engine.Config{
		Symbol:           cfg.Symbol,
		OscInterval:      cfg.OscInterval,
		TrendInterval:    cfg.TrendInterval,
		OscLimit:         cfg.OscLimit,
		TrendLimit:       cfg.TrendLimit,
		Strict:           cfg.StrictSessions,
		SignalCooldown:   cfg.SignalCooldown,
		PreAlertCooldown: cfg.PreAlertCooldown,
		PreAlertMargin:   cfg.PreAlertMargin,
		HeartbeatEvery:   cfg.HeartbeatEvery,
	}, engine.Deps{
		Market: client,
		Indicators: indicator.NewEngine(indicator.Config{
			OscPeriod:   cfg.OscPeriod,
			TrendPeriod: cfg.TrendPeriod,
		}),
		Detector: signal.NewDetector(cfg.Oversold, cfg.Overbought, cfg.OscPeriod),
		Clock:    clock,
		Gate: risk.NewGate(risk.Config{
			MaxConsecutiveLosses: cfg.MaxConsecutiveLosses,
			Cooldown:             cfg.Cooldown,
			MaxDailyTrades:       cfg.MaxDailyTrades,
			CooldownRequiresWin:  cfg.CooldownRequiresWin,
		}),
		Sizer: position.NewSizer(position.Config{
			CapitalTotal:    cfg.CapitalTotal,
			CapitalFutures:  cfg.CapitalFutures,
			Leverage:        cfg.Leverage,
			RiskPct:         cfg.RiskPct,
			StopLossPct:     cfg.StopLossPct,
			TakeProfitPct:   cfg.TakeProfitPct,
			RoundTripFeePct: cfg.RoundTripFeePct,
			ExpectedWinRate: cfg.ExpectedWinRate,
		}),
		Journal:  journal.New(store, clock.Location()),
		Alerts:   dispatcher,
		Log:      lg,
		Leverage: cfg.Leverage,
		Hooks: engine.Hooks{
			OnTick:       func(d time.Duration) { m.TicksTotal.Inc(); m.TickDur.Observe(d.Seconds()) },
			OnSignal:     func(dir string) { m.SignalsTotal.WithLabelValues(dir).Inc() },
			OnGateDenial: func(gate string) { m.GateDenials.WithLabelValues(gate).Inc() },
			OnJournalErr: m.JournalErrors.Inc,
			OnObserve: func(osc, price float64) {
				m.Oscillator.Set(osc)
				m.LastPrice.Set(price)
			},
		},
	})

	// Optional bar-close wakeups alongside the poll timer.
	wake := make(chan model.Candle, 1)
	if cfg.UseStream {
		stream := feed.NewKlineStream(cfg.Symbol, cfg.OscInterval, lg)
		stream.OnReconnect = m.WSReconnects.Inc
		go func() {
			if err := stream.Run(ctx, wake); err != nil && ctx.Err() == nil {
				lg.Error("kline stream stopped", "err", err)
			}
		}()
	}

	lg.Info("scanner started",
		"symbol", cfg.Symbol,
		"osc_interval", cfg.OscInterval,
		"trend_interval", cfg.TrendInterval,
		"journal_backend", cfg.JournalBackend)

	run(ctx, eng, wake, lg)
	lg.Info("scanner stopped")
}

// run drives the scan loop: a tick per poll interval, plus one per
// closed candle when the stream is on. The interval adapts to the
// session tier after every tick.
func run(ctx context.Context, eng *engine.Engine, wake <-chan model.Candle, lg *slog.Logger) {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		case c := <-wake:
			lg.Debug("bar closed", "close", c.Close)
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}

		eng.Tick(ctx)
		timer.Reset(eng.PollInterval())
	}
}
