package cli

import (
	"log/slog"

	"rsimaster/config"
	"rsimaster/internal/indicator"
	"rsimaster/internal/journal"
	"rsimaster/internal/logger"
	"rsimaster/internal/position"
	"rsimaster/internal/risk"
	"rsimaster/internal/session"
	"rsimaster/internal/signal"
)

// app bundles the collaborators a command needs, built fresh per
// invocation from the same configuration the scanner uses.
type app struct {
	cfg      *config.Config
	log      *slog.Logger
	store    journal.Store
	journal  *journal.Journal
	clock    *session.Clock
	sizer    *position.Sizer
	detector *signal.Detector
	indic    *indicator.Engine
	gate     *risk.Gate
}

func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.Init("rsictl", logger.ParseLevel(cfg.LogLevel))

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
		return nil, err
	}

	clock := session.New(session.Config{
		UTCOffsetHours: cfg.UTCOffsetHours,
		Asia:           session.Window(cfg.AsiaWindow),
		Europe:         session.Window(cfg.EuropeWindow),
		Overlap:        session.Window(cfg.OverlapWindow),
	})

	return &app{
		cfg:     cfg,
		log:     log,
		store:   store,
		journal: journal.New(store, clock.Location()),
		clock:   clock,
		sizer: position.NewSizer(position.Config{
			CapitalTotal:    cfg.CapitalTotal,
			CapitalFutures:  cfg.CapitalFutures,
			Leverage:        cfg.Leverage,
			RiskPct:         cfg.RiskPct,
			StopLossPct:     cfg.StopLossPct,
			TakeProfitPct:   cfg.TakeProfitPct,
			RoundTripFeePct: cfg.RoundTripFeePct,
			ExpectedWinRate: cfg.ExpectedWinRate,
		}),
		detector: signal.NewDetector(cfg.Oversold, cfg.Overbought, cfg.OscPeriod),
		indic: indicator.NewEngine(indicator.Config{
			OscPeriod:   cfg.OscPeriod,
			TrendPeriod: cfg.TrendPeriod,
		}),
		gate: risk.NewGate(risk.Config{
			MaxConsecutiveLosses: cfg.MaxConsecutiveLosses,
			Cooldown:             cfg.Cooldown,
			MaxDailyTrades:       cfg.MaxDailyTrades,
			CooldownRequiresWin:  cfg.CooldownRequiresWin,
		}),
	}, nil
}

func (a *app) close() {
	a.store.Close()
}
