// Package config loads scanner configuration from environment
// variables (with a .env file overlay via godotenv) and an optional
// YAML file, then validates the result before anything starts.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Window is an hour range [Start, End) in the configured local zone.
type Window struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

// Config holds all application configuration.
type Config struct {
	// Market
	Symbol        string `yaml:"symbol"`
	OscInterval   string `yaml:"osc_interval"`
	TrendInterval string `yaml:"trend_interval"`
	OscLimit      int    `yaml:"osc_limit"`
	TrendLimit    int    `yaml:"trend_limit"`

	// Indicators and entry levels
	OscPeriod   int     `yaml:"osc_period"`
	TrendPeriod int     `yaml:"trend_period"`
	Oversold    float64 `yaml:"oversold"`
	Overbought  float64 `yaml:"overbought"`

	// Account and sizing. Percentages are whole numbers (0.8 = 0.8%).
	CapitalTotal    float64 `yaml:"capital_total"`
	CapitalFutures  float64 `yaml:"capital_futures"`
	Leverage        float64 `yaml:"leverage"`
	RiskPct         float64 `yaml:"risk_pct"`
	StopLossPct     float64 `yaml:"stop_loss_pct"`
	TakeProfitPct   float64 `yaml:"take_profit_pct"`
	RoundTripFeePct float64 `yaml:"round_trip_fee_pct"`
	ExpectedWinRate float64 `yaml:"expected_win_rate"`

	// Risk gates
	MaxConsecutiveLosses int           `yaml:"max_consecutive_losses"`
	Cooldown             time.Duration `yaml:"cooldown"`
	MaxDailyTrades       int           `yaml:"max_daily_trades"`
	CooldownRequiresWin  bool          `yaml:"cooldown_requires_win"`

	// Sessions
	UTCOffsetHours int    `yaml:"utc_offset_hours"`
	AsiaWindow     Window `yaml:"asia_window"`
	EuropeWindow   Window `yaml:"europe_window"`
	OverlapWindow  Window `yaml:"overlap_window"`
	StrictSessions bool   `yaml:"strict_sessions"`

	// Alerting cadence
	SignalCooldown   time.Duration `yaml:"signal_cooldown"`
	PreAlertCooldown time.Duration `yaml:"pre_alert_cooldown"`
	PreAlertMargin   float64       `yaml:"pre_alert_margin"`
	HeartbeatEvery   time.Duration `yaml:"heartbeat_every"`

	// Journal backend: file | sqlite | redis
	JournalBackend string `yaml:"journal_backend"`
	JournalDir     string `yaml:"journal_dir"`
	SQLitePath     string `yaml:"sqlite_path"`
	RedisAddr      string `yaml:"redis_addr"`
	RedisPassword  string `yaml:"redis_password"`
	RedisDB        int    `yaml:"redis_db"`

	// Notifications (optional; log-only when token is empty)
	TelegramBotToken string `yaml:"telegram_bot_token"`
	TelegramChatID   string `yaml:"telegram_chat_id"`

	// Infrastructure
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
	UseStream   bool   `yaml:"use_stream"` // wake on kline websocket closes
}

// Load reads configuration from the environment with defaults, then
// overlays the YAML file named by CONFIG_FILE if set. A .env file in
// the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load() // optional

	c := &Config{
		Symbol:        getEnv("SYMBOL", "ETHUSDT"),
		OscInterval:   getEnv("OSC_INTERVAL", "15m"),
		TrendInterval: getEnv("TREND_INTERVAL", "1h"),
		OscLimit:      getInt("OSC_LIMIT", 50),
		TrendLimit:    getInt("TREND_LIMIT", 250),

		OscPeriod:   getInt("OSC_PERIOD", 21),
		TrendPeriod: getInt("TREND_PERIOD", 200),
		Oversold:    getFloat("OVERSOLD", 20),
		Overbought:  getFloat("OVERBOUGHT", 80),

		CapitalTotal:    getFloat("CAPITAL_TOTAL", 3000),
		CapitalFutures:  getFloat("CAPITAL_FUTURES", 600),
		Leverage:        getFloat("LEVERAGE", 10),
		RiskPct:         getFloat("RISK_PCT", 1),
		StopLossPct:     getFloat("STOP_LOSS_PCT", 0.8),
		TakeProfitPct:   getFloat("TAKE_PROFIT_PCT", 0.5),
		RoundTripFeePct: getFloat("ROUND_TRIP_FEE_PCT", 0.07),
		ExpectedWinRate: getFloat("EXPECTED_WIN_RATE", 75.9),

		MaxConsecutiveLosses: getInt("MAX_CONSECUTIVE_LOSSES", 3),
		Cooldown:             getDur("COOLDOWN", 30*time.Minute),
		MaxDailyTrades:       getInt("MAX_DAILY_TRADES", 5),
		CooldownRequiresWin:  getBool("COOLDOWN_REQUIRES_WIN", true),

		UTCOffsetHours: getInt("UTC_OFFSET_HOURS", 5),
		AsiaWindow:     Window{getInt("ASIA_START", 3), getInt("ASIA_END", 8)},
		EuropeWindow:   Window{getInt("EUROPE_START", 11), getInt("EUROPE_END", 15)},
		OverlapWindow:  Window{getInt("OVERLAP_START", 17), getInt("OVERLAP_END", 21)},
		StrictSessions: getBool("STRICT_SESSIONS", true),

		SignalCooldown:   getDur("SIGNAL_COOLDOWN", 30*time.Minute),
		PreAlertCooldown: getDur("PRE_ALERT_COOLDOWN", 15*time.Minute),
		PreAlertMargin:   getFloat("PRE_ALERT_MARGIN", 5),
		HeartbeatEvery:   getDur("HEARTBEAT_EVERY", 4*time.Hour),

		JournalBackend: getEnv("JOURNAL_BACKEND", "file"),
		JournalDir:     getEnv("JOURNAL_DIR", "journal"),
		SQLitePath:     getEnv("SQLITE_PATH", "data/journal.db"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getInt("REDIS_DB", 0),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnv("TELEGRAM_CHAT_ID", ""),

		MetricsAddr: getEnv("METRICS_ADDR", ":9090"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		UseStream:   getBool("USE_STREAM", false),
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		// Unmarshal over the populated struct: only keys present in the
		// file override.
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the invariants the rest of the system assumes.
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.Symbol == "" {
		fail("symbol must be set")
	}
	if c.OscPeriod < 2 {
		fail("osc_period must be at least 2, got %d", c.OscPeriod)
	}
	if c.TrendPeriod < 1 {
		fail("trend_period must be positive, got %d", c.TrendPeriod)
	}
	if !(0 < c.Oversold && c.Oversold < c.Overbought && c.Overbought < 100) {
		fail("entry levels must satisfy 0 < oversold < overbought < 100, got %.1f / %.1f",
			c.Oversold, c.Overbought)
	}
	if c.OscLimit < c.OscPeriod+2 {
		fail("osc_limit %d too small for osc_period %d", c.OscLimit, c.OscPeriod)
	}
	if c.TrendLimit < c.TrendPeriod {
		fail("trend_limit %d too small for trend_period %d", c.TrendLimit, c.TrendPeriod)
	}

	if c.CapitalTotal <= 0 || c.CapitalFutures <= 0 {
		fail("capital amounts must be positive")
	}
	if c.Leverage <= 0 {
		fail("leverage must be positive, got %g", c.Leverage)
	}
	if c.RiskPct <= 0 {
		fail("risk_pct must be positive, got %g", c.RiskPct)
	}
	if c.StopLossPct <= 0 {
		fail("stop_loss_pct must be positive, got %g", c.StopLossPct)
	}
	if c.TakeProfitPct <= 0 {
		fail("take_profit_pct must be positive, got %g", c.TakeProfitPct)
	}
	if c.ExpectedWinRate < 0 || c.ExpectedWinRate > 100 {
		fail("expected_win_rate must be within [0,100], got %g", c.ExpectedWinRate)
	}

	if c.MaxConsecutiveLosses < 1 {
		fail("max_consecutive_losses must be at least 1")
	}
	if c.MaxDailyTrades < 1 {
		fail("max_daily_trades must be at least 1")
	}

	for _, w := range []struct {
		name string
		win  Window
	}{
		{"asia_window", c.AsiaWindow},
		{"europe_window", c.EuropeWindow},
		{"overlap_window", c.OverlapWindow},
	} {
		if w.win.Start < 0 || w.win.End > 24 || w.win.Start >= w.win.End {
			fail("%s [%d,%d) is not a valid hour range", w.name, w.win.Start, w.win.End)
		}
	}

	switch c.JournalBackend {
	case "file", "sqlite", "redis":
	default:
		fail("journal_backend must be file, sqlite or redis, got %q", c.JournalBackend)
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getDur(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
