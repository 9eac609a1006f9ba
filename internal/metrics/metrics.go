// Package metrics exposes Prometheus instrumentation for the scanner.
package metrics

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the scanner.
type Metrics struct {
	TicksTotal     prometheus.Counter
	SignalsTotal   *prometheus.CounterVec // labels: direction
	GateDenials    *prometheus.CounterVec // labels: gate
	JournalErrors  prometheus.Counter
	NotifyFailures prometheus.Counter
	FeedRetries    prometheus.Counter
	WSReconnects   prometheus.Counter
	TickDur        prometheus.Histogram
	Oscillator     prometheus.Gauge
	LastPrice      prometheus.Gauge
}

// New registers and returns all scanner metrics on the given registerer.
// Pass prometheus.DefaultRegisterer in production; tests use a fresh
// registry to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scanner_ticks_total",
			Help: "Total scan cycles executed",
		}),
		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scanner_signals_total",
			Help: "Actionable signals detected (by direction)",
		}, []string{"direction"}),
		GateDenials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scanner_gate_denials_total",
			Help: "Signals blocked by a risk gate (by gate)",
		}, []string{"gate"}),
		JournalErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scanner_journal_errors_total",
			Help: "Journal persistence failures",
		}),
		NotifyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scanner_notify_failures_total",
			Help: "Alert deliveries that failed",
		}),
		FeedRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scanner_feed_retries_total",
			Help: "REST feed request retries",
		}),
		WSReconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scanner_ws_reconnects_total",
			Help: "Kline stream reconnection attempts",
		}),
		TickDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "scanner_tick_duration_seconds",
			Help:    "Scan cycle latency including feed round trips",
			Buckets: prometheus.DefBuckets,
		}),
		Oscillator: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scanner_oscillator_value",
			Help: "Most recent oscillator reading",
		}),
		LastPrice: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scanner_last_price",
			Help: "Most recent reference price",
		}),
	}

	reg.MustRegister(
		m.TicksTotal,
		m.SignalsTotal,
		m.GateDenials,
		m.JournalErrors,
		m.NotifyFailures,
		m.FeedRetries,
		m.WSReconnects,
		m.TickDur,
		m.Oscillator,
		m.LastPrice,
	)

	return m
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	addr string
	srv  *http.Server
	log  *slog.Logger
}

// NewServer creates a metrics and health server.
func NewServer(addr string, log *slog.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	return &Server{
		addr: addr,
		log:  log,
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		s.log.Info("metrics server listening", "addr", s.addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			s.log.Error("metrics server error", "err", err)
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) {
	s.srv.Shutdown(ctx)
}
