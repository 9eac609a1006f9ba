package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"rsimaster/internal/model"
)

const defaultStreamURL = "wss://fstream.binance.com/ws"

// KlineStream subscribes to the futures kline websocket for one symbol
// and interval, emitting a candle each time a bar closes. Used to wake
// the scanner at bar boundaries instead of blind polling.
type KlineStream struct {
	Symbol   string
	Interval string
	URL      string // defaults to the Binance futures stream endpoint
	log      *slog.Logger

	// OnReconnect is an optional metrics hook.
	OnReconnect func()
}

// NewKlineStream creates a stream for the given symbol and interval.
func NewKlineStream(symbol, interval string, log *slog.Logger) *KlineStream {
	return &KlineStream{
		Symbol:   symbol,
		Interval: interval,
		URL:      defaultStreamURL,
		log:      log,
	}
}

type klineEvent struct {
	EventType string `json:"e"`
	Kline     struct {
		OpenTime  int64  `json:"t"`
		CloseTime int64  `json:"T"`
		Open      string `json:"o"`
		High      string `json:"h"`
		Low       string `json:"l"`
		Close     string `json:"c"`
		Volume    string `json:"v"`
		Closed    bool   `json:"x"`
	} `json:"k"`
}

// Run connects and streams closed candles into out until ctx is
// cancelled, reconnecting with exponential backoff on failures.
func (s *KlineStream) Run(ctx context.Context, out chan<- model.Candle) error {
	url := fmt.Sprintf("%s/%s@kline_%s", s.URL, strings.ToLower(s.Symbol), s.Interval)
	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := s.consume(ctx, url, out)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.log.Warn("kline stream disconnected, retrying", "err", err, "backoff", backoff)
		if s.OnReconnect != nil {
			s.OnReconnect()
		}
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff = time.Duration(math.Min(float64(maxBackoff), float64(backoff)*1.8))
	}
}

func (s *KlineStream) consume(ctx context.Context, url string, out chan<- model.Candle) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	s.log.Info("kline stream connected", "symbol", s.Symbol, "interval", s.Interval)

	conn.SetReadLimit(1 << 20)
	conn.SetReadDeadline(time.Now().Add(3 * time.Minute))
	conn.SetPingHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(3 * time.Minute))
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		return conn.WriteMessage(websocket.PongMessage, []byte(appData))
	})

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var ev klineEvent
		if err := json.Unmarshal(message, &ev); err != nil {
			s.log.Warn("failed to decode kline event", "err", err)
			continue
		}
		if ev.EventType != "kline" || !ev.Kline.Closed {
			continue
		}

		candle, err := ev.toCandle()
		if err != nil {
			s.log.Warn("invalid kline payload", "err", err)
			continue
		}

		select {
		case out <- candle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (ev *klineEvent) toCandle() (model.Candle, error) {
	k := ev.Kline
	c := model.Candle{
		OpenTime:  time.UnixMilli(k.OpenTime).UTC(),
		CloseTime: time.UnixMilli(k.CloseTime).UTC(),
	}
	for _, f := range []struct {
		s   string
		dst *float64
	}{
		{k.Open, &c.Open}, {k.High, &c.High}, {k.Low, &c.Low},
		{k.Close, &c.Close}, {k.Volume, &c.Volume},
	} {
		v, err := strconv.ParseFloat(f.s, 64)
		if err != nil {
			return model.Candle{}, err
		}
		*f.dst = v
	}
	return c, nil
}
