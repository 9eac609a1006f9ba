// Package feed retrieves market data from Binance USDⓈ-M futures. It
// is a thin adapter: the decision core only consumes the candle
// sequences and reference price it produces.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"rsimaster/internal/model"
)

const (
	defaultBaseURL = "https://fapi.binance.com/fapi/v1"
	userAgent      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Client polls Binance futures REST endpoints with retry and
// exponential backoff.
type Client struct {
	baseURL string
	httpc   *http.Client
	retries int
	log     *slog.Logger

	// OnRetry is an optional metrics hook invoked per retry attempt.
	OnRetry func()
}

// NewClient creates a REST client with default timeout and retries.
func NewClient(log *slog.Logger) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		httpc:   &http.Client{Timeout: 10 * time.Second},
		retries: 3,
		log:     log,
	}
}

// SetBaseURL overrides the API endpoint; used in tests.
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < c.retries; attempt++ {
		if attempt > 0 {
			if c.OnRetry != nil {
				c.OnRetry()
			}
			backoff := time.Duration(1<<attempt) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("feed: build request: %w", err)
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.httpc.Do(req)
		if err != nil {
			lastErr = err
			c.log.Warn("feed request failed", "url", url, "attempt", attempt+1, "err", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("feed: http %d: %s", resp.StatusCode, truncate(body, 120))
			c.log.Warn("feed non-200 response", "url", url, "status", resp.StatusCode)
			continue
		}
		return body, nil
	}
	return nil, fmt.Errorf("feed: all %d attempts failed: %w", c.retries, lastErr)
}

// Klines fetches up to `limit` candles for the symbol and interval,
// ordered oldest→newest.
func (c *Client) Klines(ctx context.Context, symbol, interval string, limit int) ([]model.Candle, error) {
	url := fmt.Sprintf("%s/klines?symbol=%s&interval=%s&limit=%d", c.baseURL, symbol, interval, limit)
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	return parseKlines(body)
}

// premiumIndex is the subset of the premium index payload we read.
type premiumIndex struct {
	MarkPrice       string `json:"markPrice"`
	LastFundingRate string `json:"lastFundingRate"`
}

// MarkPrice fetches the current futures mark price for the symbol.
func (c *Client) MarkPrice(ctx context.Context, symbol string) (float64, error) {
	idx, err := c.premiumIndex(ctx, symbol)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(idx.MarkPrice, 64)
}

// FundingRate fetches the current funding rate, in percent.
func (c *Client) FundingRate(ctx context.Context, symbol string) (float64, error) {
	idx, err := c.premiumIndex(ctx, symbol)
	if err != nil {
		return 0, err
	}
	rate, err := strconv.ParseFloat(idx.LastFundingRate, 64)
	if err != nil {
		return 0, err
	}
	return rate * 100, nil
}

func (c *Client) premiumIndex(ctx context.Context, symbol string) (*premiumIndex, error) {
	url := fmt.Sprintf("%s/premiumIndex?symbol=%s", c.baseURL, symbol)
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	var idx premiumIndex
	if err := json.Unmarshal(body, &idx); err != nil {
		return nil, fmt.Errorf("feed: decode premium index: %w", err)
	}
	return &idx, nil
}

// parseKlines decodes the Binance kline array-of-arrays format:
// [openTime, open, high, low, close, volume, closeTime, ...].
func parseKlines(body []byte) ([]model.Candle, error) {
	var raw [][]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("feed: decode klines: %w", err)
	}

	candles := make([]model.Candle, 0, len(raw))
	for i, row := range raw {
		if len(row) < 7 {
			return nil, fmt.Errorf("feed: kline row %d has %d fields", i, len(row))
		}
		var openMs, closeMs int64
		if err := json.Unmarshal(row[0], &openMs); err != nil {
			return nil, fmt.Errorf("feed: kline row %d open_time: %w", i, err)
		}
		if err := json.Unmarshal(row[6], &closeMs); err != nil {
			return nil, fmt.Errorf("feed: kline row %d close_time: %w", i, err)
		}

		c := model.Candle{
			OpenTime:  time.UnixMilli(openMs).UTC(),
			CloseTime: time.UnixMilli(closeMs).UTC(),
		}
		for j, dst := range []*float64{&c.Open, &c.High, &c.Low, &c.Close, &c.Volume} {
			var s string
			if err := json.Unmarshal(row[j+1], &s); err != nil {
				return nil, fmt.Errorf("feed: kline row %d field %d: %w", i, j+1, err)
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("feed: kline row %d field %d: %w", i, j+1, err)
			}
			*dst = v
		}
		candles = append(candles, c)
	}
	return candles, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
