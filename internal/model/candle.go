package model

import "time"

// Candle represents one OHLCV bar from the futures kline feed.
// Sequences are ordered oldest→newest with strictly increasing OpenTime;
// a candle is immutable once produced by the data adapter.
type Candle struct {
	OpenTime  time.Time `json:"open_time"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
	CloseTime time.Time `json:"close_time"`
}

// Closes extracts the close series from a candle sequence.
func Closes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

// LastClose returns the close of the most recent candle, or 0 for an
// empty sequence.
func LastClose(candles []Candle) float64 {
	if len(candles) == 0 {
		return 0
	}
	return candles[len(candles)-1].Close
}
