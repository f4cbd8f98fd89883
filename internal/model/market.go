package model

import "time"

// Candle represents a single OHLCV candlestick bar. Bars are ordered by
// OpenTime ascending within a fetched window; the last bar of any window
// is still forming and must not be treated as completed.
type Candle struct {
	OpenTime time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
}

// TickerStats holds the per-instrument snapshot fields the ranker needs.
// HasQuoteVolume distinguishes "volume is zero" from "provider did not
// report a volume"; instruments without one are excluded from ranking.
type TickerStats struct {
	QuoteCurrency  string
	QuoteVolume    float64
	HasQuoteVolume bool
}
