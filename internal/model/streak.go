package model

import "time"

// StreakColor classifies a completed candle's direction.
type StreakColor string

const (
	ColorGreen StreakColor = "green"
	ColorRed   StreakColor = "red"
	// ColorNone means no completed candles were available (or the fetch
	// failed); it always pairs with Count == 0.
	ColorNone StreakColor = ""
)

// StreakResult is the detector's output for one (symbol, timeframe) pair.
// Count is the number of consecutive completed candles of the same color
// ending at the most recent completed candle. HasClose guards LastClose,
// which is captured independently of the streak length.
type StreakResult struct {
	Symbol    string      `msgpack:"symbol"`
	Timeframe string      `msgpack:"timeframe"`
	Count     uint        `msgpack:"count"`
	Color     StreakColor `msgpack:"color"`
	LastClose float64     `msgpack:"last_close"`
	HasClose  bool        `msgpack:"has_close"`
}

// TimeframeEntry is one committed scan for one timeframe. Entries are
// replaced whole, never field-patched, so concurrent readers see either
// the old or the new scan atomically.
type TimeframeEntry struct {
	Timeframe   string         `msgpack:"timeframe"`
	RefreshedAt time.Time      `msgpack:"refreshed_at"`
	Results     []StreakResult `msgpack:"results"`
}

// ScanRequest is the orchestrator's unit of work.
type ScanRequest struct {
	Timeframes []string
	TopNVolume uint
	MinStreak  uint
}
