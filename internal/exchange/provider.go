package exchange

import (
	"time"

	"StreakRadar/internal/model"
)

// Provider defines the market-data capability the scanner consumes:
// a ticker snapshot with 24h quote volumes, candle windows, and the
// translation of timeframe labels to durations.
type Provider interface {
	ListTickers() (map[string]model.TickerStats, error)
	ListCandles(symbol, timeframe string, limit int) ([]model.Candle, error)
	TimeframeDuration(timeframe string) (time.Duration, bool)
	Name() string
}

// MockProvider returns controllable fixed data for development and testing.
type MockProvider struct {
	Tickers    map[string]model.TickerStats
	Candles    map[string][]model.Candle // keyed by symbol + "|" + timeframe
	TickersErr error
	CandlesErr error

	TickerCalls int
	CandleCalls int
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) ListTickers() (map[string]model.TickerStats, error) {
	m.TickerCalls++
	if m.TickersErr != nil {
		return nil, m.TickersErr
	}
	return m.Tickers, nil
}

func (m *MockProvider) ListCandles(symbol, timeframe string, _ int) ([]model.Candle, error) {
	m.CandleCalls++
	if m.CandlesErr != nil {
		return nil, m.CandlesErr
	}
	return m.Candles[symbol+"|"+timeframe], nil
}

func (m *MockProvider) TimeframeDuration(timeframe string) (time.Duration, bool) {
	d, ok := timeframeDurations[timeframe]
	return d, ok
}
