// Package scanner composes the ranker, the asset cache, and the streak
// detector into a single-flight scan over (symbol, timeframe) pairs.
package scanner

import (
	"errors"
	"fmt"
	"sync/atomic"

	"StreakRadar/internal/exchange"
	"StreakRadar/internal/model"
	"StreakRadar/internal/streak"
)

// ErrScanInProgress is returned when a scan is requested while another
// is still running. It is an expected race with the scheduler, not an
// error condition worth logging.
var ErrScanInProgress = errors.New("scan already in progress")

const defaultCandleWindow = 50

// AssetEnricher is the slice of the asset cache the scanner needs.
type AssetEnricher interface {
	EnsureLoaded(symbols []string, onLog func(string))
}

// Scanner runs volume-ranked streak scans. At most one scan is in
// flight at a time; concurrent starts are rejected, never queued.
type Scanner struct {
	provider      exchange.Provider
	assets        AssetEnricher
	quoteCurrency string
	candleWindow  int

	running atomic.Bool
}

// New creates a Scanner. candleWindow is the number of candles fetched
// per (symbol, timeframe) unit; zero picks a default large enough to
// measure streaks well past any sensible minimum.
func New(provider exchange.Provider, assets AssetEnricher, quoteCurrency string, candleWindow int) *Scanner {
	if candleWindow <= 0 {
		candleWindow = defaultCandleWindow
	}
	return &Scanner{
		provider:      provider,
		assets:        assets,
		quoteCurrency: quoteCurrency,
		candleWindow:  candleWindow,
	}
}

// Running reports whether a scan is currently in flight.
func (s *Scanner) Running() bool { return s.running.Load() }

// Scan ranks the symbol universe, backfills asset metadata, and detects
// streaks for every (symbol, timeframe) pair, grouping results that
// meet the minimum streak length by timeframe. The caller owns
// committing the returned buckets into the timeframe store.
//
// An empty symbol universe is a normal outcome: the scan logs, returns
// an empty map, and leaves every cache untouched. A failed candle fetch
// for one unit degrades to "no streak" without aborting the scan.
func (s *Scanner) Scan(req model.ScanRequest, onProgress func(current, total int), onLog func(string)) (map[string][]model.StreakResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrScanInProgress
	}
	defer s.running.Store(false)

	if onProgress == nil {
		onProgress = func(int, int) {}
	}
	if onLog == nil {
		onLog = func(string) {}
	}

	symbols := s.rankUniverse(req, onLog)
	if len(symbols) == 0 {
		onLog("scan: no symbols to scan, nothing to do")
		return map[string][]model.StreakResult{}, nil
	}
	onLog(fmt.Sprintf("scan: %d symbols across %d timeframes", len(symbols), len(req.Timeframes)))

	s.assets.EnsureLoaded(symbols, onLog)

	window := s.candleWindow
	if minimum := int(req.MinStreak) + 2; window < minimum {
		window = minimum
	}

	// Every requested timeframe gets a bucket up front: a scanned
	// timeframe with zero qualifying streaks is still a committed scan,
	// unlike an aborted one, which returns no buckets at all.
	buckets := make(map[string][]model.StreakResult, len(req.Timeframes))
	for _, tf := range req.Timeframes {
		buckets[tf] = []model.StreakResult{}
	}
	total := len(symbols) * len(req.Timeframes)
	current := 0

	// Outer loop by symbol keeps provider calls for one symbol
	// temporally close together.
	for _, symbol := range symbols {
		for _, tf := range req.Timeframes {
			current++

			candles, err := s.provider.ListCandles(symbol, tf, window)
			if err != nil {
				onLog(fmt.Sprintf("scan: candles %s %s: %v", symbol, tf, err))
				candles = nil
			}
			res := streak.Detect(symbol, tf, candles)
			if res.Count >= req.MinStreak && res.Count > 0 {
				buckets[tf] = append(buckets[tf], res)
			}
			onProgress(current, total)
		}
	}

	onLog(fmt.Sprintf("scan: finished %d units", total))
	return buckets, nil
}

// rankUniverse fetches the ticker snapshot and ranks it. Provider
// failures here are structural: they empty the universe and the caller
// treats that as a no-op scan.
func (s *Scanner) rankUniverse(req model.ScanRequest, onLog func(string)) []string {
	tickers, err := s.provider.ListTickers()
	if err != nil {
		onLog(fmt.Sprintf("scan: ticker snapshot failed: %v", err))
		return nil
	}
	return streak.RankByVolume(tickers, s.quoteCurrency, int(req.TopNVolume))
}
