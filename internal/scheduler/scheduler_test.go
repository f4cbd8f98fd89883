package scheduler

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"StreakRadar/internal/exchange"
	"StreakRadar/internal/model"
	"StreakRadar/internal/recorder"
	"StreakRadar/internal/scanner"
	"StreakRadar/internal/store"
)

type nullEnricher struct{}

func (nullEnricher) EnsureLoaded([]string, func(string)) {}

type captureRecorder struct {
	records []*recorder.ScanRecord
}

func (c *captureRecorder) RecordScan(r *recorder.ScanRecord) error {
	c.records = append(c.records, r)
	return nil
}

func (c *captureRecorder) Close() error { return nil }

func greenRun(count int) []model.Candle {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]model.Candle, count+1)
	for i := range candles {
		candles[i] = model.Candle{OpenTime: base.Add(time.Duration(i) * time.Hour), Open: 10, Close: 11}
	}
	return candles
}

func newTestScheduler(t *testing.T, provider exchange.Provider, rec recorder.Recorder) *Scheduler {
	t.Helper()
	scn := scanner.New(provider, nullEnricher{}, "USDT", 0)
	return New(scn, provider, rec, t.TempDir(), []string{"1h"}, 10, 3)
}

func TestCommitReplacesWholeEntries(t *testing.T) {
	provider := &exchange.MockProvider{}
	s := newTestScheduler(t, provider, recorder.NewNoopRecorder())

	s.commit(map[string][]model.StreakResult{
		"1h": {{Symbol: "BTC/USDT:USDT", Timeframe: "1h", Count: 5, Color: model.ColorGreen}},
		"4h": {{Symbol: "ETH/USDT:USDT", Timeframe: "4h", Count: 3, Color: model.ColorRed}},
	})
	s.commit(map[string][]model.StreakResult{
		"1h": {}, // a later scan touched only 1h
	})

	entries := s.Entries()
	require.Empty(t, entries["1h"].Results, "1h replaced whole")
	require.Len(t, entries["4h"].Results, 1, "untouched timeframe keeps its committed scan")

	// The snapshot on disk matches the in-memory store.
	persisted := map[string]model.TimeframeEntry{}
	require.NoError(t, store.Load(s.entriesPath, &persisted))
	require.Len(t, persisted, 2)
	require.Len(t, persisted["4h"].Results, 1)
}

func TestFinishCommitsScannedTimeframes(t *testing.T) {
	provider := &exchange.MockProvider{
		Tickers: map[string]model.TickerStats{
			"BTC/USDT:USDT": {QuoteCurrency: "USDT", QuoteVolume: 2, HasQuoteVolume: true},
			"ETH/USDT:USDT": {QuoteCurrency: "USDT", QuoteVolume: 1, HasQuoteVolume: true},
		},
		Candles: map[string][]model.Candle{
			"BTC/USDT:USDT|1h": greenRun(4),
			"ETH/USDT:USDT|1h": greenRun(4),
		},
	}
	rec := &captureRecorder{}
	s := newTestScheduler(t, provider, rec)

	async := s.Scanner.ScanAsync(model.ScanRequest{Timeframes: []string{"1h"}, TopNVolume: 10, MinStreak: 3})
	s.consume(async)

	entries := s.Entries()
	require.Contains(t, entries, "1h")
	require.Len(t, entries["1h"].Results, 2)
	require.False(t, entries["1h"].RefreshedAt.IsZero())

	// The history row counts every symbol/timeframe pair scanned,
	// independent of the advisory progress stream.
	require.Len(t, rec.records, 1)
	require.Equal(t, 2, rec.records[0].Units)
}

func TestFinishSkipsAbortedScan(t *testing.T) {
	provider := &exchange.MockProvider{Tickers: map[string]model.TickerStats{}}
	s := newTestScheduler(t, provider, recorder.NewNoopRecorder())

	async := s.Scanner.ScanAsync(model.ScanRequest{Timeframes: []string{"1h"}, TopNVolume: 10, MinStreak: 3})
	s.consume(async)

	require.Empty(t, s.Entries(), "empty universe must not mark timeframes fresh")
}

func TestEntriesSurviveRestart(t *testing.T) {
	provider := &exchange.MockProvider{}
	scn := scanner.New(provider, nullEnricher{}, "USDT", 0)
	dir := t.TempDir()

	s1 := New(scn, provider, recorder.NewNoopRecorder(), dir, []string{"1h"}, 10, 3)
	s1.commit(map[string][]model.StreakResult{
		"1h": {{Symbol: "BTC/USDT:USDT", Timeframe: "1h", Count: 7, Color: model.ColorGreen}},
	})

	s2 := New(scn, provider, recorder.NewNoopRecorder(), dir, []string{"1h"}, 10, 3)
	entries := s2.Entries()
	require.Len(t, entries["1h"].Results, 1)
	require.Equal(t, uint(7), entries["1h"].Results[0].Count)
}

func TestNewToleratesCorruptSnapshot(t *testing.T) {
	provider := &exchange.MockProvider{}
	scn := scanner.New(provider, nullEnricher{}, "USDT", 0)
	dir := t.TempDir()
	path := filepath.Join(dir, "scan_results.msgpack")
	require.NoError(t, os.WriteFile(path, []byte("not msgpack at all"), 0o644))

	s := New(scn, provider, recorder.NewNoopRecorder(), dir, []string{"1h"}, 10, 3)
	require.Empty(t, s.Entries(), "corrupt snapshot must yield an empty store")

	// The store stays usable and the next commit overwrites the bad file.
	s.commit(map[string][]model.StreakResult{
		"1h": {{Symbol: "BTC/USDT:USDT", Timeframe: "1h", Count: 4, Color: model.ColorGreen}},
	})
	persisted := map[string]model.TimeframeEntry{}
	require.NoError(t, store.Load(path, &persisted))
	require.Len(t, persisted["1h"].Results, 1)
}
