// Package scheduler drives periodic scans. A cron job fires every
// minute, asks the staleness tracker which timeframes are due, and
// hands them to the scanner; committed results replace the per-
// timeframe cache entries whole and are persisted and recorded.
package scheduler

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"StreakRadar/internal/exchange"
	"StreakRadar/internal/model"
	"StreakRadar/internal/recorder"
	"StreakRadar/internal/scanner"
	"StreakRadar/internal/staleness"
	"StreakRadar/internal/store"
)

// Scheduler owns the committed timeframe-entry store and the scan loop.
type Scheduler struct {
	Cron     *cron.Cron
	Scanner  *scanner.Scanner
	Provider exchange.Provider
	Recorder recorder.Recorder

	mu          sync.Mutex
	entries     map[string]model.TimeframeEntry
	entriesPath string

	tracked    []string
	topNVolume uint
	minStreak  uint
}

// New creates a Scheduler, loading the committed results snapshot from
// dataDir if one exists. An unreadable snapshot is not fatal: the
// store starts empty and every tracked timeframe scans as stale.
func New(scn *scanner.Scanner, provider exchange.Provider, rec recorder.Recorder, dataDir string, tracked []string, topNVolume, minStreak uint) *Scheduler {
	s := &Scheduler{
		Cron:        cron.New(cron.WithSeconds()),
		Scanner:     scn,
		Provider:    provider,
		Recorder:    rec,
		entries:     make(map[string]model.TimeframeEntry),
		entriesPath: filepath.Join(dataDir, "scan_results.msgpack"),
		tracked:     tracked,
		topNVolume:  topNVolume,
		minStreak:   minStreak,
	}
	if err := store.Load(s.entriesPath, &s.entries); err != nil {
		log.Printf("[WARN] scan results snapshot unreadable, starting empty: %v", err)
		s.entries = make(map[string]model.TimeframeEntry)
	}
	if len(s.entries) > 0 {
		log.Printf("[INFO] loaded cached results for %d timeframes", len(s.entries))
	}
	return s
}

// Register installs the minute tick.
func (s *Scheduler) Register() error {
	if _, err := s.Cron.AddFunc("0 * * * * *", s.tick); err != nil {
		return fmt.Errorf("register minute tick: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// Entries returns a copy of the committed per-timeframe results.
// Readers see each entry whole: entries are replaced, never patched.
func (s *Scheduler) Entries() map[string]model.TimeframeEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]model.TimeframeEntry, len(s.entries))
	for tf, e := range s.entries {
		out[tf] = e
	}
	return out
}

// RunNow triggers a scan outside the cron schedule (manual refresh).
// It shares the tick path, including the single-flight rejection.
func (s *Scheduler) RunNow() {
	s.tick()
}

func (s *Scheduler) tick() {
	now := time.Now()
	due := staleness.Due(s.Entries(), now, s.tracked, s.Provider.TimeframeDuration)
	if len(due) == 0 {
		log.Println("[INFO] cache up to date, nothing to refresh")
		return
	}
	log.Printf("[INFO] %d stale timeframes to scan: %v", len(due), due)

	async := s.Scanner.ScanAsync(model.ScanRequest{
		Timeframes: due,
		TopNVolume: s.topNVolume,
		MinStreak:  s.minStreak,
	})
	go s.consume(async)
}

// consume drains a running scan's notifications and commits the result.
func (s *Scheduler) consume(async *scanner.AsyncScan) {
	progressCh, logsCh := async.Progress, async.Logs
	for {
		select {
		case _, ok := <-progressCh:
			if !ok {
				progressCh = nil
				continue
			}
		case msg, ok := <-logsCh:
			if !ok {
				logsCh = nil
				continue
			}
			log.Printf("[INFO] %s", msg)
		case res, ok := <-async.Done:
			if !ok {
				return
			}
			s.finish(res)
			return
		}
	}
}

func (s *Scheduler) finish(res scanner.Result) {
	if errors.Is(res.Err, scanner.ErrScanInProgress) {
		// Expected race between the timer and a manual trigger.
		log.Println("[INFO] scan already in progress, skipping")
		return
	}
	if res.Err != nil {
		log.Printf("[ERROR] scan failed: %v", res.Err)
		return
	}
	if len(res.Buckets) == 0 {
		// Aborted scan (no universe): nothing was touched, commit nothing.
		return
	}
	s.commit(res.Buckets)
	log.Printf("[INFO] scan committed in %.2fs", res.Duration.Seconds())

	if err := s.Recorder.RecordScan(&recorder.ScanRecord{
		Timeframes: bucketKeys(res.Buckets),
		Units:      res.Units,
		Duration:   res.Duration,
		Results:    res.Buckets,
	}); err != nil {
		log.Printf("[ERROR] record scan: %v", err)
	}
}

// commit replaces the entry for every timeframe the scan touched and
// persists the store. Timeframes outside the scan keep their previous
// committed entries untouched.
func (s *Scheduler) commit(buckets map[string][]model.StreakResult) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for tf, results := range buckets {
		s.entries[tf] = model.TimeframeEntry{
			Timeframe:   tf,
			RefreshedAt: now,
			Results:     results,
		}
	}
	if err := store.Save(s.entriesPath, s.entries); err != nil {
		log.Printf("[ERROR] persist scan results: %v", err)
	}
}

func bucketKeys(buckets map[string][]model.StreakResult) []string {
	keys := make([]string, 0, len(buckets))
	for tf := range buckets {
		keys = append(keys, tf)
	}
	return keys
}
