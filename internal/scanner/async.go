package scanner

import (
	"time"

	"StreakRadar/internal/model"
)

// Progress is one progress update: current out of total scan units.
type Progress struct {
	Current int
	Total   int
}

// Result carries the outcome of an async scan. Units is the number of
// symbol×timeframe pairs the scan worked through, counted from the
// scan itself rather than the advisory progress stream.
type Result struct {
	Buckets  map[string][]model.StreakResult
	Units    int
	Err      error
	Duration time.Duration
}

// AsyncScan exposes a running scan's notifications. All three channels
// are closed once Done has delivered the result.
type AsyncScan struct {
	Progress <-chan Progress
	Logs     <-chan string
	Done     <-chan Result
}

// ScanAsync runs Scan on its own goroutine and reports progress, log
// lines, and completion over channels, so timer ticks and manual
// triggers never block on network calls. A scan already in flight is
// reported immediately through Done as ErrScanInProgress.
func (s *Scanner) ScanAsync(req model.ScanRequest) *AsyncScan {
	progress := make(chan Progress, 256)
	logs := make(chan string, 256)
	done := make(chan Result, 1)

	go func() {
		defer close(progress)
		defer close(logs)
		defer close(done)

		start := time.Now()
		var units int
		buckets, err := s.Scan(req,
			func(current, total int) {
				units = total
				// A slow consumer drops updates rather than stalling
				// the scan; progress is advisory.
				select {
				case progress <- Progress{Current: current, Total: total}:
				default:
				}
			},
			func(msg string) {
				select {
				case logs <- msg:
				default:
				}
			},
		)
		done <- Result{Buckets: buckets, Units: units, Err: err, Duration: time.Since(start)}
	}()

	return &AsyncScan{Progress: progress, Logs: logs, Done: done}
}
