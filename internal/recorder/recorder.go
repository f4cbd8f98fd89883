package recorder

import (
	"time"

	"StreakRadar/internal/model"
)

// ScanRecord holds everything worth keeping about one committed scan.
type ScanRecord struct {
	Timeframes []string
	Units      int
	Duration   time.Duration
	Results    map[string][]model.StreakResult
}

// Recorder persists scan history for later analysis.
type Recorder interface {
	RecordScan(rec *ScanRecord) error
	Close() error
}
