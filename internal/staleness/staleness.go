// Package staleness decides which timeframes a scan should refresh. It
// is pure with respect to its inputs: the caller owns the entry store
// and persists RefreshedAt after a committed scan.
package staleness

import (
	"time"

	"StreakRadar/internal/model"
)

// DurationOf translates a timeframe label to its candle duration.
type DurationOf func(timeframe string) (time.Duration, bool)

// Due returns the tracked timeframes that need a rescan at now. A
// timeframe is due when it has no committed entry yet, when its entry is
// at least one candle duration old, or when now sits on the timeframe's
// sync boundary. The three sets are unioned; boundary membership is
// additive, not a replacement for the age check.
func Due(entries map[string]model.TimeframeEntry, now time.Time, tracked []string, durationOf DurationOf) []string {
	due := make(map[string]bool)

	for _, tf := range tracked {
		if _, ok := entries[tf]; !ok {
			due[tf] = true
		}
	}
	for tf, entry := range entries {
		d, ok := durationOf(tf)
		if !ok {
			continue
		}
		if now.Sub(entry.RefreshedAt) >= d {
			due[tf] = true
		}
	}
	for _, tf := range SyncBoundaries(now) {
		due[tf] = true
	}

	out := make([]string, 0, len(due))
	for _, tf := range tracked {
		if due[tf] {
			out = append(out, tf)
		}
	}
	return out
}

// SyncBoundaries returns the timeframes whose candle just closed at now.
// Boundaries sit one minute past the natural close so the provider has
// settled the new candle before we read it.
func SyncBoundaries(now time.Time) []string {
	var tfs []string
	minute := now.Minute()
	if minute%15 == 1 {
		tfs = append(tfs, "15m")
	}
	if minute%30 == 1 {
		tfs = append(tfs, "30m")
	}
	if minute == 1 {
		tfs = append(tfs, "1h", "2h", "4h", "8h", "1d", "1w")
	}
	return tfs
}
