package staleness

import (
	"testing"
	"time"

	"StreakRadar/internal/model"
)

var testDurations = map[string]time.Duration{
	"15m": 15 * time.Minute,
	"30m": 30 * time.Minute,
	"1h":  time.Hour,
	"4h":  4 * time.Hour,
}

func durationOf(tf string) (time.Duration, bool) {
	d, ok := testDurations[tf]
	return d, ok
}

func contains(tfs []string, want string) bool {
	for _, tf := range tfs {
		if tf == want {
			return true
		}
	}
	return false
}

// 12:37 is not a sync boundary for any tracked timeframe.
var quietNow = time.Date(2025, 6, 1, 12, 37, 0, 0, time.UTC)

func TestDue_MissingEntry(t *testing.T) {
	got := Due(nil, quietNow, []string{"15m", "1h"}, durationOf)
	if !contains(got, "15m") || !contains(got, "1h") {
		t.Errorf("expected all untracked-entry timeframes due, got %v", got)
	}
}

func TestDue_AgeBoundary(t *testing.T) {
	entries := map[string]model.TimeframeEntry{
		"1h": {Timeframe: "1h", RefreshedAt: quietNow.Add(-61 * time.Minute)},
		"4h": {Timeframe: "4h", RefreshedAt: quietNow.Add(-10 * time.Minute)},
	}
	got := Due(entries, quietNow, []string{"1h", "4h"}, durationOf)
	if !contains(got, "1h") {
		t.Errorf("61-minute-old 1h entry should be due, got %v", got)
	}
	if contains(got, "4h") {
		t.Errorf("10-minute-old 4h entry should not be due, got %v", got)
	}
}

func TestDue_ExactAgeIsDue(t *testing.T) {
	entries := map[string]model.TimeframeEntry{
		"1h": {Timeframe: "1h", RefreshedAt: quietNow.Add(-time.Hour)},
	}
	got := Due(entries, quietNow, []string{"1h"}, durationOf)
	if !contains(got, "1h") {
		t.Errorf("entry aged exactly one duration should be due, got %v", got)
	}
}

func TestDue_SyncBoundaryOverridesFreshness(t *testing.T) {
	// 13:01 is the hourly boundary; a 1h entry refreshed a minute ago is
	// still rescanned because its candle just closed.
	boundary := time.Date(2025, 6, 1, 13, 1, 0, 0, time.UTC)
	entries := map[string]model.TimeframeEntry{
		"1h": {Timeframe: "1h", RefreshedAt: boundary.Add(-time.Minute)},
	}
	got := Due(entries, boundary, []string{"1h"}, durationOf)
	if !contains(got, "1h") {
		t.Errorf("sync boundary should force 1h due, got %v", got)
	}
}

func TestDue_IgnoresUntrackedTimeframes(t *testing.T) {
	got := Due(nil, quietNow, []string{"15m"}, durationOf)
	if len(got) != 1 || got[0] != "15m" {
		t.Errorf("expected only tracked timeframes, got %v", got)
	}
}

func TestSyncBoundaries(t *testing.T) {
	tests := []struct {
		minute int
		want   []string
	}{
		{1, []string{"15m", "30m", "1h", "2h", "4h", "8h", "1d", "1w"}},
		{16, []string{"15m"}},
		{31, []string{"15m", "30m"}},
		{46, []string{"15m"}},
		{0, nil},
		{37, nil},
	}
	for _, tt := range tests {
		now := time.Date(2025, 6, 1, 9, tt.minute, 0, 0, time.UTC)
		got := SyncBoundaries(now)
		if len(got) != len(tt.want) {
			t.Errorf("minute %d: expected %v, got %v", tt.minute, tt.want, got)
			continue
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("minute %d: expected %v, got %v", tt.minute, tt.want, got)
				break
			}
		}
	}
}
