package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists scan history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so readers inspecting history don't block a running scan.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scans (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp    INTEGER NOT NULL,
			timeframes   TEXT,
			units        INTEGER,
			duration_ms  INTEGER,
			result_count INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scans_ts ON scans(timestamp)`,

		`CREATE TABLE IF NOT EXISTS streaks (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			scan_id    INTEGER NOT NULL,
			timestamp  INTEGER NOT NULL,
			timeframe  TEXT,
			symbol     TEXT,
			count      INTEGER,
			color      TEXT,
			last_close REAL,
			FOREIGN KEY (scan_id) REFERENCES scans(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_streaks_scan ON streaks(scan_id)`,
		`CREATE INDEX IF NOT EXISTS idx_streaks_tf ON streaks(timeframe, timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordScan inserts one scans row plus one streaks row per result.
func (r *SQLiteRecorder) RecordScan(rec *ScanRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().Unix()
	resultCount := 0
	for _, results := range rec.Results {
		resultCount += len(results)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO scans (timestamp, timeframes, units, duration_ms, result_count)
		VALUES (?,?,?,?,?)`,
		now, strings.Join(rec.Timeframes, ","), rec.Units, rec.Duration.Milliseconds(), resultCount,
	)
	if err != nil {
		return fmt.Errorf("insert scan: %w", err)
	}
	scanID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("scan id: %w", err)
	}

	for tf, results := range rec.Results {
		for _, sr := range results {
			if _, err := tx.Exec(`INSERT INTO streaks
				(scan_id, timestamp, timeframe, symbol, count, color, last_close)
				VALUES (?,?,?,?,?,?,?)`,
				scanID, now, tf, sr.Symbol, sr.Count, string(sr.Color), sr.LastClose,
			); err != nil {
				return fmt.Errorf("insert streak: %w", err)
			}
		}
	}

	return tx.Commit()
}

// Close closes the underlying database.
func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
