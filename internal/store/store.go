// Package store persists run history in SQLite. The output artifacts are
// deliberately timestamp-free so repeated runs stay byte-identical; anything
// time- or provenance-related (when a run happened, which rule set produced
// it) lives here instead.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"regscan/internal/classify"
)

// Store manages the run-history database.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
}

// RunRecord is the stored metadata for one classification run.
type RunRecord struct {
	ID        string
	StartedAt time.Time
	InputPath string
	RulesHash string
	Total     int
	Included  int
	Excluded  int
	Duration  time.Duration
}

// New creates or opens the run-history store at dbPath.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, dbPath: dbPath}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at DATETIME NOT NULL,
		input_path TEXT NOT NULL,
		rules_hash TEXT NOT NULL,
		total INTEGER NOT NULL,
		included INTEGER NOT NULL,
		excluded INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	CREATE TABLE IF NOT EXISTS decisions (
		run_id TEXT NOT NULL REFERENCES runs(id),
		code TEXT NOT NULL,
		description TEXT NOT NULL,
		included INTEGER NOT NULL,
		tier TEXT NOT NULL,
		pattern TEXT,
		reason TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_decisions_run ON decisions(run_id);
	CREATE INDEX IF NOT EXISTS idx_decisions_tier ON decisions(tier);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveRun stores a run and all of its decisions in one transaction.
func (s *Store) SaveRun(run RunRecord, outcomes []classify.Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (id, started_at, input_path, rules_hash, total, included, excluded, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UTC(), run.InputPath, run.RulesHash,
		run.Total, run.Included, run.Excluded, run.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO decisions (run_id, code, description, included, tier, pattern, reason)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare decision insert: %w", err)
	}
	defer stmt.Close()

	for _, o := range outcomes {
		included := 0
		if o.Decision.Included {
			included = 1
		}
		if _, err := stmt.Exec(
			run.ID, o.Record.Code, o.Record.Description,
			included, string(o.Decision.Tier), o.Decision.Pattern, o.Decision.Reason,
		); err != nil {
			return fmt.Errorf("failed to insert decision: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, started_at, input_path, rules_hash, total, included, excluded, duration_ms
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		var durationMS int64
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.InputPath, &r.RulesHash,
			&r.Total, &r.Included, &r.Excluded, &durationMS); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns one run's metadata, or sql.ErrNoRows if unknown.
func (s *Store) GetRun(id string) (RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var r RunRecord
	var durationMS int64
	err := s.db.QueryRow(
		`SELECT id, started_at, input_path, rules_hash, total, included, excluded, duration_ms
		 FROM runs WHERE id = ?`, id).
		Scan(&r.ID, &r.StartedAt, &r.InputPath, &r.RulesHash,
			&r.Total, &r.Included, &r.Excluded, &durationMS)
	if err != nil {
		return RunRecord{}, err
	}
	r.Duration = time.Duration(durationMS) * time.Millisecond
	return r, nil
}

// GetDecisions returns all decisions for a run in insertion order.
func (s *Store) GetDecisions(runID string) ([]classify.Outcome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT code, description, included, tier, pattern, reason
		 FROM decisions WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer rows.Close()

	var outcomes []classify.Outcome
	for rows.Next() {
		var o classify.Outcome
		var included int
		var tier string
		var pattern sql.NullString
		if err := rows.Scan(&o.Record.Code, &o.Record.Description,
			&included, &tier, &pattern, &o.Decision.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		o.Decision.Included = included == 1
		o.Decision.Tier = classify.Tier(tier)
		o.Decision.Pattern = pattern.String
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}
