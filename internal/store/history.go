// Package store persists BaNTER validation runs in SQLite so sweeps can be
// compared over time.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"valska/internal/evidence"
	"valska/internal/logging"
)

// History records validation sweeps and their per-case outcomes.
type History struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// Run is one recorded sweep.
type Run struct {
	ID         string
	CreatedAt  time.Time
	ChainsRoot string
	Total      int
	Pass       int
	Fail       int
	Error      int
}

// Case is one recorded null-test outcome.
type Case struct {
	RunID          string
	Perturbation   string
	LogBF          sql.NullFloat64
	LogZFgEoR      sql.NullFloat64
	LogZFgOnly     sql.NullFloat64
	Verdict        string
	Interpretation string
	Error          string
}

// NewHistory opens (creating if needed) the history database at the given path.
func NewHistory(path string) (*History, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	h := &History{db: db, dbPath: path}
	if err := h.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logging.Store("Opened history database %s", path)
	return h, nil
}

// initialize creates the required tables.
func (h *History) initialize() error {
	runsTable := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		chains_root TEXT NOT NULL,
		total INTEGER NOT NULL,
		pass INTEGER NOT NULL,
		fail INTEGER NOT NULL,
		error INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
	`

	resultsTable := `
	CREATE TABLE IF NOT EXISTS results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		perturbation TEXT NOT NULL,
		log_bf REAL,
		log_z_fgeor REAL,
		log_z_fgonly REAL,
		verdict TEXT NOT NULL,
		interpretation TEXT,
		error TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_results_run_id ON results(run_id);
	`

	for _, ddl := range []string{runsTable, resultsTable} {
		if _, err := h.db.Exec(ddl); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}

// Close closes the database.
func (h *History) Close() error {
	return h.db.Close()
}

// RecordSweep stores a sweep and returns its run ID.
func (h *History) RecordSweep(chainsRoot string, summary *evidence.Summary) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	runID := uuid.NewString()

	tx, err := h.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (id, chains_root, total, pass, fail, error) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, chainsRoot, summary.Total(), summary.Pass, summary.Fail, summary.Error,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	for _, c := range summary.Cases {
		var (
			logBF, z1, z2  sql.NullFloat64
			interpretation string
			caseErr        string
		)
		if c.Bayes != nil {
			logBF = sql.NullFloat64{Float64: c.Bayes.LogBF, Valid: true}
			z1 = sql.NullFloat64{Float64: c.Bayes.Evidence1.LogZ, Valid: true}
			z2 = sql.NullFloat64{Float64: c.Bayes.Evidence2.LogZ, Valid: true}
			interpretation = c.Bayes.Interpretation
		}
		if c.Err != nil {
			caseErr = c.Err.Error()
		}

		_, err = tx.Exec(
			`INSERT INTO results (run_id, perturbation, log_bf, log_z_fgeor, log_z_fgonly, verdict, interpretation, error)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, c.Level.Raw, logBF, z1, z2, string(c.Verdict), interpretation, caseErr,
		)
		if err != nil {
			return "", fmt.Errorf("failed to insert result for %s: %w", c.Level.Raw, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit sweep: %w", err)
	}

	logging.Store("Recorded sweep %s (%d cases)", runID, summary.Total())
	return runID, nil
}

// RecentRuns returns up to limit runs, newest first.
func (h *History) RecentRuns(limit int) ([]Run, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if limit < 1 {
		limit = 10
	}

	rows, err := h.db.Query(
		`SELECT id, created_at, chains_root, total, pass, fail, error
		 FROM runs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.ChainsRoot, &r.Total, &r.Pass, &r.Fail, &r.Error); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunCases returns the recorded cases of one run, in insertion order.
func (h *History) RunCases(runID string) ([]Case, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	rows, err := h.db.Query(
		`SELECT run_id, perturbation, log_bf, log_z_fgeor, log_z_fgonly, verdict, interpretation, error
		 FROM results WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var cases []Case
	for rows.Next() {
		var c Case
		if err := rows.Scan(&c.RunID, &c.Perturbation, &c.LogBF, &c.LogZFgEoR,
			&c.LogZFgOnly, &c.Verdict, &c.Interpretation, &c.Error); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		cases = append(cases, c)
	}
	return cases, rows.Err()
}
