// Package journal persists run history in SQLite: one row per run and one
// row per placed video. The journal is observational; failures to record are
// logged by callers and never interrupt organizing.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store manages journal persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    log_file TEXT NOT NULL,
    started_at TEXT NOT NULL,
    finished_at TEXT,
    entries INTEGER NOT NULL DEFAULT 0,
    placed INTEGER NOT NULL DEFAULT 0,
    skipped INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS placements (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL REFERENCES runs(id),
    session TEXT NOT NULL,
    batch INTEGER NOT NULL,
    label TEXT NOT NULL,
    camera TEXT NOT NULL,
    source TEXT NOT NULL,
    dest TEXT NOT NULL,
    delta_seconds REAL NOT NULL,
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_placements_run ON placements(run_id);
`

// Open initializes or connects to the journal database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply journal schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

// BeginRun inserts a run row and returns its identifier.
func (s *Store) BeginRun(ctx context.Context, logFile string) (string, error) {
	id := uuid.NewString()
	started := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(
		ctx,
		`INSERT INTO runs (id, log_file, started_at) VALUES (?, ?, ?)`,
		id, logFile, started,
	); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// FinishRun stamps the run's completion and totals.
func (s *Store) FinishRun(ctx context.Context, runID string, entries, placed, skipped int) error {
	finished := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(
		ctx,
		`UPDATE runs SET finished_at = ?, entries = ?, placed = ?, skipped = ? WHERE id = ?`,
		finished, entries, placed, skipped, runID,
	); err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// Placement records one video copied into the destination tree.
type Placement struct {
	RunID        string
	Session      string
	Batch        int
	Label        string
	Camera       string
	Source       string
	Dest         string
	DeltaSeconds float64
	CreatedAt    time.Time
}

// RecordPlacement appends a placement row.
func (s *Store) RecordPlacement(ctx context.Context, p Placement) error {
	created := p.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	if _, err := s.db.ExecContext(
		ctx,
		`INSERT INTO placements (run_id, session, batch, label, camera, source, dest, delta_seconds, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.RunID, p.Session, p.Batch, p.Label, p.Camera, p.Source, p.Dest, p.DeltaSeconds,
		created.UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("insert placement: %w", err)
	}
	return nil
}

// RecentPlacements returns the newest placements, capped at limit.
func (s *Store) RecentPlacements(ctx context.Context, limit int) ([]Placement, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT run_id, session, batch, label, camera, source, dest, delta_seconds, created_at
         FROM placements ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query placements: %w", err)
	}
	defer rows.Close()

	var placements []Placement
	for rows.Next() {
		var p Placement
		var created string
		if err := rows.Scan(&p.RunID, &p.Session, &p.Batch, &p.Label, &p.Camera, &p.Source, &p.Dest, &p.DeltaSeconds, &created); err != nil {
			return nil, fmt.Errorf("scan placement: %w", err)
		}
		if parsed, parseErr := time.Parse(time.RFC3339Nano, created); parseErr == nil {
			p.CreatedAt = parsed
		}
		placements = append(placements, p)
	}
	return placements, rows.Err()
}
