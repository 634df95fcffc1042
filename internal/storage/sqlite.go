// Package storage persists completed search runs to SQLite so results survive
// server restarts and can be listed later.
package storage

import (
	"database/sql"
	"encoding/json"
	"time"

	_ "modernc.org/sqlite"

	"github.com/copyleftdev/SCREE/internal/errors"
	"github.com/copyleftdev/SCREE/internal/optimization"
)

// RunRecord is one completed (or failed) search run as stored.
type RunRecord struct {
	ID          string             `json:"id"`
	Algorithm   string             `json:"algorithm"`
	Problem     string             `json:"problem"`
	Seed        int64              `json:"seed"`
	Status      string             `json:"status"`
	BestFitness float64            `json:"best_fitness"`
	BestState   optimization.State `json:"best_state"`
	Error       string             `json:"error,omitempty"`
	Duration    time.Duration      `json:"duration"`
	CreatedAt   time.Time          `json:"created_at"`
}

// SQLiteStore is a run archive backed by a single SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the database at dsn and creates the schema if needed.
func NewSQLiteStore(dsn string, maxConns int) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "opening run database").WithComponent("storage")
	}
	db.SetMaxOpenConns(maxConns)

	s := &SQLiteStore{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) init() error {
	const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	algorithm     TEXT NOT NULL,
	problem       TEXT NOT NULL,
	seed          INTEGER NOT NULL,
	status        TEXT NOT NULL,
	best_fitness  REAL NOT NULL,
	best_state    TEXT NOT NULL,
	error         TEXT NOT NULL DEFAULT '',
	duration_ms   INTEGER NOT NULL,
	created_at    TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);`

	if _, err := s.db.Exec(schema); err != nil {
		return errors.Wrap(err, "creating run schema").WithComponent("storage")
	}
	return nil
}

// SaveRun inserts or replaces a run record.
func (s *SQLiteStore) SaveRun(rec *RunRecord) error {
	state, err := json.Marshal(rec.BestState)
	if err != nil {
		return errors.Wrap(err, "encoding best state").WithOperation("SaveRun").WithComponent("storage")
	}

	_, err = s.db.Exec(`
INSERT OR REPLACE INTO runs
	(id, algorithm, problem, seed, status, best_fitness, best_state, error, duration_ms, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Algorithm, rec.Problem, rec.Seed, rec.Status,
		rec.BestFitness, string(state), rec.Error,
		rec.Duration.Milliseconds(), rec.CreatedAt.UTC())
	if err != nil {
		return errors.Wrap(err, "inserting run").WithOperation("SaveRun").WithComponent("storage")
	}
	return nil
}

// ErrRunNotFound is returned when a run ID is absent from the archive.
var ErrRunNotFound = errors.New("run not found")

// GetRun loads one run by ID.
func (s *SQLiteStore) GetRun(id string) (*RunRecord, error) {
	row := s.db.QueryRow(`
SELECT id, algorithm, problem, seed, status, best_fitness, best_state, error, duration_ms, created_at
FROM runs WHERE id = ?`, id)

	rec, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "loading run").WithOperation("GetRun").WithComponent("storage")
	}
	return rec, nil
}

// ListRuns returns up to limit runs, newest first.
func (s *SQLiteStore) ListRuns(limit int) ([]*RunRecord, error) {
	rows, err := s.db.Query(`
SELECT id, algorithm, problem, seed, status, best_fitness, best_state, error, duration_ms, created_at
FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "listing runs").WithOperation("ListRuns").WithComponent("storage")
	}
	defer rows.Close()

	var records []*RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning run").WithOperation("ListRuns").WithComponent("storage")
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (*RunRecord, error) {
	var (
		rec        RunRecord
		state      string
		durationMS int64
	)
	if err := row.Scan(&rec.ID, &rec.Algorithm, &rec.Problem, &rec.Seed, &rec.Status,
		&rec.BestFitness, &state, &rec.Error, &durationMS, &rec.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(state), &rec.BestState); err != nil {
		return nil, err
	}
	rec.Duration = time.Duration(durationMS) * time.Millisecond
	return &rec, nil
}
