// Package store implements an optional on-disk cache backed by sqlite:
// a parsed ASGraph (the JSON contract of spec.md section 6) so repeated
// runs over the same CAIDA snapshot skip re-ingest and re-setup, and a
// table of per-trial Outcome rows for the outer, out-of-scope experiment
// driver to aggregate later (spec.md section 1, "the outer experiment
// driver (trial fan-out, aggregation, plotting) ... [is] out of scope
// beyond [its] inputs"). Grounded on the teacher's SqliteReader
// (readers.go, ReadSqlite), adapted from a read-only annotation-table
// reader to a read/write cache with its own schema.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Emeline-1/bgpsim/internal/dataplane"
)

const schema = `
CREATE TABLE IF NOT EXISTS asgraph_cache (
	cache_key TEXT PRIMARY KEY,
	graph_json BLOB NOT NULL
);
CREATE TABLE IF NOT EXISTS outcomes (
	trial INTEGER NOT NULL,
	asn INTEGER NOT NULL,
	outcome INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS outcomes_trial_idx ON outcomes(trial);
`

// Store is a sqlite-backed cache. It is safe for a single trial runner's
// sequential use; it is not intended to be shared across concurrent
// trial goroutines (each trial should open its own handle, or writes
// should be serialized by the caller).
type Store struct {
	db *sql.DB
}

// Open creates (if needed) and opens the sqlite database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: init schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// SaveGraph caches graphJSON (the ASGraph JSON contract bytes) under key,
// overwriting any prior cache entry for the same key.
func (s *Store) SaveGraph(key string, graphJSON []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO asgraph_cache (cache_key, graph_json) VALUES (?, ?)
		 ON CONFLICT(cache_key) DO UPDATE SET graph_json = excluded.graph_json`,
		key, graphJSON,
	)
	if err != nil {
		return fmt.Errorf("store: save graph %s: %w", key, err)
	}
	return nil
}

// LoadGraph returns the cached ASGraph JSON bytes for key, if present.
func (s *Store) LoadGraph(key string) ([]byte, bool, error) {
	var data []byte
	err := s.db.QueryRow(`SELECT graph_json FROM asgraph_cache WHERE cache_key = ?`, key).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: load graph %s: %w", key, err)
	}
	return data, true, nil
}

// SaveOutcomes appends one row per (trial, ASN) outcome.
func (s *Store) SaveOutcomes(trial int, outcomes map[int32]dataplane.Outcome) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: save outcomes: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO outcomes (trial, asn, outcome) VALUES (?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("store: save outcomes: %w", err)
	}
	defer stmt.Close()
	for asn, outcome := range outcomes {
		if _, err := stmt.Exec(trial, asn, int(outcome)); err != nil {
			tx.Rollback()
			return fmt.Errorf("store: save outcomes: %w", err)
		}
	}
	return tx.Commit()
}

// LoadOutcomes returns every (ASN, Outcome) pair recorded for trial.
func (s *Store) LoadOutcomes(trial int) (map[int32]dataplane.Outcome, error) {
	rows, err := s.db.Query(`SELECT asn, outcome FROM outcomes WHERE trial = ?`, trial)
	if err != nil {
		return nil, fmt.Errorf("store: load outcomes: %w", err)
	}
	defer rows.Close()

	out := make(map[int32]dataplane.Outcome)
	for rows.Next() {
		var asn int32
		var outcome int
		if err := rows.Scan(&asn, &outcome); err != nil {
			return nil, fmt.Errorf("store: load outcomes: %w", err)
		}
		out[asn] = dataplane.Outcome(outcome)
	}
	return out, rows.Err()
}
