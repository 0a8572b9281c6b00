package checkpoint

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/opaline-dev/troupe/internal/graph"
)

const createCheckpointsTable = `
CREATE TABLE IF NOT EXISTS checkpoints (
	run_id      TEXT PRIMARY KEY,
	next_node   TEXT NOT NULL,
	interrupted INTEGER NOT NULL,
	snapshot    TEXT NOT NULL,
	updated_at  TEXT NOT NULL
)`

// SQLiteSaver persists checkpoints in a SQLite database so interrupted
// runs can resume after the process exits.
type SQLiteSaver struct {
	db *sql.DB
}

// NewSQLiteSaver opens (creating if needed) the checkpoint database at
// path. Use ":memory:" for an ephemeral store.
func NewSQLiteSaver(path string) (*SQLiteSaver, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: open %s: %w", path, err)
	}
	if _, err := db.Exec(createCheckpointsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("checkpoint: migrate: %w", err)
	}
	return &SQLiteSaver{db: db}, nil
}

// Close releases the database handle.
func (s *SQLiteSaver) Close() error {
	return s.db.Close()
}

// Put upserts the latest checkpoint for the run.
func (s *SQLiteSaver) Put(cp graph.Checkpoint) error {
	if cp.RunID == "" {
		return fmt.Errorf("checkpoint: run id is required")
	}
	snapshot, err := json.Marshal(cp.State)
	if err != nil {
		return fmt.Errorf("checkpoint: encode %s: %w", cp.RunID, err)
	}
	interrupted := 0
	if cp.Interrupted {
		interrupted = 1
	}
	_, err = s.db.Exec(`
		INSERT INTO checkpoints (run_id, next_node, interrupted, snapshot, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			next_node = excluded.next_node,
			interrupted = excluded.interrupted,
			snapshot = excluded.snapshot,
			updated_at = excluded.updated_at`,
		cp.RunID, cp.Next, interrupted, string(snapshot), cp.UpdatedAt.UTC().Format(timestampLayout))
	if err != nil {
		return fmt.Errorf("checkpoint: save %s: %w", cp.RunID, err)
	}
	return nil
}

// Get returns the latest checkpoint for the run.
func (s *SQLiteSaver) Get(runID string) (graph.Checkpoint, error) {
	row := s.db.QueryRow(
		`SELECT next_node, interrupted, snapshot, updated_at FROM checkpoints WHERE run_id = ?`, runID)
	var (
		next        string
		interrupted int
		snapshot    string
		updatedAt   string
	)
	if err := row.Scan(&next, &interrupted, &snapshot, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return graph.Checkpoint{}, fmt.Errorf("checkpoint %s: %w", runID, graph.ErrNoCheckpoint)
		}
		return graph.Checkpoint{}, fmt.Errorf("checkpoint: load %s: %w", runID, err)
	}
	cp := graph.Checkpoint{RunID: runID, Next: next, Interrupted: interrupted == 1}
	if err := json.Unmarshal([]byte(snapshot), &cp.State); err != nil {
		return graph.Checkpoint{}, fmt.Errorf("checkpoint: decode %s: %w", runID, err)
	}
	if t, err := parseTimestamp(updatedAt); err == nil {
		cp.UpdatedAt = t
	}
	return cp, nil
}
