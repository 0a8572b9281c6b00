// Package checkpoint provides Saver implementations for the workflow
// runner: an in-memory store for tests and single-process runs, and a
// SQLite store for runs that must survive the process.
package checkpoint

import (
	"fmt"
	"sync"

	"github.com/opaline-dev/troupe/internal/graph"
)

// MemorySaver keeps checkpoints in a process-local map.
type MemorySaver struct {
	mu          sync.RWMutex
	checkpoints map[string]graph.Checkpoint
}

// NewMemorySaver returns an empty in-memory saver.
func NewMemorySaver() *MemorySaver {
	return &MemorySaver{checkpoints: map[string]graph.Checkpoint{}}
}

// Put stores the latest checkpoint for the run.
func (s *MemorySaver) Put(cp graph.Checkpoint) error {
	if cp.RunID == "" {
		return fmt.Errorf("checkpoint: run id is required")
	}
	s.mu.Lock()
	s.checkpoints[cp.RunID] = cp
	s.mu.Unlock()
	return nil
}

// Get returns the latest checkpoint for the run.
func (s *MemorySaver) Get(runID string) (graph.Checkpoint, error) {
	s.mu.RLock()
	cp, ok := s.checkpoints[runID]
	s.mu.RUnlock()
	if !ok {
		return graph.Checkpoint{}, fmt.Errorf("checkpoint %s: %w", runID, graph.ErrNoCheckpoint)
	}
	return cp, nil
}
