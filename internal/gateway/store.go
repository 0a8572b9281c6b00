// Package gateway carries the narrow human-in-the-loop contract: a pending
// approval record per suspended run, and the decision tuple any external
// gateway (chat bot, web form) must supply to resume it.
package gateway

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrUnknownRun is returned when a decision targets a run with no pending
// approval record.
var ErrUnknownRun = errors.New("gateway: no approval pending for run")

// DecisionValue is the binary outcome an external actor supplies.
type DecisionValue string

const (
	DecisionApproved DecisionValue = "approved"
	DecisionDenied   DecisionValue = "denied"
)

// Decision is the minimal resume contract: which run, which way, and an
// optional reviewer and reason for the audit trail.
type Decision struct {
	RunID    string        `json:"run_id"`
	Decision DecisionValue `json:"decision"`
	Reviewer string        `json:"reviewer,omitempty"`
	Reason   string        `json:"reason,omitempty"`
}

// Valid reports whether the decision names a run and a recognized outcome.
func (d Decision) Valid() error {
	if d.RunID == "" {
		return fmt.Errorf("gateway: run id is required")
	}
	if d.Decision != DecisionApproved && d.Decision != DecisionDenied {
		return fmt.Errorf("gateway: unknown decision %q", d.Decision)
	}
	return nil
}

// Record tracks one approval request from creation to resolution.
type Record struct {
	RunID         string        `json:"run_id"`
	PendingAction string        `json:"pending_action"`
	Summary       string        `json:"summary,omitempty"`
	Status        string        `json:"status"`
	Reviewer      string        `json:"reviewer,omitempty"`
	Reason        string        `json:"reason,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	ResolvedAt    *time.Time    `json:"resolved_at,omitempty"`
	Decision      DecisionValue `json:"decision,omitempty"`
}

// Store holds pending approval records keyed by run identifier.
type Store struct {
	clock func() time.Time

	mu      sync.RWMutex
	records map[string]*Record
}

// NewStore returns an empty approval store.
func NewStore() *Store {
	return &Store{clock: time.Now, records: map[string]*Record{}}
}

// WithClock injects a deterministic clock for tests.
func (s *Store) WithClock(clock func() time.Time) *Store {
	if clock != nil {
		s.clock = clock
	}
	return s
}

// Create registers a pending approval for a suspended run.
func (s *Store) Create(runID, pendingAction, summary string) *Record {
	record := &Record{
		RunID:         runID,
		PendingAction: pendingAction,
		Summary:       summary,
		Status:        "pending",
		CreatedAt:     s.clock(),
	}
	s.mu.Lock()
	s.records[runID] = record
	s.mu.Unlock()
	return record
}

// Get returns the approval record for a run, if any.
func (s *Store) Get(runID string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[runID]
	if !ok {
		return Record{}, false
	}
	return *record, true
}

// Resolve applies a decision to a pending record. Resolving a run with no
// record fails with ErrUnknownRun and has no side effects.
func (s *Store) Resolve(d Decision) (Record, error) {
	if err := d.Valid(); err != nil {
		return Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[d.RunID]
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrUnknownRun, d.RunID)
	}
	now := s.clock()
	record.Status = string(d.Decision)
	record.Decision = d.Decision
	record.Reviewer = d.Reviewer
	record.Reason = d.Reason
	record.ResolvedAt = &now
	return *record, nil
}
