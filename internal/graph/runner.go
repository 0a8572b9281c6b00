package graph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/opaline-dev/troupe/internal/state"
)

// ErrNoCheckpoint is returned when no checkpoint exists for a run.
var ErrNoCheckpoint = errors.New("graph: checkpoint not found")

// ErrNotSuspended is returned when resume is called on a run that is not
// currently paused at an interrupt point.
var ErrNotSuspended = errors.New("graph: run is not suspended")

// ErrStepBudget guards against routing cycles that never terminate.
var ErrStepBudget = errors.New("graph: step budget exhausted")

// Checkpoint is the persisted snapshot of a run at a node boundary.
type Checkpoint struct {
	RunID       string       `json:"run_id"`
	State       *state.State `json:"state"`
	Next        string       `json:"next"`
	Interrupted bool         `json:"interrupted"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Saver persists checkpoints keyed by run identifier. Get returns
// ErrNoCheckpoint when nothing is stored for the run.
type Saver interface {
	Put(cp Checkpoint) error
	Get(runID string) (Checkpoint, error)
}

// Logger is the minimal logging surface the runner needs.
type Logger interface {
	Printf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// Outcome reports where a run ended up: either a terminal state, or a
// suspension before the named node awaiting an external update.
type Outcome struct {
	RunID        string
	State        *state.State
	Interrupted  bool
	PausedBefore string
}

// Runner executes a graph with checkpointing and pre-node interrupts. One
// role runs to completion before the next is dispatched; the only
// suspension point is the configured interrupt set.
type Runner struct {
	graph           *Graph
	saver           Saver
	interruptBefore map[string]bool
	logger          Logger
	clock           func() time.Time
	maxSteps        int
}

// Option customizes the runner.
type Option func(*Runner)

// WithInterruptBefore pauses execution before entering any of the named
// nodes, returning control to the caller with the checkpointed state.
func WithInterruptBefore(names ...string) Option {
	return func(r *Runner) {
		for _, name := range names {
			r.interruptBefore[name] = true
		}
	}
}

// WithLogger injects a logger for routing decisions.
func WithLogger(logger Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithClock injects a deterministic clock (primarily for tests). The clock
// only stamps checkpoints; no routing decision may consult it.
func WithClock(clock func() time.Time) Option {
	return func(r *Runner) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithMaxSteps overrides the routing-cycle guard.
func WithMaxSteps(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.maxSteps = n
		}
	}
}

// NewRunner wires a validated graph to a checkpoint saver.
func NewRunner(g *Graph, saver Saver, opts ...Option) (*Runner, error) {
	if g == nil {
		return nil, fmt.Errorf("graph: runner requires a graph")
	}
	if saver == nil {
		return nil, fmt.Errorf("graph: runner requires a checkpoint saver")
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	r := &Runner{
		graph:           g,
		saver:           saver,
		interruptBefore: map[string]bool{},
		logger:          nopLogger{},
		clock:           time.Now,
		maxSteps:        50,
	}
	for _, opt := range opts {
		opt(r)
	}
	for name := range r.interruptBefore {
		if !g.HasNode(name) {
			return nil, fmt.Errorf("graph: interrupt before undefined node %s", name)
		}
	}
	return r, nil
}

// Run executes from the entry node until the graph ends or an interrupt
// suspends it. The initial state is cloned; the caller's copy is never
// mutated.
func (r *Runner) Run(ctx context.Context, runID string, initial *state.State) (Outcome, error) {
	if runID == "" {
		return Outcome{}, fmt.Errorf("graph: run id is required")
	}
	if initial == nil {
		return Outcome{}, fmt.Errorf("graph: initial state is required")
	}
	return r.loop(ctx, runID, initial.Clone(), r.graph.Entry())
}

// Resume merges an external update (e.g. an approval decision) into the
// suspended run's checkpoint and continues from the node it paused before.
// Calling resume without a recorded suspension fails and has no side
// effects.
func (r *Runner) Resume(ctx context.Context, runID string, update state.Patch) (Outcome, error) {
	cp, err := r.saver.Get(runID)
	if err != nil {
		return Outcome{}, fmt.Errorf("resume %s: %w", runID, err)
	}
	if !cp.Interrupted {
		return Outcome{}, fmt.Errorf("resume %s: %w", runID, ErrNotSuspended)
	}
	st := cp.State.Clone()
	st.Apply(update)
	if err := r.checkpoint(runID, st, cp.Next, true); err != nil {
		return Outcome{}, err
	}
	return r.resume(ctx, runID, st, cp.Next)
}

// loop runs the state machine from node, honoring interrupts before entry.
func (r *Runner) loop(ctx context.Context, runID string, st *state.State, node string) (Outcome, error) {
	for steps := 0; ; steps++ {
		if steps >= r.maxSteps {
			return Outcome{}, fmt.Errorf("run %s at %s: %w", runID, node, ErrStepBudget)
		}
		if node == End {
			if err := r.checkpoint(runID, st, End, false); err != nil {
				return Outcome{}, err
			}
			return Outcome{RunID: runID, State: st}, nil
		}
		if r.interruptBefore[node] {
			if err := r.checkpoint(runID, st, node, true); err != nil {
				return Outcome{}, err
			}
			r.logger.Printf("run %s suspended before %s", runID, node)
			return Outcome{RunID: runID, State: st.Clone(), Interrupted: true, PausedBefore: node}, nil
		}
		next, err := r.step(ctx, runID, st, node)
		if err != nil {
			return Outcome{}, err
		}
		node = next
	}
}

// resume is loop minus the interrupt check on the first node, so a resumed
// run does not immediately re-suspend at the point it paused.
func (r *Runner) resume(ctx context.Context, runID string, st *state.State, node string) (Outcome, error) {
	next, err := r.step(ctx, runID, st, node)
	if err != nil {
		return Outcome{}, err
	}
	return r.loop(ctx, runID, st, next)
}

// step executes one node and checkpoints the merged state. On node failure
// nothing past the previous checkpoint is persisted.
func (r *Runner) step(ctx context.Context, runID string, st *state.State, node string) (string, error) {
	fn := r.graph.nodes[node]
	if fn == nil {
		return "", fmt.Errorf("graph: undefined node %s", node)
	}
	patch, err := fn(ctx, st)
	if err != nil {
		r.logger.Printf("run %s node %s failed: %v", runID, node, err)
		return "", fmt.Errorf("node %s: %w", node, err)
	}
	st.Apply(patch)
	next, err := r.graph.next(node, st)
	if err != nil {
		return "", err
	}
	if err := r.checkpoint(runID, st, next, false); err != nil {
		return "", err
	}
	r.logger.Printf("run %s: %s -> %s", runID, node, next)
	return next, nil
}

func (r *Runner) checkpoint(runID string, st *state.State, next string, interrupted bool) error {
	cp := Checkpoint{
		RunID:       runID,
		State:       st.Clone(),
		Next:        next,
		Interrupted: interrupted,
		UpdatedAt:   r.clock(),
	}
	if err := r.saver.Put(cp); err != nil {
		return fmt.Errorf("graph: checkpoint %s: %w", runID, err)
	}
	return nil
}
