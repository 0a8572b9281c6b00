// Package role defines the unit of work the workflow engine dispatches: a
// named role that consumes the shared state and produces a message plus a
// partial state patch. Every role picks one of two strategies at
// construction, a reasoning-engine-backed one or a deterministic fallback,
// so call sites never branch on the mode.
package role

import (
	"context"

	"github.com/opaline-dev/troupe/internal/state"
)

// Canonical role names used by routing and plan steps.
const (
	Coder        = "coder"
	Reviewer     = "reviewer"
	Tester       = "tester"
	Orchestrator = "orchestrator"
	Approver     = "approver"
	Executor     = "executor"
)

// DefaultArtifact is the file the canonical coding task writes.
const DefaultArtifact = "app.go"

// Result is what one role invocation produces. The patch must only touch
// fields the role owns; the engine folds the message into the conversation
// log when adapting the role into a graph node.
type Result struct {
	Message  state.Message
	Patch    state.Patch
	Metadata map[string]any
}

// Role is a named unit of work over the shared state record.
type Role interface {
	Name() string
	Process(ctx context.Context, st *state.State) (Result, error)
}

// strategy is the per-role behavior selected at construction time.
type strategy interface {
	process(ctx context.Context, st *state.State) (Result, error)
}

// base carries the identity shared by all concrete roles and delegates
// processing to the chosen strategy.
type base struct {
	name        string
	description string
	strategy    strategy
}

func (b *base) Name() string {
	return b.name
}

func (b *base) Process(ctx context.Context, st *state.State) (Result, error) {
	return b.strategy.process(ctx, st)
}

// AsNode adapts a role into a pure state-to-patch function for graph
// composition. The role's message becomes one more conversation entry.
func AsNode(r Role) func(context.Context, *state.State) (state.Patch, error) {
	return func(ctx context.Context, st *state.State) (state.Patch, error) {
		result, err := r.Process(ctx, st)
		if err != nil {
			return state.Patch{}, err
		}
		patch := result.Patch
		patch.Messages = append(patch.Messages, result.Message)
		return patch, nil
	}
}

func assistant(role, content string) state.Message {
	return state.Message{Role: role, Content: content, Kind: state.KindAssistant}
}
