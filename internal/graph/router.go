package graph

import (
	"github.com/opaline-dev/troupe/internal/role"
	"github.com/opaline-dev/troupe/internal/state"
)

// Router picks the next node for the orchestrator-driven workflow by
// scanning the execution plan in insertion order. An unrecognized role in
// a plan step is not an error; it routes back to the orchestrator for
// replanning.
type Router struct {
	known  map[string]bool
	logger Logger
}

// NewRouter builds a router over the dispatchable role names.
func NewRouter() *Router {
	return &Router{
		known: map[string]bool{
			role.Coder:    true,
			role.Reviewer: true,
			role.Tester:   true,
			role.Approver: true,
			role.Executor: true,
		},
		logger: nopLogger{},
	}
}

// WithRouterLogger records replanning detours caused by unknown roles.
func (r *Router) WithRouterLogger(logger Logger) *Router {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// Next returns the next node name, role.Orchestrator for replanning, or
// End when the plan is complete.
func (r *Router) Next(st *state.State) string {
	if st.Phase == state.PhaseCompleted {
		return End
	}
	for _, step := range st.Plan {
		if step.Status == state.StepFailed {
			return role.Orchestrator
		}
	}
	for _, step := range st.Plan {
		if step.Status != state.StepPending {
			continue
		}
		if r.known[step.Role] {
			return step.Role
		}
		r.logger.Printf("router: unknown role %q in plan, replanning", step.Role)
		return role.Orchestrator
	}
	if len(st.Plan) > 0 {
		// No pending, none failed: everything completed.
		return End
	}
	return role.Orchestrator
}
