package graph

import (
	"context"
	"fmt"

	"github.com/opaline-dev/troupe/internal/role"
	"github.com/opaline-dev/troupe/internal/state"
)

// Pipeline builds the fixed topology:
//
//	Start -> coder -> reviewer -> {coder | tester} -> {coder | approver}
//	      -> approver -> executor -> End
//
// The reviewer loops back to the coder on changes requested; the tester
// loops back on a failed test run.
func Pipeline(reg *role.Registry) (*Graph, error) {
	g := New()
	for _, name := range []string{role.Coder, role.Reviewer, role.Tester, role.Approver, role.Executor} {
		r, err := reg.Get(name)
		if err != nil {
			return nil, fmt.Errorf("graph: pipeline: %w", err)
		}
		if err := g.AddNode(name, role.AsNode(r)); err != nil {
			return nil, err
		}
	}
	wiring := []error{
		g.AddEdge(Start, role.Coder),
		g.AddEdge(role.Coder, role.Reviewer),
		g.AddConditionalEdge(role.Reviewer, func(st *state.State) string {
			if st.ReviewOutcome == state.ReviewChangesRequested {
				return role.Coder
			}
			return role.Tester
		}),
		g.AddConditionalEdge(role.Tester, func(st *state.State) string {
			if st.TestOutcome == state.TestFailed {
				return role.Coder
			}
			return role.Approver
		}),
		g.AddEdge(role.Approver, role.Executor),
		g.AddEdge(role.Executor, End),
	}
	for _, err := range wiring {
		if err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Orchestrated builds the dynamic topology: the orchestrator plans, a
// router dispatches plan steps, and each dispatched role re-enters the
// router after a step-tracking wrapper records its progress.
func Orchestrated(reg *role.Registry, router *Router) (*Graph, error) {
	if router == nil {
		router = NewRouter()
	}
	roles := map[string]role.Role{}
	for _, name := range []string{role.Orchestrator, role.Coder, role.Reviewer, role.Tester, role.Approver, role.Executor} {
		r, err := reg.Get(name)
		if err != nil {
			return nil, fmt.Errorf("graph: orchestrated: %w", err)
		}
		roles[name] = r
	}

	g := New()
	wiring := []error{
		g.AddNode(role.Orchestrator, role.AsNode(roles[role.Orchestrator])),
		g.AddNode(role.Coder, trackStep(role.Coder, role.AsNode(roles[role.Coder]))),
		g.AddNode(role.Reviewer, trackReview(role.AsNode(roles[role.Reviewer]))),
		g.AddNode(role.Tester, trackStep(role.Tester, role.AsNode(roles[role.Tester]))),
		g.AddNode(role.Approver, role.AsNode(roles[role.Approver])),
		g.AddNode(role.Executor, role.AsNode(roles[role.Executor])),
		g.AddEdge(Start, role.Orchestrator),
		g.AddConditionalEdge(role.Orchestrator, router.Next),
		g.AddConditionalEdge(role.Coder, router.Next),
		g.AddConditionalEdge(role.Reviewer, router.Next),
		g.AddConditionalEdge(role.Tester, router.Next),
		g.AddEdge(role.Approver, role.Executor),
		g.AddEdge(role.Executor, End),
	}
	for _, err := range wiring {
		if err != nil {
			return nil, err
		}
	}
	return g, nil
}

// trackStep marks the role's first pending plan step completed after the
// wrapped node runs, unless the node already rewrote the plan itself.
func trackStep(roleName string, fn NodeFunc) NodeFunc {
	return func(ctx context.Context, st *state.State) (state.Patch, error) {
		patch, err := fn(ctx, st)
		if err != nil {
			return state.Patch{}, err
		}
		if patch.Plan != nil {
			return patch, nil
		}
		plan := append([]state.PlanStep(nil), st.Plan...)
		for i := range plan {
			if plan[i].Role == roleName && plan[i].Status == state.StepPending {
				plan[i].Status = state.StepCompleted
				break
			}
		}
		patch.Plan = plan
		return patch, nil
	}
}

// trackReview completes the reviewer step on approval; on changes
// requested it resets every coder step to pending to force a retry.
func trackReview(fn NodeFunc) NodeFunc {
	return func(ctx context.Context, st *state.State) (state.Patch, error) {
		patch, err := fn(ctx, st)
		if err != nil {
			return state.Patch{}, err
		}
		plan := append([]state.PlanStep(nil), st.Plan...)
		if patch.ReviewOutcome != nil && *patch.ReviewOutcome == state.ReviewApproved {
			for i := range plan {
				if plan[i].Role == role.Reviewer && plan[i].Status == state.StepPending {
					plan[i].Status = state.StepCompleted
					break
				}
			}
		} else {
			for i := range plan {
				if plan[i].Role == role.Coder {
					plan[i].Status = state.StepPending
				}
			}
		}
		patch.Plan = plan
		return patch, nil
	}
}
