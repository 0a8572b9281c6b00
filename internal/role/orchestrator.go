package role

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/opaline-dev/troupe/internal/llm"
	"github.com/opaline-dev/troupe/internal/prompt"
	"github.com/opaline-dev/troupe/internal/state"
)

// NewOrchestrator builds the planning role for the dynamic workflow. On an
// empty plan it synthesizes coder -> reviewer -> tester steps; afterwards it
// records observable progress and recomputes the phase.
func NewOrchestrator(provider llm.Provider) Role {
	return NewOrchestratorWithAgents(provider, []string{Coder, Reviewer, Tester})
}

// NewOrchestratorWithAgents overrides the set of agents the orchestrator
// may assign plan steps to.
func NewOrchestratorWithAgents(provider llm.Provider, agents []string) Role {
	b := &base{name: Orchestrator, description: "Coordinates work between agents and manages task execution"}
	if provider == nil {
		b.strategy = fallbackOrchestrator{agents: agents}
	} else {
		b.strategy = llmOrchestrator{provider: provider, agents: agents}
	}
	return b
}

// phaseFor derives the orchestrator phase from remaining pending steps.
func phaseFor(plan []state.PlanStep) state.Phase {
	pending := 0
	for _, step := range plan {
		if step.Status == state.StepPending {
			pending++
		}
	}
	switch {
	case pending == 0:
		return state.PhaseCompleted
	case pending == len(plan):
		return state.PhasePlanning
	default:
		return state.PhaseExecuting
	}
}

func defaultPlan(task string) []state.PlanStep {
	return []state.PlanStep{
		{Role: Coder, Task: "Implement: " + task, Status: state.StepPending},
		{Role: Reviewer, Task: "Review the implementation", Status: state.StepPending},
		{Role: Tester, Task: "Write and run tests", Status: state.StepPending},
	}
}

type fallbackOrchestrator struct {
	agents []string
}

func (o fallbackOrchestrator) process(_ context.Context, st *state.State) (Result, error) {
	if len(st.Plan) == 0 {
		plan := defaultPlan(st.Task())
		return Result{
			Message: assistant(Orchestrator, "Orchestrator: created execution plan."),
			Patch: state.Patch{
				Plan:  plan,
				Phase: state.PhaseOf(phaseFor(plan)),
			},
		}, nil
	}

	plan := append([]state.PlanStep(nil), st.Plan...)
	// Observable progress: the coder after an iteration increment, the
	// reviewer after approval.
	if st.IterationCount > 0 {
		markFirstPending(plan, Coder)
	}
	if st.ReviewOutcome == state.ReviewApproved {
		markFirstPending(plan, Reviewer)
	}
	phase := phaseFor(plan)
	completed := len(plan) - pendingCount(plan)
	return Result{
		Message: assistant(Orchestrator, fmt.Sprintf("Orchestrator: updated plan. %d/%d steps completed.", completed, len(plan))),
		Patch: state.Patch{
			Plan:  plan,
			Phase: state.PhaseOf(phase),
		},
	}, nil
}

type llmOrchestrator struct {
	provider llm.Provider
	agents   []string
}

func (o llmOrchestrator) process(ctx context.Context, st *state.State) (Result, error) {
	task := st.Task()
	current := "No plan created yet. Starting fresh."
	if len(st.Plan) > 0 {
		pending := pendingCount(st.Plan)
		current = fmt.Sprintf("Completed: %d steps. Pending: %d steps. Review outcome: %s",
			len(st.Plan)-pending, pending, st.ReviewOutcome)
	}
	messages := prompt.Orchestrator(task, o.agents, current)
	response, err := o.provider.Invoke(ctx, messages)
	if err != nil {
		return Result{}, fmt.Errorf("role: orchestrator: %w", err)
	}
	plan := ParsePlan(response)
	if len(plan) == 0 {
		plan = []state.PlanStep{
			{Role: Coder, Task: "Implement: " + task, Status: state.StepPending},
			{Role: Reviewer, Task: "Review the implementation", Status: state.StepPending},
		}
	}
	phase := phaseFor(plan)
	return Result{
		Message: assistant(Orchestrator, fmt.Sprintf("Orchestrator: %s.\n\n%s", phase, response)),
		Patch: state.Patch{
			Plan:  plan,
			Phase: state.PhaseOf(phase),
		},
		Metadata: map[string]any{"available_agents": o.agents},
	}, nil
}

var planLine = regexp.MustCompile(`^\d+\.\s*\[(\w+)\]\s*(.+)$`)

// ParsePlan reads numbered "[agent] task" lines out of a model response.
func ParsePlan(response string) []state.PlanStep {
	var plan []state.PlanStep
	for _, line := range strings.Split(strings.TrimSpace(response), "\n") {
		match := planLine.FindStringSubmatch(strings.TrimSpace(line))
		if match == nil {
			continue
		}
		plan = append(plan, state.PlanStep{
			Role:   strings.ToLower(match[1]),
			Task:   strings.TrimSpace(match[2]),
			Status: state.StepPending,
		})
	}
	return plan
}

func markFirstPending(plan []state.PlanStep, roleName string) {
	for i := range plan {
		if plan[i].Role == roleName && plan[i].Status == state.StepPending {
			plan[i].Status = state.StepCompleted
			return
		}
	}
}

func pendingCount(plan []state.PlanStep) int {
	count := 0
	for _, step := range plan {
		if step.Status == state.StepPending {
			count++
		}
	}
	return count
}
