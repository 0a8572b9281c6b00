package role

import (
	"context"
	"errors"
	"fmt"

	"github.com/opaline-dev/troupe/internal/skill"
	"github.com/opaline-dev/troupe/internal/state"
)

// ErrNotApproved is the fatal, unretried failure of invoking the executor
// without an approved decision.
var ErrNotApproved = errors.New("role: execution denied or not approved")

// ErrRepairExhausted marks a skill failure after the single repair attempt
// was already spent.
var ErrRepairExhausted = errors.New("role: skill repair already attempted")

// ExecutorRole runs the target skill under the approval gate, repairing a
// broken skill source exactly once per run.
type ExecutorRole struct {
	skills    *skill.Registry
	skillName string
	args      []int
}

// NewExecutor builds the executor for the canonical addition skill.
func NewExecutor(skills *skill.Registry) *ExecutorRole {
	return &ExecutorRole{skills: skills, skillName: "add", args: []int{2, 3}}
}

// NewExecutorFor targets an arbitrary skill and argument list.
func NewExecutorFor(skills *skill.Registry, skillName string, args ...int) *ExecutorRole {
	return &ExecutorRole{skills: skills, skillName: skillName, args: args}
}

func (e *ExecutorRole) Name() string {
	return Executor
}

// Process enforces the approval gate, invokes the skill, and on failure
// rewrites the source from the known-good template, reloads, and retries
// once. A failure with the repair flag already set is re-raised.
func (e *ExecutorRole) Process(_ context.Context, st *state.State) (Result, error) {
	if st.ApprovalOutcome != state.ApprovalApproved {
		return Result{}, fmt.Errorf("%w (outcome %q)", ErrNotApproved, st.ApprovalOutcome)
	}
	unit, err := e.unit()
	var result int
	if err == nil {
		result, err = unit.InvokeInts(e.args...)
	}
	if err == nil {
		return Result{
			Message: assistant(Executor, "Executor: execution completed."),
			Patch: state.Patch{
				LastExecution: state.Str(fmt.Sprintf("Executed %s:add()", DefaultArtifact)),
				SkillResult:   state.Int(result),
			},
		}, nil
	}

	if st.SkillRepairAttempted {
		return Result{}, fmt.Errorf("%w: %s: %v", ErrRepairExhausted, e.skillName, err)
	}
	cause := err
	if repairErr := e.repair(); repairErr != nil {
		return Result{}, fmt.Errorf("role: repair %s: %w", e.skillName, repairErr)
	}
	unit, err = e.skills.Get(e.skillName)
	if err != nil {
		return Result{}, fmt.Errorf("role: repair %s: %w", e.skillName, err)
	}
	result, err = unit.InvokeInts(e.args...)
	if err != nil {
		return Result{}, fmt.Errorf("role: %s failed after repair: %w", e.skillName, err)
	}
	return Result{
		Message: assistant(Executor, "Executor: repaired skill and executed."),
		Patch: state.Patch{
			LastExecution:        state.Str(fmt.Sprintf("Executed %s:add() after repair: %v", DefaultArtifact, cause)),
			SkillResult:          state.Int(result),
			SkillRepairAttempted: state.Bool(true),
		},
	}, nil
}

func (e *ExecutorRole) unit() (*skill.Unit, error) {
	if unit, err := e.skills.Get(e.skillName); err == nil {
		return unit, nil
	}
	return e.skills.Register(e.skillName)
}

func (e *ExecutorRole) repair() error {
	if err := e.skills.Store().Write(e.skillName, skill.Template(e.skillName)); err != nil {
		return err
	}
	var err error
	if e.skills.Has(e.skillName) {
		_, err = e.skills.Reload(e.skillName)
	} else {
		_, err = e.skills.Register(e.skillName)
	}
	return err
}
