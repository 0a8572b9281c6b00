package role

import (
	"context"
	"fmt"

	"github.com/opaline-dev/troupe/internal/state"
)

// NewApprover builds the human-approval gate. It publishes the pending
// action and leaves the approval outcome untouched; the actual decision
// arrives through the checkpoint controller's external-update path while
// execution is suspended before the executor.
func NewApprover() Role {
	b := &base{name: Approver, description: "Requests human approval for the pending action"}
	b.strategy = approverStrategy{}
	return b
}

type approverStrategy struct{}

func (approverStrategy) process(_ context.Context, st *state.State) (Result, error) {
	action := fmt.Sprintf("execute:%s:add()", DefaultArtifact)
	return Result{
		Message: assistant(Approver, fmt.Sprintf("Approval requested for executing %s.", DefaultArtifact)),
		Patch: state.Patch{
			PendingAction:   state.Str(action),
			ApprovalOutcome: state.Approval(st.ApprovalOutcome),
		},
	}, nil
}
