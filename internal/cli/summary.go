package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/opaline-dev/troupe/internal/gateway"
	"github.com/opaline-dev/troupe/internal/graph"
	"github.com/opaline-dev/troupe/internal/state"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(22)
	pausedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	okStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
)

func printOutcome(cmd *cobra.Command, outcome graph.Outcome) {
	st := outcome.State
	if outcome.Interrupted {
		cmd.Println(pausedStyle.Render(fmt.Sprintf("run %s suspended before %s", outcome.RunID, outcome.PausedBefore)))
		cmd.Println(row("pending action", st.PendingAction))
		cmd.Println(row("resume with", fmt.Sprintf("troupe resume %s --decision approved", outcome.RunID)))
		return
	}
	cmd.Println(okStyle.Render(fmt.Sprintf("run %s completed", outcome.RunID)))
	cmd.Println(titleStyle.Render("result"))
	cmd.Println(row("iterations", fmt.Sprintf("%d", st.IterationCount)))
	cmd.Println(row("review", string(st.ReviewOutcome)))
	cmd.Println(row("tests", string(st.TestOutcome)))
	cmd.Println(row("approval", string(st.ApprovalOutcome)))
	cmd.Println(row("execution", st.LastExecution))
	cmd.Println(row("skill result", fmt.Sprintf("%d", st.SkillResult)))
	if st.SkillRepairAttempted {
		cmd.Println(row("skill repair", "performed"))
	}
	if len(st.Plan) > 0 {
		cmd.Println(titleStyle.Render("plan"))
		for i, step := range st.Plan {
			cmd.Println(row(fmt.Sprintf("%d. %s", i+1, step.Role), fmt.Sprintf("%s (%s)", step.Task, step.Status)))
		}
	}
}

func row(label, value string) string {
	return labelStyle.Render(label) + " " + strings.TrimSpace(value)
}

func decisionPatch(decision string) (state.Patch, error) {
	switch gateway.DecisionValue(decision) {
	case gateway.DecisionApproved, gateway.DecisionDenied:
		return gateway.ApprovalPatch(gateway.DecisionValue(decision)), nil
	default:
		return state.Patch{}, fmt.Errorf("cli: unknown decision %q (want approved or denied)", decision)
	}
}
