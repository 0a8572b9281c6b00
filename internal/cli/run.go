package cli

import (
	"github.com/spf13/cobra"

	"github.com/opaline-dev/troupe/internal/config"
	"github.com/opaline-dev/troupe/internal/state"
)

const defaultTask = "Implement add(a, b) in app.go."

func newRunCmd() *cobra.Command {
	var (
		task     string
		dynamic  bool
		preset   bool
		runID    string
		noInterr bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start a workflow run",
		Long:  "Runs the role pipeline over a fresh task record. Unless --approve is\nset, execution suspends before the executor and waits for a decision\nsupplied via 'troupe resume'.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			projectDir, _ := cmd.Flags().GetString("project")
			if _, err := config.Init(projectDir); err != nil {
				return err
			}
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			interrupt := !preset && !noInterr
			runner, err := a.runner(dynamic, interrupt)
			if err != nil {
				return err
			}
			if runID == "" {
				runID = newRunID()
			}
			initial := state.New(task)
			if preset {
				initial.ApprovalOutcome = state.ApprovalApproved
			}
			a.logger.Printf("run %s starting (dynamic=%v interrupt=%v)", runID, dynamic, interrupt)
			outcome, err := runner.Run(cmd.Context(), runID, initial)
			if err != nil {
				return err
			}
			printOutcome(cmd, outcome)
			return nil
		},
	}
	cmd.Flags().StringVar(&task, "task", defaultTask, "task for the coder role")
	cmd.Flags().BoolVar(&dynamic, "dynamic", false, "use the orchestrator-driven workflow")
	cmd.Flags().BoolVar(&preset, "approve", false, "pre-approve execution and run to completion")
	cmd.Flags().BoolVar(&noInterr, "no-interrupt", false, "disable the configured interrupt points")
	cmd.Flags().StringVar(&runID, "run-id", "", "use a fixed run identifier")
	return cmd
}

func newResumeCmd() *cobra.Command {
	var (
		decision string
		reason   string
	)
	cmd := &cobra.Command{
		Use:   "resume RUN_ID",
		Short: "Resume a suspended run with an approval decision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			dynamic := a.cfg.Workflow.Mode == "orchestrated"
			runner, err := a.runner(dynamic, true)
			if err != nil {
				return err
			}
			update, err := decisionPatch(decision)
			if err != nil {
				return err
			}
			runID := args[0]
			a.logger.Printf("run %s resuming (decision=%s reason=%q)", runID, decision, reason)
			outcome, err := runner.Resume(cmd.Context(), runID, update)
			if err != nil {
				return err
			}
			printOutcome(cmd, outcome)
			return nil
		},
	}
	cmd.Flags().StringVar(&decision, "decision", "approved", "approval decision: approved or denied")
	cmd.Flags().StringVar(&reason, "reason", "", "optional reason for the audit log")
	return cmd
}
