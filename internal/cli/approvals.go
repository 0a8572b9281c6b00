package cli

import (
	"github.com/spf13/cobra"

	"github.com/opaline-dev/troupe/internal/gateway"
)

func newApprovalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "approvals",
		Short: "Manage pending approvals",
	}
	cmd.AddCommand(newApprovalsServeCmd())
	return cmd
}

func newApprovalsServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve [RUN_ID...]",
		Short: "Serve the approval HTTP gateway for suspended runs",
		Long:  "Loads the checkpoints for the given run identifiers, exposes their\npending approvals over HTTP, and resumes each run when a decision is\nposted to /approvals/{run}/resolve.",
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
			store := gateway.NewStore()
			for _, runID := range args {
				cp, err := a.saver.Get(runID)
				if err != nil {
					return err
				}
				if !cp.Interrupted {
					cmd.Printf("run %s is not suspended, skipping\n", runID)
					continue
				}
				store.Create(runID, cp.State.PendingAction, cp.State.LastExecution)
				cmd.Printf("awaiting decision for run %s (before %s)\n", runID, cp.Next)
			}
			if addr == "" {
				addr = a.cfg.Gateway.Address()
			}
			server := gateway.NewServer(store, runner, gateway.WithServerLogger(a.logger))
			cmd.Printf("approval gateway listening on %s\n", addr)
			return server.Start(addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to gateway config)")
	return cmd
}
