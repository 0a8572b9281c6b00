// Package cli wires the workflow engine, skill registry, and checkpoint
// store into the troupe command tree.
package cli

import (
	"github.com/spf13/cobra"
)

// Version is stamped at build time.
var Version = "dev"

// NewRoot builds the troupe command tree.
func NewRoot() *cobra.Command {
	root := &cobra.Command{
		Use:           "troupe",
		Short:         "Multi-role agent workflow engine",
		Long:          "troupe coordinates coder, reviewer, tester, approval, and executor roles\nover a shared task record, with checkpointed human-in-the-loop pauses.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringP("project", "C", ".", "project directory holding the .troupe state")
	root.AddCommand(newRunCmd())
	root.AddCommand(newResumeCmd())
	root.AddCommand(newApprovalsCmd())
	root.AddCommand(newSkillsCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the troupe version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println("troupe " + Version)
		},
	}
}
