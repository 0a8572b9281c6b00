package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opaline-dev/troupe/internal/skill"
)

func newSkillsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "skills",
		Short: "Inspect and rewrite skill source units",
	}
	cmd.AddCommand(newSkillsListCmd())
	cmd.AddCommand(newSkillsResetCmd())
	return cmd
}

func newSkillsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List skill source units",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			dir := filepath.Join(a.projectDir, filepath.FromSlash(a.cfg.Skills.Dir))
			entries, err := os.ReadDir(dir)
			if err != nil {
				if os.IsNotExist(err) {
					cmd.Println("no skills registered")
					return nil
				}
				return fmt.Errorf("cli: read skills dir: %w", err)
			}
			var names []string
			for _, entry := range entries {
				if entry.IsDir() || filepath.Ext(entry.Name()) != ".go" {
					continue
				}
				names = append(names, strings.TrimSuffix(entry.Name(), ".go"))
			}
			sort.Strings(names)
			for _, name := range names {
				cmd.Println(name)
			}
			if len(names) == 0 {
				cmd.Println("no skills registered")
			}
			return nil
		},
	}
}

func newSkillsResetCmd() *cobra.Command {
	var broken bool
	cmd := &cobra.Command{
		Use:   "reset NAME",
		Short: "Rewrite a skill source from its known-good template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			name := args[0]
			source := skill.Template(name)
			if broken {
				source = skill.BrokenTemplate(name)
			}
			if err := a.skills.Store().Write(name, source); err != nil {
				return err
			}
			if a.skills.Has(name) {
				if _, err := a.skills.Reload(name); err != nil {
					return err
				}
			}
			label := "known-good template"
			if broken {
				label = "broken template (for repair demos)"
			}
			cmd.Printf("skill %s rewritten from %s\n", name, label)
			return nil
		},
	}
	cmd.Flags().BoolVar(&broken, "broken", false, "write the intentionally broken template instead")
	return cmd
}
