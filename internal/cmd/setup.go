package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"digital.vasic.harness/pkg/workflow"
)

func newSetupCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "setup <procedure> <dir>",
		Short: "Prepare a sandbox directory with a setup procedure",
		Long: `Runs one setup procedure (greenfield, brownfield or bugfix) against
a directory, creating it if needed. Useful to reproduce a test's
starting point by hand.`,
		Args: usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.close()

			procedures := a.builder.Procedures()
			setup, ok := procedures[args[0]]
			if !ok {
				return fmt.Errorf("unknown setup procedure %q (available: %s)",
					args[0], strings.Join(a.builder.ProcedureNames(), ", "))
			}

			dir, err := filepath.Abs(args[1])
			if err != nil {
				return err
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create sandbox: %w", err)
			}
			if err := setup(cmd.Context(), dir); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s sandbox ready: %s\n", args[0], dir)
			return nil
		},
	}
}

func newPromptCommand(flags *globalFlags) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "prompt <test>",
		Short: "Print the prompt a test sends to the agent",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.close()

			reg, err := a.registry()
			if err != nil {
				return err
			}
			def, err := reg.Get(args[0])
			if err != nil {
				return err
			}
			text, err := workflow.RenderPrompt(def, workflow.PromptData{
				Executable: a.cfg.Executable,
				Dir:        dir,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "<sandbox>", "sandbox path shown in the prompt")
	return cmd
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
