// Package cmd implements the harness command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"digital.vasic.harness/pkg/validation"
	"digital.vasic.harness/pkg/validators"
)

// ExitError carries a process exit code. A nil Err means the
// command already reported the failure, e.g. a failed report.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	workDir    string
	logLevel   string
	verbose    bool
}

// NewRootCommand builds the harness command tree writing to the
// given streams.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:   "harness",
		Short: "Workflow test harness for agent-driven development skills",
		Long: `harness prepares sandbox projects, drives a coding agent through
development workflows (plan, design, implement, review, fix) and
validates the artifacts the agent leaves behind.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "config file (default ./harness.yaml)")
	pf.StringVar(&flags.workDir, "work-dir", "", "parent directory of sandboxes")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(
		newValidateCommand(flags),
		newCheckCommand(flags),
		newListCommand(flags),
		newSetupCommand(flags),
		newPromptCommand(flags),
		newRunCommand(flags),
		newHistoryCommand(flags),
		newStatusCommand(flags),
	)
	return root
}

// Execute runs the command line and returns the process exit
// code: 0 on success, 2 on usage errors, 1 otherwise.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand(stdout, stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var exit *ExitError
	switch {
	case errors.Is(err, validators.ErrUsage):
		fmt.Fprintf(stderr, "Usage: harness %s\n", usageText(err))
		return validation.ExitUsage
	case errors.As(err, &exit):
		if exit.Err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", exit.Err)
		}
		return exit.Code
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
}

// usageText strips the sentinel prefix from a usage error.
func usageText(err error) string {
	msg := err.Error()
	prefix := validators.ErrUsage.Error() + ": "
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return msg
}

// usageArgs turns cobra argument errors into usage errors that
// carry the command's usage line.
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return fmt.Errorf("%w: %s", validators.ErrUsage, cmd.Use)
		}
		return nil
	}
}
