package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"digital.vasic.harness/pkg/assertion"
	"digital.vasic.harness/pkg/validation"
	"digital.vasic.harness/pkg/validators"
)

func newValidateCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <validator> <sandbox> [args...]",
		Short: "Validate a sandbox with a named validator",
		Long: `Runs one validator against a sandbox directory and prints its
report. Exits 0 when every check passed, 1 when any failed and 2 on
usage errors.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.close()

			if len(args) == 0 {
				return fmt.Errorf("%w: validate <validator> <sandbox> [args...] (validators: %s)",
					validators.ErrUsage, strings.Join(a.validators.Names(), ", "))
			}
			var root string
			if len(args) > 1 {
				root = args[1]
			}
			var rest []string
			if len(args) > 2 {
				rest = args[2:]
			}

			report, err := a.validators.Run(cmd.Context(), args[0], root, rest)
			if err != nil {
				return err
			}
			return printReport(cmd, report)
		},
	}
}

func newCheckCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check <file> <target> <assertion>",
		Short: "Evaluate one assertion against a document",
		Long: `Parses a YAML, JSON or TOML document and evaluates a compact
assertion against the dot-path target, e.g.

  harness check .state/settings.yml project.name equals:TestProject
  harness check .state/sprints.yml sprints min_length:1

An empty target ("") addresses the whole document.`,
		Args: usageArgs(cobra.ExactArgs(3)),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.close()

			file, target, spec := args[0], args[1], args[2]
			report := validation.NewReport("check " + file)
			if doc, ok := validation.ValidDocument(report, file, ""); ok {
				validation.Assert(report, doc, assertion.ParseDefinition(target, spec), "")
			}
			return printReport(cmd, report)
		},
	}
}

// printReport writes the report and turns a failed report into
// exit code 1.
func printReport(cmd *cobra.Command, report *validation.Report) error {
	if code := validation.NewPrinter(cmd.OutOrStdout()).Print(report); code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}
