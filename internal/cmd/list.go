package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"digital.vasic.harness/pkg/report"
	"digital.vasic.harness/pkg/validation"
	"digital.vasic.harness/pkg/workflow"
)

func newListCommand(flags *globalFlags) *cobra.Command {
	var (
		category       string
		showValidators bool
		showSetups     bool
		showAssertions bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tests, validators, setup procedures or assertion types",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			defer w.Flush()

			switch {
			case showValidators:
				fmt.Fprintln(w, "VALIDATOR\tUSAGE\tDESCRIPTION")
				for _, name := range a.validators.Names() {
					s, _ := a.validators.Lookup(name)
					fmt.Fprintf(w, "%s\t%s\t%s\n", s.Name, s.Usage(), s.Description)
				}
				return nil
			case showSetups:
				for _, name := range a.builder.ProcedureNames() {
					fmt.Fprintln(w, name)
				}
				return nil
			case showAssertions:
				for _, name := range validation.Assertions().Types() {
					fmt.Fprintln(w, name)
				}
				return nil
			}

			reg, err := a.registry()
			if err != nil {
				return err
			}
			defs, err := reg.ChainOrder()
			if err != nil {
				return err
			}
			fmt.Fprintln(w, "NAME\tCATEGORY\tTIMEOUT\tTURNS\tAFTER\tSETUP\tVALIDATOR")
			for _, d := range defs {
				if category != "" && d.Category != category {
					continue
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
					d.Name, d.Category, d.Timeout, d.MaxTurns,
					dash(d.After), dash(d.SetupName), dash(validatorText(d)))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only list tests of this category")
	cmd.Flags().BoolVar(&showValidators, "validators", false, "list validators instead of tests")
	cmd.Flags().BoolVar(&showSetups, "setups", false, "list setup procedures instead of tests")
	cmd.Flags().BoolVar(&showAssertions, "assertions", false, "list assertion types usable in checks")
	return cmd
}

func validatorText(d workflow.Definition) string {
	if d.Validator == nil {
		return ""
	}
	return strings.TrimSpace(d.Validator.Name + " " + strings.Join(d.Validator.Args, " "))
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func newHistoryCommand(flags *globalFlags) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the last recorded run of each test",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.close()

			entries, err := report.LoadHistory(a.cfg.HistoryFile)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no history in %s\n", a.cfg.HistoryFile)
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			defer w.Flush()
			fmt.Fprintln(w, "WHEN\tNAME\tSTATUS\tCHECKS\tDURATION\tRUN")

			if !all {
				last := report.LastRuns(entries)
				entries = entries[:0]
				for _, name := range sortedKeys(last) {
					entries = append(entries, last[name])
				}
			}
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%s\t%s\n",
					humanize.Time(e.Timestamp), e.Name,
					strings.ToUpper(e.Status), e.ChecksPassed, e.ChecksTotal,
					e.Duration, shortID(e.RunID))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "show every recorded run")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
