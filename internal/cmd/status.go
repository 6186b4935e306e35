package cmd

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"digital.vasic.harness/pkg/monitor"
)

func newStatusCommand(flags *globalFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the progress of a run served by --monitor",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				a, err := newApp(cmd, flags)
				if err != nil {
					return err
				}
				a.close()
				addr = a.cfg.Monitor.Addr
			}
			if addr == "" {
				return fmt.Errorf("no monitor address: pass --addr or set monitor.addr")
			}

			snap, err := monitor.NewClient(addr).Dashboard(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %s: %s (%s elapsed)\n", snap.RunID, snap.Status, snap.Summary.Elapsed)
			fmt.Fprintf(out, "%d tests: %d passed, %d failed, %d timed out, %d errors, %d skipped, %d running\n\n",
				snap.Summary.Total, snap.Summary.Passed, snap.Summary.Failed, snap.Summary.TimedOut,
				snap.Summary.Errors, snap.Summary.Skipped, snap.Summary.Running)

			names := make([]string, 0, len(snap.Tests))
			for name := range snap.Tests {
				names = append(names, name)
			}
			sort.Strings(names)

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tPHASE\tCHECKS\tMESSAGE")
			for _, name := range names {
				s := snap.Tests[name]
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.Name, s.Phase, dash(s.Checks), s.Message)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "monitor address (default monitor.addr)")
	return cmd
}
