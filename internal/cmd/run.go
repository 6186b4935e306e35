package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"digital.vasic.harness/pkg/env"
	"digital.vasic.harness/pkg/logging"
	"digital.vasic.harness/pkg/metrics"
	"digital.vasic.harness/pkg/monitor"
	"digital.vasic.harness/pkg/report"
	"digital.vasic.harness/pkg/runner"
	"digital.vasic.harness/pkg/workflow"
)

type runFlags struct {
	parallel     int
	category     string
	reportFormat string
	monitorAddr  string
	keep         bool
}

func newRunCommand(flags *globalFlags) *cobra.Command {
	rf := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run [test...]",
		Short: "Run workflow tests against the configured agent",
		Long: `Without arguments every registered test runs, chains in order
inside a shared sandbox. Named tests run independently, each in a
fresh sandbox, up to --parallel at once.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(cmd, flags, rf, args)
		},
	}
	f := cmd.Flags()
	f.IntVarP(&rf.parallel, "parallel", "p", 0, "maximum concurrent tests (default from config)")
	f.StringVar(&rf.category, "category", "", "only run tests of this category")
	f.StringVar(&rf.reportFormat, "report-format", "",
		"also write per-test reports: "+strings.Join(report.Formats, ", "))
	f.StringVar(&rf.monitorAddr, "monitor", "", "serve live progress on this address, e.g. :8090")
	f.BoolVar(&rf.keep, "keep", false, "keep every sandbox, even for passing tests")
	return cmd
}

func runTests(cmd *cobra.Command, flags *globalFlags, rf *runFlags, names []string) error {
	ctx := cmd.Context()

	// The env file is read before the logger exists so its
	// secrets can be masked from the first line on.
	probe, err := newApp(cmd, flags)
	if err != nil {
		return err
	}
	probe.close()
	vars, err := env.LoadFiles(probe.cfg.Agent.EnvFile)
	if err != nil {
		return fmt.Errorf("load env: %w", err)
	}

	a, err := newApp(cmd, flags, vars.Secrets()...)
	if err != nil {
		return err
	}
	defer a.close()
	cfg := a.cfg

	var reporter report.Reporter
	if rf.reportFormat != "" {
		if reporter, err = report.NewReporter(rf.reportFormat); err != nil {
			return err
		}
	}

	reg, err := a.registry()
	if err != nil {
		return err
	}
	if rf.category != "" && len(names) == 0 {
		for _, d := range reg.ListByCategory(rf.category) {
			names = append(names, d.Name)
		}
		if len(names) == 0 {
			return fmt.Errorf("no tests in category %q", rf.category)
		}
	}

	agent, err := runner.NewCommandAgent(cfg.Agent.Command, vars.All(), a.logger)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	resultsDir := filepath.Join(cfg.ResultsDir, runID)
	collector := monitor.NewEventCollector()

	addr := cfg.Monitor.Addr
	if rf.monitorAddr != "" {
		addr = rf.monitorAddr
	}
	var dashboard *monitor.Dashboard
	if addr != "" {
		dashboard = monitor.NewDashboard(runID)
		srv := monitor.NewServer(addr, collector, dashboard)

		m := metrics.NewPrometheusMetrics()
		m.IncrementRunTotal()
		metrics.Observe(collector, m)
		srv.Mount("/metrics", m)

		stop := startMonitor(ctx, a.logger, addr, srv)
		defer stop()
	}

	concurrency := cfg.Concurrency
	if rf.parallel > 0 {
		concurrency = rf.parallel
	}

	r := runner.NewRunner(
		runner.WithRegistry(reg),
		runner.WithLogger(a.logger),
		runner.WithAgent(agent),
		runner.WithValidators(a.validators),
		runner.WithCollector(collector),
		runner.WithWorkDir(cfg.WorkDir),
		runner.WithResultsDir(cfg.ResultsDir),
		runner.WithExecutable(cfg.Executable),
		runner.WithConcurrency(concurrency),
		runner.WithCleanup(!cfg.KeepSandboxes && !rf.keep),
		runner.WithRunID(runID),
		runner.WithPostHook(func(_ context.Context, _ workflow.Definition, res *workflow.Result) error {
			return report.AppendToHistory(cfg.HistoryFile, res, resultsDir)
		}),
	)

	var results []*workflow.Result
	if len(names) == 0 {
		results, err = r.RunAll(ctx)
	} else {
		results, err = r.RunParallel(ctx, names, concurrency)
	}
	if dashboard != nil {
		dashboard.SetStatus("finished")
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	out := cmd.OutOrStdout()
	for _, res := range results {
		printResult(cmd, res)
	}

	summary := report.BuildMasterSummary(results)
	summaryPath, serr := report.SaveMasterSummary(summary, resultsDir)
	if serr != nil {
		return serr
	}
	if reporter != nil {
		if _, werr := report.WriteReports(resultsDir, reporter, results); werr != nil {
			return werr
		}
	}

	fmt.Fprintf(out, "\n%d/%d passed (%d failed, %d timed out, %d errors, %d skipped) in %s\n",
		summary.Passed, summary.Total, summary.Failed, summary.TimedOut,
		summary.Errors, summary.Skipped, summary.TotalDuration.Round(time.Millisecond))
	fmt.Fprintf(out, "Summary: %s\n", summaryPath)

	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}
	if !summary.AllPassed() {
		return &ExitError{Code: 1}
	}
	return nil
}

// printResult writes one line per test, followed by its failing
// checks.
func printResult(cmd *cobra.Command, res *workflow.Result) {
	out := cmd.OutOrStdout()
	passed, total := 0, 0
	if res.Report != nil {
		passed, total = res.Report.Passed(), res.Report.Total()
	}
	fmt.Fprintf(out, "%-9s %-40s %d/%d checks  %s\n",
		strings.ToUpper(res.Status), res.Name, passed, total,
		res.Duration.Round(time.Millisecond))
	if res.Error != "" {
		fmt.Fprintf(out, "          %s\n", res.Error)
	}
	if res.Report == nil {
		return
	}
	for _, c := range res.Report.Checks() {
		if !c.Passed {
			fmt.Fprintf(out, "          %s\n", c.String())
		}
	}
}

// startMonitor serves live progress in the background and returns
// a function that shuts the server down.
func startMonitor(ctx context.Context, logger logging.Logger, addr string, srv *monitor.Server) func() {
	go func() {
		if err := srv.Start(ctx); err != nil {
			logger.Error("monitor stopped", logging.ErrorField(err))
		}
	}()
	logger.Info("monitor listening", logging.StringField("addr", addr))
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Stop(shutdownCtx)
	}
}
