// Package runner executes harness tests. Each test gets a
// sandbox, is set up, handed to the agent under a hard timeout,
// and validated. Tests chained through After share one sandbox.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"digital.vasic.harness/pkg/document"
	"digital.vasic.harness/pkg/logging"
	"digital.vasic.harness/pkg/monitor"
	"digital.vasic.harness/pkg/registry"
	"digital.vasic.harness/pkg/shell"
	"digital.vasic.harness/pkg/validation"
	"digital.vasic.harness/pkg/validators"
	"digital.vasic.harness/pkg/workflow"
)

// Runner defines the interface for test execution.
type Runner interface {
	// Run executes a single test by name in a fresh sandbox.
	Run(ctx context.Context, name string) (*workflow.Result, error)

	// RunAll executes every registered test. Chains run in
	// order inside one shared sandbox.
	RunAll(ctx context.Context) ([]*workflow.Result, error)

	// RunParallel executes the named tests in independent
	// sandboxes with at most maxConcurrency at once. Results
	// keep the order of names.
	RunParallel(
		ctx context.Context,
		names []string,
		maxConcurrency int,
	) ([]*workflow.Result, error)
}

// Hook is invoked around a test. Pre-hooks see the result before
// setup, with Sandbox filled in; a failing pre-hook ends the test
// with StatusError. Post-hooks see the final result and their
// errors are only logged.
type Hook func(
	ctx context.Context,
	def workflow.Definition,
	result *workflow.Result,
) error

// DefaultRunner is the standard Runner implementation.
type DefaultRunner struct {
	registry    registry.Registry
	logger      logging.Logger
	agent       Agent
	validators  *validators.Catalogue
	collector   *monitor.EventCollector
	workDir     string
	resultsDir  string
	executable  string
	concurrency int
	cleanup     bool
	runID       string
	preHooks    []Hook
	postHooks   []Hook
}

// NewRunner creates a DefaultRunner with the supplied options.
func NewRunner(opts ...RunnerOption) *DefaultRunner {
	r := &DefaultRunner{
		logger:      logging.NullLogger{},
		workDir:     filepath.Join(os.TempDir(), "harness-sandboxes"),
		executable:  "harness",
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.registry == nil {
		r.registry = registry.NewRegistry()
	}
	if r.validators == nil {
		r.validators = validators.New(validators.Options{})
	}
	if r.runID == "" {
		r.runID = uuid.NewString()
	}
	if r.concurrency < 1 {
		r.concurrency = 1
	}
	r.logger = r.logger.WithFields(logging.StringField("run_id", r.runID))
	return r
}

// RunID identifies this runner's session in results and events.
func (r *DefaultRunner) RunID() string { return r.runID }

// Run executes a single test by name in a fresh sandbox. Chained
// tests run without their predecessors.
func (r *DefaultRunner) Run(
	ctx context.Context,
	name string,
) (*workflow.Result, error) {
	def, err := r.registry.Get(name)
	if err != nil {
		return nil, fmt.Errorf("failed to get test: %w", err)
	}
	dir, err := r.allocateSandbox(def.Name)
	if err != nil {
		return nil, err
	}
	result := r.executeTest(ctx, def, dir)
	r.maybeCleanup(dir, []*workflow.Result{result})
	return result, nil
}

// RunAll executes every registered test, chain by chain. A
// chained test whose predecessor did not pass is skipped.
func (r *DefaultRunner) RunAll(
	ctx context.Context,
) ([]*workflow.Result, error) {
	chains, err := r.registry.Chains()
	if err != nil {
		return nil, fmt.Errorf("failed to get chain order: %w", err)
	}
	perChain, err := runBounded(ctx, len(chains), r.concurrency,
		func(ctx context.Context, i int) ([]*workflow.Result, error) {
			return r.runChain(ctx, chains[i])
		})

	var results []*workflow.Result
	for _, rs := range perChain {
		results = append(results, rs...)
	}
	return results, err
}

// RunParallel executes the named tests in independent sandboxes.
// Unknown names fail the call before anything runs.
func (r *DefaultRunner) RunParallel(
	ctx context.Context,
	names []string,
	maxConcurrency int,
) ([]*workflow.Result, error) {
	defs := make([]workflow.Definition, len(names))
	for i, name := range names {
		def, err := r.registry.Get(name)
		if err != nil {
			return nil, fmt.Errorf("test %s: %w", name, err)
		}
		defs[i] = def
	}

	perTest, err := runBounded(ctx, len(defs), maxConcurrency,
		func(ctx context.Context, i int) ([]*workflow.Result, error) {
			dir, err := r.allocateSandbox(defs[i].Name)
			if err != nil {
				return nil, err
			}
			result := r.executeTest(ctx, defs[i], dir)
			r.maybeCleanup(dir, []*workflow.Result{result})
			return []*workflow.Result{result}, nil
		})

	results := make([]*workflow.Result, 0, len(names))
	for _, rs := range perTest {
		results = append(results, rs...)
	}
	return results, err
}

// runChain executes one chain in a shared sandbox.
func (r *DefaultRunner) runChain(
	ctx context.Context,
	chain []workflow.Definition,
) ([]*workflow.Result, error) {
	if len(chain) == 0 {
		return nil, nil
	}
	dir, err := r.allocateSandbox(chain[0].Name)
	if err != nil {
		return nil, err
	}

	passed := make(map[string]bool, len(chain))
	inChain := make(map[string]bool, len(chain))
	for _, def := range chain {
		inChain[def.Name] = true
	}

	results := make([]*workflow.Result, 0, len(chain))
	for _, def := range chain {
		var result *workflow.Result
		if def.After != "" && inChain[def.After] && !passed[def.After] {
			result = r.skip(def, dir, fmt.Sprintf(
				"previous test %s did not pass", def.After,
			))
		} else {
			result = r.executeTest(ctx, def, dir)
		}
		passed[def.Name] = result.Passed()
		results = append(results, result)
	}

	r.maybeCleanup(dir, results)
	return results, nil
}

// executeTest runs one test through its lifecycle: pre-hooks ->
// setup -> prompt -> agent with timeout -> validator -> extra
// checks -> post-hooks. Failures become the result's status; the
// runner itself never fails here.
func (r *DefaultRunner) executeTest(
	ctx context.Context,
	def workflow.Definition,
	dir string,
) *workflow.Result {
	result := &workflow.Result{
		RunID:         r.runID,
		Name:          def.Name,
		Category:      def.Category,
		Status:        workflow.StatusRunning,
		Sandbox:       dir,
		StartTime:     time.Now(),
		AgentExitCode: -1,
	}
	log := r.logger.WithFields(
		logging.StringField("test", def.Name),
		logging.StringField("sandbox", dir),
	)
	defer r.finish(ctx, def, result, log)

	log.Info("test started",
		logging.StringField("category", def.Category),
		logging.StringField("timeout", def.Timeout.String()),
	)
	r.emit(monitor.EventStarted, result, "")

	for _, hook := range r.preHooks {
		if err := hook(ctx, def, result); err != nil {
			r.fail(result, workflow.StatusError, "pre-hook failed: %v", err)
			return result
		}
	}

	if def.Setup != nil {
		if err := def.Setup(ctx, dir); err != nil {
			r.fail(result, workflow.StatusError, "setup failed: %v", err)
			return result
		}
		r.emit(monitor.EventSetup, result, def.SetupName)
	}

	prompt, err := workflow.RenderPrompt(def, workflow.PromptData{
		Executable: r.executable,
		Dir:        dir,
	})
	if err != nil {
		r.fail(result, workflow.StatusError, "prompt: %v", err)
		return result
	}

	if r.agent == nil {
		r.fail(result, workflow.StatusError, "no agent configured")
		return result
	}

	timedOut := false
	out, agentErr := r.agent.Run(ctx, AgentRequest{
		RunID:    r.runID,
		Test:     def.Name,
		Prompt:   prompt,
		MaxTurns: def.MaxTurns,
		Dir:      dir,
		Timeout:  def.Timeout,
	})
	if out != nil {
		result.AgentExitCode = out.ExitCode
		if v, ok := workflow.ParseVerdict(out.Output); ok {
			result.Verdict = v
		}
		r.writeTranscript(result, out.Output, log)
	}
	switch {
	case agentErr == nil:
	case isTimeout(agentErr):
		timedOut = true
		result.Error = fmt.Sprintf("agent timed out after %s", def.Timeout)
	default:
		r.fail(result, workflow.StatusError, "agent failed: %v", agentErr)
		return result
	}
	r.emit(monitor.EventAgent, result, result.Verdict)

	// Sandboxes of timed-out runs are still validated so the
	// report shows how far the agent got.
	report, err := r.validate(ctx, def, dir)
	if err != nil {
		r.fail(result, workflow.StatusError, "validation: %v", err)
		return result
	}
	result.Report = report
	if report != nil {
		r.emit(monitor.EventValidated, result, report.Summary())
	}

	switch {
	case timedOut:
		result.Status = workflow.StatusTimedOut
	case report != nil:
		result.Status = statusOf(report.AllPassed())
	default:
		result.Status = statusOf(result.Verdict == "PASS" && result.AgentExitCode == 0)
	}
	return result
}

// validate runs the definition's validator and extra document
// checks. It returns a nil report when the definition has
// neither.
func (r *DefaultRunner) validate(
	ctx context.Context,
	def workflow.Definition,
	dir string,
) (*validation.Report, error) {
	var report *validation.Report
	if def.Validator != nil {
		rep, err := r.validators.Run(ctx, def.Validator.Name, dir, def.Validator.Args)
		if err != nil {
			return nil, err
		}
		report = rep
	}

	if len(def.Checks) == 0 {
		return report, nil
	}
	if report == nil {
		report = validation.NewReport(def.Name)
	}
	// Each file is parsed and reported once, however many checks
	// address it.
	docs := make(map[string]*document.Node)
	for _, c := range def.Checks {
		doc, seen := docs[c.File]
		if !seen {
			if n, ok := validation.ValidDocument(report, filepath.Join(dir, c.File), c.File); ok {
				doc = &n
			}
			docs[c.File] = doc
		}
		if doc == nil {
			continue
		}
		validation.Assert(report, *doc, c.Definition, "")
	}
	return report, nil
}

func (r *DefaultRunner) skip(
	def workflow.Definition,
	dir, reason string,
) *workflow.Result {
	now := time.Now()
	result := &workflow.Result{
		RunID:         r.runID,
		Name:          def.Name,
		Category:      def.Category,
		Status:        workflow.StatusSkipped,
		Sandbox:       dir,
		StartTime:     now,
		EndTime:       now,
		AgentExitCode: -1,
		Error:         reason,
	}
	r.logger.Warn("test skipped",
		logging.StringField("test", def.Name),
		logging.StringField("reason", reason),
	)
	r.emit(monitor.EventSkipped, result, reason)
	r.runPostHooks(context.Background(), def, result)
	return result
}

func (r *DefaultRunner) fail(
	result *workflow.Result,
	status, format string,
	args ...any,
) {
	result.Status = status
	result.Error = fmt.Sprintf(format, args...)
}

// finish stamps timing, reports the outcome and runs post-hooks.
func (r *DefaultRunner) finish(
	ctx context.Context,
	def workflow.Definition,
	result *workflow.Result,
	log logging.Logger,
) {
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)

	fields := []logging.Field{
		logging.StringField("status", result.Status),
		logging.DurationField("duration_ms", result.Duration),
	}
	if result.Report != nil {
		fields = append(fields,
			logging.IntField("checks_passed", result.Report.Passed()),
			logging.IntField("checks_total", result.Report.Total()),
		)
	}
	switch result.Status {
	case workflow.StatusPassed:
		log.Info("test passed", fields...)
	case workflow.StatusFailed:
		log.Warn("test failed", fields...)
	default:
		log.Error("test "+result.Status,
			append(fields, logging.StringField("error", result.Error))...)
	}

	r.emit(terminalEvent(result.Status), result, result.Error)
	r.runPostHooks(ctx, def, result)
}

func (r *DefaultRunner) runPostHooks(
	ctx context.Context,
	def workflow.Definition,
	result *workflow.Result,
) {
	for _, hook := range r.postHooks {
		if err := hook(ctx, def, result); err != nil {
			r.logger.Warn("post-hook failed",
				logging.StringField("test", def.Name),
				logging.ErrorField(err),
			)
		}
	}
}

func (r *DefaultRunner) emit(
	t monitor.EventType,
	result *workflow.Result,
	message string,
) {
	if r.collector == nil {
		return
	}
	event := monitor.TestEvent{
		Type:     t,
		RunID:    result.RunID,
		Name:     result.Name,
		Category: result.Category,
		Sandbox:  result.Sandbox,
		Status:   result.Status,
		Message:  message,
		Duration: result.Duration,
	}
	if result.Report != nil {
		event.Passed = result.Report.Passed()
		event.Total = result.Report.Total()
	}
	r.collector.Emit(event)
}

func terminalEvent(status string) monitor.EventType {
	switch status {
	case workflow.StatusPassed:
		return monitor.EventCompleted
	case workflow.StatusFailed:
		return monitor.EventFailed
	case workflow.StatusTimedOut:
		return monitor.EventTimedOut
	case workflow.StatusSkipped:
		return monitor.EventSkipped
	}
	return monitor.EventError
}

func statusOf(passed bool) string {
	if passed {
		return workflow.StatusPassed
	}
	return workflow.StatusFailed
}

func isTimeout(err error) bool {
	return errors.Is(err, shell.ErrTimeout) ||
		errors.Is(err, context.DeadlineExceeded)
}
