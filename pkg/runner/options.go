package runner

import (
	"digital.vasic.harness/pkg/logging"
	"digital.vasic.harness/pkg/monitor"
	"digital.vasic.harness/pkg/registry"
	"digital.vasic.harness/pkg/validators"
)

// RunnerOption configures a DefaultRunner.
type RunnerOption func(*DefaultRunner)

// WithRegistry sets the definition registry used by the runner.
func WithRegistry(reg registry.Registry) RunnerOption {
	return func(r *DefaultRunner) {
		r.registry = reg
	}
}

// WithLogger sets the logger used by the runner.
func WithLogger(logger logging.Logger) RunnerOption {
	return func(r *DefaultRunner) {
		r.logger = logger
	}
}

// WithAgent sets the agent under test.
func WithAgent(agent Agent) RunnerOption {
	return func(r *DefaultRunner) {
		r.agent = agent
	}
}

// WithValidators sets the validator catalogue.
func WithValidators(c *validators.Catalogue) RunnerOption {
	return func(r *DefaultRunner) {
		r.validators = c
	}
}

// WithCollector sets the event collector that receives lifecycle
// events.
func WithCollector(c *monitor.EventCollector) RunnerOption {
	return func(r *DefaultRunner) {
		r.collector = c
	}
}

// WithWorkDir sets the parent directory of sandboxes.
func WithWorkDir(dir string) RunnerOption {
	return func(r *DefaultRunner) {
		r.workDir = dir
	}
}

// WithResultsDir sets the base directory where agent
// transcripts are written. Empty disables transcripts.
func WithResultsDir(dir string) RunnerOption {
	return func(r *DefaultRunner) {
		r.resultsDir = dir
	}
}

// WithExecutable sets the command name used in prompts to invoke
// validators.
func WithExecutable(name string) RunnerOption {
	return func(r *DefaultRunner) {
		r.executable = name
	}
}

// WithConcurrency bounds how many chains RunAll runs at once.
func WithConcurrency(n int) RunnerOption {
	return func(r *DefaultRunner) {
		r.concurrency = n
	}
}

// WithCleanup removes sandboxes whose tests all passed.
func WithCleanup(enabled bool) RunnerOption {
	return func(r *DefaultRunner) {
		r.cleanup = enabled
	}
}

// WithRunID fixes the run ID instead of generating one.
func WithRunID(id string) RunnerOption {
	return func(r *DefaultRunner) {
		r.runID = id
	}
}

// WithPreHook adds a hook invoked after the sandbox is
// allocated and before setup.
func WithPreHook(h Hook) RunnerOption {
	return func(r *DefaultRunner) {
		r.preHooks = append(r.preHooks, h)
	}
}

// WithPostHook adds a hook invoked with every final result.
func WithPostHook(h Hook) RunnerOption {
	return func(r *DefaultRunner) {
		r.postHooks = append(r.postHooks, h)
	}
}
