package workflow

import (
	"time"

	"digital.vasic.harness/pkg/validation"
)

// Status constants for test outcomes.
const (
	StatusPending  = "pending"
	StatusRunning  = "running"
	StatusPassed   = "passed"
	StatusFailed   = "failed"
	StatusSkipped  = "skipped"
	StatusTimedOut = "timed_out"
	StatusError    = "error"
)

// Result captures the outcome of one test run.
type Result struct {
	RunID    string `json:"run_id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Status   string `json:"status"`

	// Sandbox is the directory the test ran in.
	Sandbox string `json:"sandbox"`

	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`

	// AgentExitCode is -1 when the agent never ran.
	AgentExitCode int `json:"agent_exit_code"`

	// Verdict is the last VERDICT line printed by the agent, if
	// any.
	Verdict string `json:"verdict,omitempty"`

	// Report holds the validator's checks followed by any extra
	// document checks. Nil when nothing was validated.
	Report *validation.Report `json:"report,omitempty"`

	// Transcript is the file holding the agent's output, when
	// the runner keeps one.
	Transcript string `json:"transcript,omitempty"`

	Error string `json:"error,omitempty"`
}

// Passed returns true when the run ended in StatusPassed.
func (r *Result) Passed() bool {
	return r.Status == StatusPassed
}

// IsFinal returns true if the status is a terminal state.
func (r *Result) IsFinal() bool {
	switch r.Status {
	case StatusPassed, StatusFailed, StatusSkipped,
		StatusTimedOut, StatusError:
		return true
	}
	return false
}
