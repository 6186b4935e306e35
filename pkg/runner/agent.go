package runner

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"digital.vasic.harness/pkg/logging"
	"digital.vasic.harness/pkg/shell"
)

// AgentRequest is one agent invocation inside a sandbox.
type AgentRequest struct {
	RunID    string
	Test     string
	Prompt   string
	MaxTurns int
	Dir      string
	Timeout  time.Duration
}

// AgentOutput is what the agent printed and how it exited.
type AgentOutput struct {
	Output   string
	ExitCode int
	Duration time.Duration
}

// Agent drives the coding agent under test. A timeout must be
// reported as an error wrapping shell.ErrTimeout, with whatever
// output was captured.
type Agent interface {
	Run(ctx context.Context, req AgentRequest) (*AgentOutput, error)
}

// CommandAgent runs the agent as an external process built from a
// shell-words template. {prompt}, {max_turns} and {dir} are
// substituted after splitting, so the prompt stays one argument.
type CommandAgent struct {
	Template string
	Env      map[string]string
	Logger   logging.Logger
}

// NewCommandAgent creates a CommandAgent. It fails early when the
// template cannot be split.
func NewCommandAgent(
	template string,
	env map[string]string,
	logger logging.Logger,
) (*CommandAgent, error) {
	if _, err := shell.Split(template); err != nil {
		return nil, fmt.Errorf("agent command: %w", err)
	}
	if logger == nil {
		logger = logging.NullLogger{}
	}
	return &CommandAgent{Template: template, Env: env, Logger: logger}, nil
}

// Run executes the agent in req.Dir.
func (a *CommandAgent) Run(
	ctx context.Context,
	req AgentRequest,
) (*AgentOutput, error) {
	argv, err := shell.Expand(a.Template, map[string]string{
		"prompt":    req.Prompt,
		"max_turns": strconv.Itoa(req.MaxTurns),
		"dir":       req.Dir,
	})
	if err != nil {
		return nil, fmt.Errorf("agent command: %w", err)
	}

	out, runErr := shell.Run(ctx, shell.Command{
		Argv:    argv,
		Dir:     req.Dir,
		Env:     a.Env,
		Timeout: req.Timeout,
	})
	if out == nil {
		return nil, runErr
	}

	combined := out.Stdout
	if strings.TrimSpace(out.Stderr) != "" {
		combined = strings.TrimRight(combined, "\n") + "\n" + out.Stderr
	}

	logger := a.Logger
	if logger == nil {
		logger = logging.NullLogger{}
	}
	logger.LogCommand(logging.CommandLog{
		RunID:      req.RunID,
		Test:       req.Test,
		Argv:       summarizeArgv(argv, req.Prompt),
		Dir:        req.Dir,
		ExitCode:   out.ExitCode,
		DurationMs: out.Duration.Milliseconds(),
		TimedOut:   runErr != nil && isTimeout(runErr),
		Output:     logging.Preview(combined),
	})

	return &AgentOutput{
		Output:   combined,
		ExitCode: out.ExitCode,
		Duration: out.Duration,
	}, runErr
}

// summarizeArgv replaces the prompt argument with a short marker
// so command logs stay readable.
func summarizeArgv(argv []string, prompt string) []string {
	out := make([]string, len(argv))
	for i, arg := range argv {
		if prompt != "" && strings.Contains(arg, prompt) {
			out[i] = strings.ReplaceAll(arg, prompt,
				fmt.Sprintf("<prompt %d bytes>", len(prompt)))
			continue
		}
		out[i] = arg
	}
	return out
}
