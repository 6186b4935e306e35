// Package shell runs external commands with a bounded lifetime
// and captures their output. It backs the project test command
// check, git plumbing during sandbox setup and agent invocation.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/mattn/go-shellwords"
)

// ErrTimeout is returned when a command outlives its timeout.
var ErrTimeout = errors.New("command timed out")

// Command describes a single process invocation.
type Command struct {
	// Argv is the program followed by its arguments.
	Argv []string

	// Dir is the working directory. Empty means the current
	// directory.
	Dir string

	// Env holds extra environment variables appended to the
	// current process environment.
	Env map[string]string

	// Timeout bounds the run. Zero means no timeout beyond the
	// caller's context.
	Timeout time.Duration

	// Stdin is connected to the process standard input when
	// non-nil.
	Stdin io.Reader
}

// Output is the captured result of a finished command.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Success reports whether the command exited with code 0.
func (o *Output) Success() bool { return o.ExitCode == 0 }

// LastLine returns the last non-empty line of stdout, falling
// back to stderr.
func (o *Output) LastLine() string {
	if line := lastNonEmpty(o.Stdout); line != "" {
		return line
	}
	return lastNonEmpty(o.Stderr)
}

// Run executes c. A non-zero exit is not an error: it is
// reported through Output.ExitCode. Launch failures and
// timeouts are returned as errors, alongside whatever output was
// captured before the process died.
func Run(ctx context.Context, c Command) (*Output, error) {
	if len(c.Argv) == 0 {
		return nil, errors.New("empty command")
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.Argv[0], c.Argv[1:]...)
	cmd.WaitDelay = 2 * time.Second
	cmd.Dir = c.Dir
	cmd.Stdin = c.Stdin

	if len(c.Env) > 0 {
		cmd.Env = os.Environ()
		keys := make([]string, 0, len(c.Env))
		for k := range c.Env {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			cmd.Env = append(
				cmd.Env, fmt.Sprintf("%s=%s", k, c.Env[k]),
			)
		}
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	out := &Output{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err == nil {
		return out, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		out.ExitCode = -1
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return out, fmt.Errorf("%w: %s", ErrTimeout, c.Argv[0])
		}
		return out, fmt.Errorf("run %s: %w", c.Argv[0], ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
		return out, nil
	}

	out.ExitCode = -1
	return out, fmt.Errorf("run %s: %w", c.Argv[0], err)
}

// Split parses a command line into argv using shell quoting
// rules. Environment variables are not expanded.
func Split(line string) ([]string, error) {
	argv, err := shellwords.Parse(line)
	if err != nil {
		return nil, fmt.Errorf("parse command %q: %w", line, err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("parse command %q: empty", line)
	}
	return argv, nil
}

// Expand splits a command template and substitutes {name}
// placeholders inside each argument. Substitution happens after
// splitting, so values containing spaces or quotes stay a single
// argument.
func Expand(template string, vars map[string]string) ([]string, error) {
	argv, err := Split(template)
	if err != nil {
		return nil, err
	}

	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	r := strings.NewReplacer(pairs...)

	for i, arg := range argv {
		argv[i] = r.Replace(arg)
	}
	return argv, nil
}

func lastNonEmpty(s string) string {
	lines := strings.Split(s, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
