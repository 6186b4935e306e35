package sandbox

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"digital.vasic.harness/pkg/logging"
	"digital.vasic.harness/pkg/shell"
)

// DefaultGitTimeout bounds each git invocation during setup.
const DefaultGitTimeout = 30 * time.Second

// baselineCommit creates the empty first commit. The identity is
// passed inline so setup does not depend on host git config.
var baselineCommit = []string{
	"git",
	"-c", "user.name=harness",
	"-c", "user.email=harness@localhost",
	"commit", "--allow-empty", "-m", "initial",
}

// InitGit initialises a repository in dir with an empty baseline
// commit. It does nothing when dir already has a .git entry.
func InitGit(
	ctx context.Context,
	dir string,
	timeout time.Duration,
	logger logging.Logger,
) error {
	if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
		return nil
	}
	if timeout <= 0 {
		timeout = DefaultGitTimeout
	}
	if logger == nil {
		logger = logging.NullLogger{}
	}

	for _, argv := range [][]string{{"git", "init"}, baselineCommit} {
		if err := runLogged(ctx, logger, shell.Command{
			Argv:    argv,
			Dir:     dir,
			Timeout: timeout,
		}); err != nil {
			return fmt.Errorf("git setup in %s: %w", dir, err)
		}
	}
	return nil
}

// runLogged runs c, records it with logger and converts a
// non-zero exit into an error carrying the last output line.
func runLogged(
	ctx context.Context, logger logging.Logger, c shell.Command,
) error {
	out, err := shell.Run(ctx, c)

	entry := logging.CommandLog{
		Timestamp: time.Now().Format(time.RFC3339Nano),
		Argv:      c.Argv,
		Dir:       c.Dir,
		ExitCode:  -1,
		TimedOut:  errors.Is(err, shell.ErrTimeout),
	}
	if out != nil {
		entry.ExitCode = out.ExitCode
		entry.DurationMs = out.Duration.Milliseconds()
		entry.Output = logging.Preview(out.Stdout + out.Stderr)
	}
	logger.LogCommand(entry)

	if err != nil {
		return err
	}
	if !out.Success() {
		detail := out.LastLine()
		if detail == "" {
			detail = fmt.Sprintf("exit code %d", out.ExitCode)
		}
		return fmt.Errorf("%s: %s", c.Argv[0], detail)
	}
	return nil
}
