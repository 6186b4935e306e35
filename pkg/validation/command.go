package validation

import (
	"context"
	"fmt"
	"time"

	"digital.vasic.harness/pkg/shell"
)

// Command runs argv in dir bounded by timeout and records one
// check named name. A non-zero exit fails with the last
// non-empty output line as detail; a timeout or launch failure
// fails with "command error: <err>". It never returns an error.
func Command(
	ctx context.Context,
	r *Report,
	name, dir string,
	timeout time.Duration,
	argv []string,
) bool {
	out, err := shell.Run(ctx, shell.Command{
		Argv:    argv,
		Dir:     dir,
		Timeout: timeout,
	})
	if err != nil {
		r.Add(name, false, fmt.Sprintf("command error: %v", err))
		return false
	}

	if out.Success() {
		r.Add(name, true, "")
		return true
	}

	detail := out.LastLine()
	if detail == "" {
		detail = fmt.Sprintf("exit code %d", out.ExitCode)
	}
	r.Add(name, false, detail)
	return false
}
