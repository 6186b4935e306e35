// Command harness drives a coding agent through workflow tests and
// validates the artifacts it produces.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"digital.vasic.harness/internal/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cmd.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
