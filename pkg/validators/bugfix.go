package validators

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"digital.vasic.harness/pkg/sandbox"
	"digital.vasic.harness/pkg/validation"
)

// zeroDivisionHints are source fragments that show the divide
// function now guards against a zero divisor.
var zeroDivisionHints = []string{
	"valueerror", "zero", "if b == 0", "if not b", "b == 0",
}

// Bugfix validates that the seeded divide-by-zero bug was fixed
// and the project's own tests pass.
func Bugfix(
	ctx context.Context,
	root string,
	_ []string,
	opts Options,
) *validation.Report {
	l := sandbox.NewLayout(root)
	srcPath := filepath.Join(root, "src", "calculator.py")
	testPath := filepath.Join(root, "tests", "test_calculator.py")

	return validation.NewPlan("bugfix").
		Then(func(r *validation.Report) bool {
			if !validation.IsFile(r, srcPath, "calculator.py exists") {
				return false
			}
			src, err := os.ReadFile(srcPath)
			content := strings.ToLower(string(src))
			ok := err == nil && containsAny(content, zeroDivisionHints)
			r.Add("fix addresses zero division", ok,
				"no zero-division handling found in source")
			return ok
		}).
		Then(func(r *validation.Report) bool {
			return validation.IsFile(r, testPath, "test file exists")
		}).
		Then(func(r *validation.Report) bool {
			return validation.Command(ctx, r, "tests pass after fix",
				root, opts.TestTimeout, opts.TestCommand)
		}).
		Optional(validation.IfDir(l.State()), func(r *validation.Report) bool {
			ok := len(l.StoryFiles()) > 0 || isFile(l.MemoryLog("lessons"))
			r.Add("bugfix story or artifact created", ok,
				"no stories or memory updates found")
			return ok
		}).
		Run()
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
