package validators

import (
	"context"
	"fmt"
	"path/filepath"

	"digital.vasic.harness/pkg/sandbox"
	"digital.vasic.harness/pkg/validation"
)

// Dev validates that a story was implemented: its records exist,
// the handoff reached a phase and the project tests pass.
func Dev(
	ctx context.Context,
	root string,
	args []string,
	opts Options,
) *validation.Report {
	l := sandbox.NewLayout(root)
	storyID := resolveStory(l, args[0])

	return validation.NewPlan(fmt.Sprintf("dev (%s)", storyID)).
		Gate(func(r *validation.Report) bool {
			return validation.IsDir(r, l.State(), sandbox.StateDir+"/ exists")
		}).
		Gate(func(r *validation.Report) bool {
			_, ok := validation.DocumentFields(
				r, l.StoryFile(storyID), []string{"id", "title"}, storyID,
			)
			return ok
		}).
		Then(func(r *validation.Report) bool {
			handoff, ok := validation.DocumentFields(
				r, l.Handoff(storyID), nil, "handoff.yml",
			)
			if !ok {
				return false
			}
			return validation.FieldNonEmpty(r, handoff, "phase",
				"handoff phase recorded")
		}).
		Then(func(r *validation.Report) bool {
			return validation.IsDir(r, filepath.Join(root, "tests"), "tests/ exists")
		}).
		Then(func(r *validation.Report) bool {
			return validation.Command(ctx, r, "tests pass",
				root, opts.TestTimeout, opts.TestCommand)
		}).
		Run()
}
