package validators

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"digital.vasic.harness/pkg/sandbox"
	"digital.vasic.harness/pkg/validation"
)

// HotfixFlag switches the tpm validator to hotfix mode.
const HotfixFlag = "--hotfix"

// TPM validates the stories and sprint plan of a planning run.
// In hotfix mode exactly one story is expected and no sprint
// plan is required.
func TPM(
	_ context.Context,
	root string,
	args []string,
	_ Options,
) *validation.Report {
	l := sandbox.NewLayout(root)
	hotfix := len(args) > 0 && args[0] == HotfixFlag

	workflow := "tpm"
	if hotfix {
		workflow = "tpm (hotfix)"
	}

	var stories []string

	return validation.NewPlan(workflow).
		Gate(func(r *validation.Report) bool {
			return validation.IsDir(r, l.State(), sandbox.StateDir+"/ exists")
		}).
		Gate(func(r *validation.Report) bool {
			stories = l.StoryFiles()
			r.Add("stories created", len(stories) > 0,
				"no ST-* stories in "+l.Stories())
			return len(stories) > 0
		}).
		Then(func(r *validation.Report) bool {
			ok := true
			for _, path := range stories {
				label := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
				if _, valid := validation.DocumentFields(
					r, path, []string{"id", "title"}, label,
				); !valid {
					ok = false
				}
			}
			return ok
		}).
		Optional(func() bool { return hotfix }, func(r *validation.Report) bool {
			ok := len(stories) == 1
			r.Add("hotfix produced a single story", ok,
				fmt.Sprintf("found %d stories", len(stories)))
			return ok
		}).
		Optional(func() bool { return !hotfix }, func(r *validation.Report) bool {
			plan, ok := validation.DocumentFields(
				r, l.Sprints(), []string{"sprints"}, "sprints.yml",
			)
			if !ok {
				return false
			}
			return validation.ListMinLength(r, plan, "sprints", 1,
				"sprints.yml has sprints")
		}).
		Run()
}
