package validators

import (
	"context"
	"fmt"

	"digital.vasic.harness/pkg/document"
	"digital.vasic.harness/pkg/sandbox"
	"digital.vasic.harness/pkg/validation"
)

// Review validates the findings and verdict a code review
// recorded in the story handoff.
func Review(
	_ context.Context,
	root string,
	args []string,
	_ Options,
) *validation.Report {
	l := sandbox.NewLayout(root)
	storyID := resolveStory(l, args[0])
	handoffPath := l.Handoff(storyID)
	lessons := l.MemoryLog("lessons")

	var handoff document.Node
	verdictPath := func() string {
		for _, p := range []string{"review.verdict", "verdict"} {
			if _, ok := document.Resolve(handoff, p); ok {
				return p
			}
		}
		return ""
	}

	return validation.NewPlan(fmt.Sprintf("review (%s)", storyID)).
		Gate(func(r *validation.Report) bool {
			return validation.IsFile(r, handoffPath, "handoff.yml exists")
		}).
		Gate(func(r *validation.Report) bool {
			var ok bool
			handoff, ok = validation.ValidDocument(r, handoffPath, "handoff.yml valid YAML")
			return ok && handoff.Truthy()
		}).
		Then(func(r *validation.Report) bool {
			if !validation.FieldExists(r, handoff, "quality_findings",
				"quality_findings field present") {
				return false
			}
			findings, _ := handoff.Get("quality_findings")
			if findings.IsSequence() {
				checkFindings(r, findings.Items())
			}
			return true
		}).
		Optional(func() bool { return verdictPath() != "" }, func(r *validation.Report) bool {
			return validation.FieldIn(r, handoff, verdictPath(), Verdicts,
				"review verdict valid")
		}).
		Optional(validation.IfFile(lessons), func(r *validation.Report) bool {
			_, ok := validation.ValidDocument(r, lessons, "lessons.yml valid YAML")
			return ok
		}).
		Run()
}
