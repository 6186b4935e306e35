package validators

import (
	"context"
	"fmt"
	"path/filepath"

	"digital.vasic.harness/pkg/document"
	"digital.vasic.harness/pkg/sandbox"
	"digital.vasic.harness/pkg/validation"
)

// AdversarialReview validates the state left by an adversarial
// review of story args[0].
func AdversarialReview(
	_ context.Context,
	root string,
	args []string,
	_ Options,
) *validation.Report {
	l := sandbox.NewLayout(root)
	storyID := args[0]
	storyDir := l.StoryDir(storyID)
	handoffPath := l.Handoff(storyID)
	principlesPath := l.MemoryLog("principles")
	settingsPath := l.Settings()

	var handoff document.Node

	return validation.NewPlan(fmt.Sprintf("adversarial-review (%s)", storyID)).
		Gate(func(r *validation.Report) bool {
			return validation.IsFile(r, handoffPath, "handoff.yml exists")
		}).
		Gate(func(r *validation.Report) bool {
			var ok bool
			handoff, ok = validation.ValidDocument(r, handoffPath, "handoff.yml valid YAML")
			return ok && handoff.Truthy()
		}).
		Then(func(r *validation.Report) bool {
			_, ok := validation.Found(r,
				"observations file exists", "no .observations.yml in story dir",
				validation.Dir(storyDir, ".observations.*"))
			return ok
		}).
		Then(func(r *validation.Report) bool {
			_, ok := validation.Found(r,
				"briefing file generated", "no .briefing.yml in story dir",
				validation.Dir(storyDir, ".briefing.*"))
			return ok
		}).
		Then(func(r *validation.Report) bool {
			// evidence only; absence is not a failure
			if len(validation.Search(storyDir, "*adversar*", "*review*")) > 0 {
				r.Add("adversarial review artifact created", true, "")
			}
			return true
		}).
		Then(func(r *validation.Report) bool {
			files := validation.Search(root,
				"**/*adversarial*test*", "**/*test*adversarial*")
			ok := len(files) > 0 ||
				isDir(filepath.Join(root, "tests", "adversarial"))
			r.Add("adversarial tests generated", ok,
				"no adversarial test files found")
			return ok
		}).
		Then(func(r *validation.Report) bool {
			ok := handoff.Has("quality_findings")
			r.Add("quality_findings field present", ok,
				"no quality_findings field")

			findings, _ := handoff.Get("quality_findings")
			if findings.IsSequence() && findings.Len() > 0 {
				r.Add(fmt.Sprintf(
					"adversarial review produced %d finding(s)", findings.Len(),
				), true, "")
				checkFindings(r, findings.Items())
			}
			return ok
		}).
		Then(func(r *validation.Report) bool {
			if !validation.IsFile(r, principlesPath, "principles.yml exists") {
				return false
			}
			doc, ok := validation.ValidDocument(r, principlesPath,
				"principles.yml valid YAML")
			if !ok || !doc.Truthy() {
				return false
			}
			entries, _ := doc.Get("principles")
			n := 0
			if entries.IsSequence() {
				n = entries.Len()
			}
			r.Add("principles.yml has entries", n > 0,
				fmt.Sprintf("found %d entries", n))
			return n > 0
		}).
		Optional(validation.IfFile(settingsPath), func(r *validation.Report) bool {
			settings, err := document.ParseFile(settingsPath)
			if err != nil || !settings.Truthy() {
				return true
			}
			ok := settings.Has("adversarial_review")
			r.Add("settings has adversarial_review section", ok,
				"missing adversarial_review in settings.yml")
			return ok
		}).
		Run()
}
