package validators

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"digital.vasic.harness/pkg/sandbox"
	"digital.vasic.harness/pkg/validation"
)

// pmPatterns locate product artifacts written outside pm/.
var pmPatterns = []string{
	"*persona*", "*journey*", "*prioriti*", "*research*",
}

// PM validates the product artifacts of a PM workflow run.
func PM(
	_ context.Context,
	root string,
	_ []string,
	_ Options,
) *validation.Report {
	l := sandbox.NewLayout(root)
	pmDir := l.StatePath("pm")
	decisions := l.MemoryLog("decisions")

	return validation.NewPlan("pm").
		Gate(func(r *validation.Report) bool {
			return validation.IsDir(r, l.State(), sandbox.StateDir+"/ exists")
		}).
		Then(func(r *validation.Report) bool {
			prd, ok := validation.Found(r,
				"PRD artifact found",
				"no PRD file in "+sandbox.StateDir+"/ or designs/",
				validation.File(l.StatePath("prd.md")),
				validation.Dir(l.Designs(), "*prd*", "*PRD*", "*requirement*"),
			)
			if ok && strings.EqualFold(filepath.Ext(prd), ".md") {
				validation.MarkdownHeadings(r, prd, 1, "PRD has headings")
			}
			return ok
		}).
		Then(func(r *validation.Report) bool {
			if isDir(pmDir) {
				r.Add("pm/ directory exists", true, "")
				entries, _ := os.ReadDir(pmDir)
				r.Add("PM artifacts created", len(entries) > 0, "pm/ is empty")
				return len(entries) > 0
			}

			found := false
			for _, p := range pmPatterns {
				if len(validation.Glob(l.State(), "**/"+p)) > 0 {
					found = true
					r.Add(fmt.Sprintf("PM artifact (%s) found", p), true, "")
				}
			}
			if !found {
				r.Add("PM artifacts found", false,
					"no persona/journey/prioritization artifacts found")
			}
			return found
		}).
		Optional(validation.IfFile(decisions), func(r *validation.Report) bool {
			_, ok := validation.ValidDocument(r, decisions, "decisions.yml valid YAML")
			return ok
		}).
		Run()
}
