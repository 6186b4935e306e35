package validators

import (
	"fmt"

	"digital.vasic.harness/pkg/assertion"
	"digital.vasic.harness/pkg/document"
	"digital.vasic.harness/pkg/validation"
)

// Severities is the closed vocabulary of finding severities.
var Severities = []any{"P0", "P1", "P2", "P3"}

// Verdicts is the closed vocabulary of review verdicts.
var Verdicts = []any{"PASS", "CONCERN", "BLOCKED"}

// checkFindings records one severity and one description check
// per finding, indexed so that failures can be located.
func checkFindings(r *validation.Report, findings []document.Node) {
	for i, f := range findings {
		if !f.IsMapping() {
			r.Add(
				fmt.Sprintf("finding[%d] is mapping", i),
				false, fmt.Sprintf("got %s", f.Kind()),
			)
			continue
		}

		// An absent severity reads as the empty string.
		sev, ok := f.Get("severity")
		if !ok {
			sev = document.NewString("")
		}
		validation.Assert(r, sev, assertion.Definition{
			Type: "in", Values: Severities,
		}, fmt.Sprintf("finding[%d] valid severity", i))

		issue, _ := f.Get("issue")
		desc, _ := f.Get("description")
		r.Add(
			fmt.Sprintf("finding[%d] has description", i),
			issue.Truthy() || desc.Truthy(),
			"missing both 'issue' and 'description'",
		)
	}
}
