package validators

import (
	"context"
	"fmt"
	"path/filepath"

	"digital.vasic.harness/pkg/sandbox"
	"digital.vasic.harness/pkg/validation"
)

// Analyze validates the artifacts of a brownfield codebase
// analysis.
func Analyze(
	_ context.Context,
	root string,
	_ []string,
	_ Options,
) *validation.Report {
	l := sandbox.NewLayout(root)
	dir := l.Analysis()
	manifest := sandbox.Document(filepath.Join(dir, "manifest"))

	return validation.NewPlan("analyze").
		Gate(func(r *validation.Report) bool {
			return validation.IsDir(r, dir, "analysis/ exists")
		}).
		Then(func(r *validation.Report) bool {
			_, ok := validation.DocumentFields(r, manifest, nil, "analysis manifest")
			return ok
		}).
		Then(func(r *validation.Report) bool {
			var artifacts []string
			for _, m := range validation.Search(dir, "*.yml", "*.yaml", "*.md") {
				if m != manifest {
					artifacts = append(artifacts, m)
				}
			}
			ok := len(artifacts) > 0
			r.Add("analysis artifacts created", ok,
				fmt.Sprintf("found %d", len(artifacts)))
			return ok
		}).
		Then(func(r *validation.Report) bool {
			before := r.Failed()
			validation.AllDocumentsInDir(r, dir)
			return r.Failed() == before
		}).
		Run()
}
