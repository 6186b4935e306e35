package validators

import (
	"context"
	"fmt"

	"digital.vasic.harness/pkg/sandbox"
	"digital.vasic.harness/pkg/validation"
)

// Init validates a freshly initialised state directory against
// the expected project name, type and language.
func Init(
	_ context.Context,
	root string,
	args []string,
	_ Options,
) *validation.Report {
	l := sandbox.NewLayout(root)
	name, kind, language := args[0], args[1], args[2]
	expected := []struct {
		path  string
		value string
	}{
		{"project.name", name},
		{"project.type", kind},
		{"project.language", language},
	}
	required := make([]string, len(expected))
	for i, e := range expected {
		required[i] = e.path
	}

	return validation.NewPlan(fmt.Sprintf("init (%s)", name)).
		Gate(func(r *validation.Report) bool {
			return validation.IsDir(r, l.State(), sandbox.StateDir+"/ exists")
		}).
		Then(func(r *validation.Report) bool {
			settings, ok := validation.DocumentFields(
				r, l.Settings(), required, "settings.yml",
			)
			if !ok {
				return false
			}
			for _, e := range expected {
				if !validation.FieldEquals(r, settings, e.path, e.value, "") {
					ok = false
				}
			}
			return ok
		}).
		Then(func(r *validation.Report) bool {
			a := validation.IsDir(r, l.Stories(), "stories/ exists")
			b := validation.IsDir(r, l.Designs(), "designs/ exists")
			return a && b
		}).
		Optional(validation.IfFile(l.Sprints()), func(r *validation.Report) bool {
			_, ok := validation.ValidDocument(r, l.Sprints(), "sprints.yml valid YAML")
			return ok
		}).
		Optional(validation.IfDir(l.Memory()), func(r *validation.Report) bool {
			before := r.Failed()
			validation.AllDocumentsInDir(r, l.Memory())
			return r.Failed() == before
		}).
		Run()
}
