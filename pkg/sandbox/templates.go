package sandbox

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"digital.vasic.harness/pkg/document"
)

//go:embed templates fixtures
var embedded embed.FS

// DefaultTemplates returns the built-in template set.
func DefaultTemplates() fs.FS {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// DefaultFixtures returns the built-in fixture trees.
func DefaultFixtures() fs.FS {
	sub, err := fs.Sub(embedded, "fixtures")
	if err != nil {
		panic(err)
	}
	return sub
}

// TemplateFile maps a template name to its destination relative
// to the sandbox root.
type TemplateFile struct {
	Name string
	Dest string
}

// TemplateFiles is the fixed set of templates materialised into
// every sandbox, in copy order.
var TemplateFiles = []TemplateFile{
	{"settings.yml", filepath.Join(StateDir, "settings.yml")},
	{"sprints.yml", filepath.Join(StateDir, "sprints.yml")},
	{"decisions.yml", filepath.Join(StateDir, "memory", "decisions.yml")},
	{"lessons.yml", filepath.Join(StateDir, "memory", "lessons.yml")},
	{"analysis-manifest.yml", filepath.Join(StateDir, "analysis", "manifest.yml")},
	{"state-" + InstructionsFile, filepath.Join(StateDir, InstructionsFile)},
	{InstructionsFile, InstructionsFile},
}

// stateSubdirs are created empty when missing.
var stateSubdirs = []string{"stories", "designs"}

// MaterializeTemplates copies the template set from templates
// into dir, skipping templates that do not exist, creates the
// empty state subdirectories and deep-merges settings onto the
// copied settings document. A null settings node leaves the
// template untouched.
func MaterializeTemplates(
	templates fs.FS,
	dir string,
	settings document.Node,
) error {
	layout := NewLayout(dir)
	if err := os.MkdirAll(layout.State(), 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	for _, t := range TemplateFiles {
		data, err := fs.ReadFile(templates, t.Name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("read template %s: %w", t.Name, err)
		}
		if err := writeFile(filepath.Join(dir, t.Dest), data, 0644); err != nil {
			return fmt.Errorf("write template %s: %w", t.Name, err)
		}
	}

	for _, sub := range stateSubdirs {
		if err := os.MkdirAll(layout.StatePath(sub), 0755); err != nil {
			return fmt.Errorf("create %s: %w", sub, err)
		}
	}

	if settings.Truthy() {
		return MergeSettings(filepath.Join(dir, TemplateFiles[0].Dest), settings)
	}
	return nil
}

// MergeSettings deep-merges overrides onto the YAML document at
// path and writes it back, keeping the original key order. An
// empty document is treated as an empty mapping. It does nothing
// when path does not exist.
func MergeSettings(path string, overrides document.Node) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}

	base, err := document.Parse(data, document.FormatYAML)
	if err != nil {
		return fmt.Errorf("settings %s: %w", path, err)
	}
	if !base.Truthy() {
		base = document.NewMapping()
	}

	out, err := document.MarshalYAML(document.Merge(base, overrides))
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0644)
}

func writeFile(path string, data []byte, perm fs.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, perm)
}
