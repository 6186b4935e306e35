// Package sandbox builds and describes the disposable project
// directories tests run in.
package sandbox

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"digital.vasic.harness/pkg/document"
	"digital.vasic.harness/pkg/logging"
	"digital.vasic.harness/pkg/workflow"
)

// Names of the built-in setup procedures.
const (
	SetupGreenfield = "greenfield"
	SetupBrownfield = "brownfield"
	SetupBugfix     = "bugfix"
)

// Options configures the setup procedures.
type Options struct {
	// TemplatesDir overrides the built-in templates.
	TemplatesDir string

	// FixturesDir overrides the built-in fixtures. It must hold
	// greenfield/ and brownfield/sample-project/.
	FixturesDir string

	// GitTimeout bounds each git invocation.
	GitTimeout time.Duration

	Logger logging.Logger
}

// Builder runs setup procedures against sandbox directories. It
// holds no per-sandbox state and is safe for concurrent use.
type Builder struct {
	templates  fs.FS
	fixtures   fs.FS
	gitTimeout time.Duration
	logger     logging.Logger
}

// NewBuilder creates a Builder from opts.
func NewBuilder(opts Options) *Builder {
	b := &Builder{
		templates:  DefaultTemplates(),
		fixtures:   DefaultFixtures(),
		gitTimeout: opts.GitTimeout,
		logger:     opts.Logger,
	}
	if opts.TemplatesDir != "" {
		b.templates = os.DirFS(opts.TemplatesDir)
	}
	if opts.FixturesDir != "" {
		b.fixtures = os.DirFS(opts.FixturesDir)
	}
	if b.gitTimeout <= 0 {
		b.gitTimeout = DefaultGitTimeout
	}
	if b.logger == nil {
		b.logger = logging.NullLogger{}
	}
	return b
}

// ProjectSettings returns the settings override applied by the
// greenfield and brownfield procedures.
func ProjectSettings(name, projectType string) document.Node {
	str := document.NewString
	return document.NewMapping(document.Entry{
		Key: "project",
		Value: document.NewMapping(
			document.Entry{Key: "name", Value: str(name)},
			document.Entry{Key: "type", Value: str(projectType)},
			document.Entry{Key: "language", Value: str("python")},
			document.Entry{Key: "architecture", Value: str("layered")},
			document.Entry{Key: "test_framework", Value: str("pytest")},
			document.Entry{Key: "coverage_tool", Value: str("coverage")},
			document.Entry{Key: "package_manager", Value: str("pip")},
		),
	})
}

// Procedures returns the built-in setup procedures by name.
func (b *Builder) Procedures() map[string]workflow.SetupFunc {
	return map[string]workflow.SetupFunc{
		SetupGreenfield: b.Greenfield,
		SetupBrownfield: b.Brownfield,
		SetupBugfix:     b.Bugfix,
	}
}

// ProcedureNames returns the sorted names of Procedures.
func (b *Builder) ProcedureNames() []string {
	names := make([]string, 0, 3)
	for name := range b.Procedures() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Greenfield prepares an empty project: git, templates with the
// TestProject settings, the PRD and architecture documents in the
// state directory, and the testing overrides.
func (b *Builder) Greenfield(ctx context.Context, dir string) error {
	log := b.logger.WithFields(
		logging.StringField("setup", SetupGreenfield),
		logging.StringField("dir", dir),
	)

	if err := InitGit(ctx, dir, b.gitTimeout, log); err != nil {
		return err
	}
	if err := MaterializeTemplates(
		b.templates, dir, ProjectSettings("TestProject", "greenfield"),
	); err != nil {
		return err
	}

	state := NewLayout(dir).State()
	for _, name := range []string{"prd.md", "architecture.md"} {
		copied, err := copyOptional(b.fixtures, "greenfield/"+name, filepath.Join(state, name))
		if err != nil {
			return fmt.Errorf("greenfield fixture %s: %w", name, err)
		}
		if !copied {
			log.Warn("fixture missing", logging.StringField("fixture", name))
		}
	}

	return b.finish(log, dir)
}

// Brownfield prepares an existing codebase: git, the sample
// project copied into the root, templates with the
// BrownfieldTest settings, and the testing overrides.
func (b *Builder) Brownfield(ctx context.Context, dir string) error {
	log := b.logger.WithFields(
		logging.StringField("setup", SetupBrownfield),
		logging.StringField("dir", dir),
	)

	if err := InitGit(ctx, dir, b.gitTimeout, log); err != nil {
		return err
	}

	project, err := fs.Sub(b.fixtures, "brownfield/sample-project")
	if err != nil {
		return fmt.Errorf("sample project: %w", err)
	}
	if _, err := fs.Stat(project, "."); err != nil {
		log.Warn("sample project missing")
	} else if err := CopyTree(project, dir); err != nil {
		return fmt.Errorf("copy sample project: %w", err)
	}

	if err := MaterializeTemplates(
		b.templates, dir, ProjectSettings("BrownfieldTest", "brownfield"),
	); err != nil {
		return err
	}

	return b.finish(log, dir)
}

// Bugfix prepares a greenfield project seeded with a calculator
// whose divide function fails on a zero divisor, plus a test
// that expects ValueError.
func (b *Builder) Bugfix(ctx context.Context, dir string) error {
	if err := b.Greenfield(ctx, dir); err != nil {
		return err
	}
	for rel, content := range bugfixFiles {
		if err := writeFile(filepath.Join(dir, rel), []byte(content), 0644); err != nil {
			return fmt.Errorf("bugfix seed %s: %w", rel, err)
		}
	}
	b.logger.Debug("seeded bugfix project", logging.StringField("dir", dir))
	return nil
}

var bugfixFiles = map[string]string{
	filepath.Join("src", "calculator.py"): `def divide(a, b):
    return a / b  # BUG: divisor is never checked
`,
	filepath.Join("tests", "test_calculator.py"): `from src.calculator import divide


def test_divide():
    assert divide(10, 2) == 5


def test_divide_by_nothing():
    try:
        divide(1, 0)
        assert False, "should raise"
    except ValueError:
        pass
`,
}

func (b *Builder) finish(log logging.Logger, dir string) error {
	appended, err := AppendOverrides(NewLayout(dir).Instructions())
	if err != nil {
		return err
	}
	if !appended {
		log.Warn("instructions file missing, overrides not applied")
	}
	log.Info("sandbox ready")
	return nil
}

func copyOptional(fsys fs.FS, name, dst string) (bool, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, writeFile(dst, data, 0644)
}
