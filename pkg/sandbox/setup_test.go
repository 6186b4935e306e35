package sandbox

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.harness/pkg/document"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

func fieldOf(t *testing.T, path, field string) string {
	t.Helper()
	v, ok := document.Resolve(parse(t, path), field)
	require.True(t, ok, "missing %s in %s", field, path)
	return v.String()
}

func TestInitGit_ExistingRepoUntouched(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0755))

	rec := &commandRecorder{}
	require.NoError(t, InitGit(context.Background(), dir, 0, rec))
	assert.Empty(t, rec.argv)
}

func TestInitGit_CreatesBaseline(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()

	rec := &commandRecorder{}
	require.NoError(t, InitGit(context.Background(), dir, 0, rec))

	assert.DirExists(t, filepath.Join(dir, ".git"))
	require.Len(t, rec.argv, 2)
	assert.Equal(t, []string{"git", "init"}, rec.argv[0])
	assert.Contains(t, strings.Join(rec.argv[1], " "), "commit --allow-empty -m initial")

	out, err := exec.Command("git", "-C", dir, "log", "--oneline").Output()
	require.NoError(t, err)
	assert.Contains(t, string(out), "initial")
}

func TestBuilder_Greenfield(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()

	b := NewBuilder(Options{})
	require.NoError(t, b.Greenfield(context.Background(), dir))
	// Idempotent.
	require.NoError(t, b.Greenfield(context.Background(), dir))

	l := NewLayout(dir)
	assert.Equal(t, "TestProject", fieldOf(t, l.Settings(), "project.name"))
	assert.Equal(t, "greenfield", fieldOf(t, l.Settings(), "project.type"))
	assert.Equal(t, "80", fieldOf(t, l.Settings(), "quality.coverage_threshold"))
	assert.FileExists(t, l.StatePath("prd.md"))
	assert.FileExists(t, l.StatePath("architecture.md"))

	data, err := os.ReadFile(l.Instructions())
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), overridesMarker))
}

func TestBuilder_Brownfield(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()

	require.NoError(t, NewBuilder(Options{}).Brownfield(context.Background(), dir))

	l := NewLayout(dir)
	assert.FileExists(t, filepath.Join(dir, "src", "app.py"))
	assert.FileExists(t, filepath.Join(dir, "tests", "test_app.py"))
	assert.Equal(t, "BrownfieldTest", fieldOf(t, l.Settings(), "project.name"))
	assert.Equal(t, "brownfield", fieldOf(t, l.Settings(), "project.type"))
	assert.NoFileExists(t, l.StatePath("prd.md"))
}

func TestBuilder_Bugfix(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()

	require.NoError(t, NewBuilder(Options{}).Bugfix(context.Background(), dir))

	src, err := os.ReadFile(filepath.Join(dir, "src", "calculator.py"))
	require.NoError(t, err)
	assert.Contains(t, string(src), "return a / b")
	for _, hint := range []string{"valueerror", "zero", "b == 0", "if not b"} {
		assert.NotContains(t, strings.ToLower(string(src)), hint)
	}
	assert.FileExists(t, filepath.Join(dir, "tests", "test_calculator.py"))
	assert.Equal(t, "TestProject", fieldOf(t, NewLayout(dir).Settings(), "project.name"))
}

func TestBuilder_CustomDirsWithMissingFixtures(t *testing.T) {
	requireGit(t)
	templates := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(templates, InstructionsFile), []byte("# custom\n"), 0644))

	dir := t.TempDir()
	b := NewBuilder(Options{TemplatesDir: templates, FixturesDir: t.TempDir()})

	require.NoError(t, b.Brownfield(context.Background(), dir))

	l := NewLayout(dir)
	assert.NoFileExists(t, l.Settings())
	assert.NoFileExists(t, filepath.Join(dir, "src", "app.py"))
	assert.FileExists(t, l.Instructions())
}

func TestBuilder_Procedures(t *testing.T) {
	b := NewBuilder(Options{})
	assert.Equal(t, []string{"brownfield", "bugfix", "greenfield"}, b.ProcedureNames())
	assert.Len(t, b.Procedures(), 3)
}

func TestCopyOptional(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.md")
	fsys := fstest.MapFS{"a.md": {Data: []byte("a")}}

	ok, err := copyOptional(fsys, "a.md", dst)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.FileExists(t, dst)

	ok, err = copyOptional(fsys, "missing.md", dst)
	require.NoError(t, err)
	assert.False(t, ok)
}
