package sandbox

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.harness/pkg/document"
)

func parse(t *testing.T, path string) document.Node {
	t.Helper()
	n, err := document.ParseFile(path)
	require.NoError(t, err)
	return n
}

func TestMaterializeTemplates_Defaults(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, MaterializeTemplates(DefaultTemplates(), dir, document.NewNull()))

	for _, tf := range TemplateFiles {
		assert.FileExists(t, filepath.Join(dir, tf.Dest), tf.Name)
	}
	l := NewLayout(dir)
	assert.DirExists(t, l.Stories())
	assert.DirExists(t, l.Designs())

	settings := parse(t, l.Settings())
	name, ok := document.Resolve(settings, "project.name")
	require.True(t, ok)
	assert.Equal(t, "", name.String())
}

func TestMaterializeTemplates_MissingTemplatesSkipped(t *testing.T) {
	dir := t.TempDir()
	templates := fstest.MapFS{
		"sprints.yml": {Data: []byte("sprints: []\n")},
	}

	require.NoError(t, MaterializeTemplates(templates, dir, ProjectSettings("X", "greenfield")))

	l := NewLayout(dir)
	assert.FileExists(t, l.Sprints())
	assert.NoFileExists(t, l.Settings())
	assert.NoFileExists(t, l.Instructions())
	assert.DirExists(t, l.Stories())
}

// Overriding one nested leaf replaces only that leaf; its siblings survive.
func TestMaterializeTemplates_DeepMergesSettings(t *testing.T) {
	dir := t.TempDir()
	templates := fstest.MapFS{
		"settings.yml": {Data: []byte("project:\n  name: Y\n  type: Z\nquality:\n  coverage_threshold: 80\n")},
	}
	override := document.NewMapping(document.Entry{
		Key: "project",
		Value: document.NewMapping(
			document.Entry{Key: "name", Value: document.NewString("X")},
		),
	})

	require.NoError(t, MaterializeTemplates(templates, dir, override))

	data, err := os.ReadFile(NewLayout(dir).Settings())
	require.NoError(t, err)
	assert.Equal(t,
		"project:\n  name: X\n  type: Z\nquality:\n  coverage_threshold: 80\n",
		string(data),
	)
}

func TestMergeSettings(t *testing.T) {
	t.Run("missing file is ignored", func(t *testing.T) {
		err := MergeSettings(filepath.Join(t.TempDir(), "nope.yml"), ProjectSettings("X", "y"))
		assert.NoError(t, err)
	})

	t.Run("empty document becomes mapping", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "settings.yml")
		require.NoError(t, os.WriteFile(path, nil, 0644))

		require.NoError(t, MergeSettings(path, ProjectSettings("TestProject", "greenfield")))

		n := parse(t, path)
		v, ok := document.Resolve(n, "project.package_manager")
		require.True(t, ok)
		assert.Equal(t, "pip", v.String())
		assert.Equal(t, []string{"project"}, n.Keys())
	})

	t.Run("mapping replaced by scalar", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "settings.yml")
		require.NoError(t, os.WriteFile(path, []byte("project:\n  name: Y\n"), 0644))

		override := document.NewMapping(document.Entry{Key: "project", Value: document.NewString("flat")})
		require.NoError(t, MergeSettings(path, override))

		v, ok := document.Resolve(parse(t, path), "project")
		require.True(t, ok)
		assert.Equal(t, "flat", v.String())
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "settings.yml")
		require.NoError(t, os.WriteFile(path, []byte("project: [unclosed\n"), 0644))

		err := MergeSettings(path, ProjectSettings("X", "y"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "YAML parse error")
	})
}

func TestProjectSettings_KeyOrder(t *testing.T) {
	project, ok := ProjectSettings("TestProject", "greenfield").Get("project")
	require.True(t, ok)
	assert.Equal(t, []string{
		"name", "type", "language", "architecture",
		"test_framework", "coverage_tool", "package_manager",
	}, project.Keys())
}
