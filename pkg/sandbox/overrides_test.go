package sandbox

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), InstructionsFile)
	require.NoError(t, os.WriteFile(path, []byte("# Agent Instructions\n"), 0644))

	ok, err := AppendOverrides(path)
	require.NoError(t, err)
	assert.True(t, ok)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	assert.True(t, strings.HasPrefix(content, "# Agent Instructions\n"))
	assert.Contains(t, content, overridesMarker)
	assert.Contains(t, content, "Quality review loops: 1 iteration maximum")
	assert.Contains(t, content, `>> .harness-test.log`)
	assert.Contains(t, content, `"MEMORY: captured <count> lessons"`)
}

func TestAppendOverrides_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), InstructionsFile)
	require.NoError(t, os.WriteFile(path, []byte("x\n"), 0644))

	for i := 0; i < 2; i++ {
		ok, err := AppendOverrides(path)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), overridesMarker))
}

func TestAppendOverrides_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), InstructionsFile)

	ok, err := AppendOverrides(path)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoFileExists(t, path)
}
