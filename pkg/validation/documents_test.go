package validation

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ST-001.yml")
	writeFile(t, path, "id: ST-001\ntitle: Add divide guard\n")

	r := NewReport("story")
	doc, ok := DocumentFields(r, path, []string{"id", "title", "scope"}, "ST-001")
	assert.True(t, ok)
	assert.True(t, doc.Has("id"))

	names := []string{}
	for _, c := range r.Checks() {
		names = append(names, c.String())
	}
	assert.Equal(t, []string{
		"[PASS] ST-001 exists",
		"[PASS] ST-001 valid YAML",
		"[PASS] ST-001: 'id' exists",
		"[PASS] ST-001: 'title' exists",
		"[FAIL] ST-001: 'scope' exists -- missing field: scope",
	}, names)
}

func TestDocumentFields_StopsEarly(t *testing.T) {
	dir := t.TempDir()

	r := NewReport("story")
	_, ok := DocumentFields(r, filepath.Join(dir, "missing.yml"), []string{"id"}, "")
	assert.False(t, ok)
	assert.Equal(t, 1, r.Total())
	assert.Equal(t, "missing.yml exists", r.Checks()[0].Name)

	empty := filepath.Join(dir, "empty.yml")
	writeFile(t, empty, "")
	r = NewReport("story")
	_, ok = DocumentFields(r, empty, []string{"id"}, "")
	assert.False(t, ok)
	assert.Equal(t, 2, r.Total())
	assert.True(t, r.AllPassed())
}

func TestAllDocumentsInDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.yaml"), "a: [\n")
	writeFile(t, filepath.Join(dir, "a.yml"), "a: 1\n")
	writeFile(t, filepath.Join(dir, "notes.md"), "# x\n")

	r := NewReport("analysis")
	AllDocumentsInDir(r, dir)

	checks := r.Checks()
	if assert.Len(t, checks, 2) {
		assert.Equal(t, "a.yml valid YAML", checks[0].Name)
		assert.True(t, checks[0].Passed)
		assert.Equal(t, "b.yaml valid YAML", checks[1].Name)
		assert.False(t, checks[1].Passed)
	}

	missing := filepath.Join(dir, "nope")
	r = NewReport("analysis")
	AllDocumentsInDir(r, missing)
	assert.Equal(t, []Check{{
		Name: "directory " + missing + " exists", Detail: "not found",
	}}, r.Checks())
}
