package assertion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.harness/pkg/document"
)

func testDoc(t *testing.T) document.Node {
	t.Helper()
	n, err := document.Parse([]byte(`
project:
  name: TestProject
  type: greenfield
quality:
  coverage: 85
stories: [ST-001, ST-002]
`), document.FormatYAML)
	require.NoError(t, err)
	return n
}

func TestNewEngine_RegistersAllBuiltins(t *testing.T) {
	e := NewEngine()

	builtins := []string{
		"exists", "equals", "in", "not_empty", "gte",
		"min_length", "is_list", "is_mapping", "contains",
		"matches", "all", "any",
	}

	for _, name := range builtins {
		assert.True(t, e.HasEvaluator(name),
			"missing built-in evaluator: %s", name)
	}
	assert.Len(t, e.Types(), len(builtins))
}

func TestDefaultEngine_Register_Success(t *testing.T) {
	e := NewEngine()

	err := e.Register("custom", func(
		_ Definition, _ document.Node,
	) (bool, string) {
		return true, "custom ok"
	})

	require.NoError(t, err)
	assert.True(t, e.HasEvaluator("custom"))
}

func TestDefaultEngine_Register_Duplicate(t *testing.T) {
	e := NewEngine()

	err := e.Register("equals", func(
		_ Definition, _ document.Node,
	) (bool, string) {
		return true, "dup"
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestDefaultEngine_Evaluate_UnknownType(t *testing.T) {
	e := NewEngine()

	r := e.Evaluate(Definition{
		Type:   "nonexistent",
		Target: "x",
	}, document.NewString("hello"))

	assert.False(t, r.Passed)
	assert.Contains(t, r.Message, "unknown assertion type")
}

func TestDefaultEngine_Evaluate_SetsFields(t *testing.T) {
	e := NewEngine()

	r := e.Evaluate(Definition{
		Type:   "equals",
		Target: "project.name",
		Value:  "TestProject",
	}, document.NewString("TestProject"))

	assert.True(t, r.Passed)
	assert.True(t, r.Found)
	assert.Equal(t, "equals", r.Type)
	assert.Equal(t, "project.name", r.Target)
	assert.Equal(t, "TestProject", r.Expected)
	assert.Equal(t, "TestProject", r.Actual)
}

func TestDefaultEngine_EvaluateAll_ResolvesTargets(t *testing.T) {
	e := NewEngine()

	results := e.EvaluateAll(
		[]Definition{
			{Type: "equals", Target: "project.name", Value: "TestProject"},
			{Type: "gte", Target: "quality.coverage", Value: 80},
			{Type: "min_length", Target: "stories", Value: 2},
			{Type: "is_mapping", Target: ""},
		},
		testDoc(t),
	)

	require.Len(t, results, 4)
	for _, r := range results {
		assert.True(t, r.Passed, "assertion %s failed: %s", r.Type, r.Message)
	}
}

func TestDefaultEngine_EvaluateAll_MissingTarget(t *testing.T) {
	e := NewEngine()

	results := e.EvaluateAll(
		[]Definition{
			{Type: "exists", Target: "project.version"},
			{Type: "exists", Target: "stories.ST-001"},
		},
		testDoc(t),
	)

	require.Len(t, results, 2)
	assert.Equal(t, "missing field: project.version", results[0].Message)
	assert.Equal(t, "missing field: stories.ST-001", results[1].Message)
}
