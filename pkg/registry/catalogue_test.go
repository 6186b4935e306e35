package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.harness/pkg/sandbox"
	"digital.vasic.harness/pkg/validators"
	"digital.vasic.harness/pkg/workflow"
)

func stubSetups(calls *[]string) map[string]workflow.SetupFunc {
	mk := func(name string) workflow.SetupFunc {
		return func(context.Context, string) error {
			*calls = append(*calls, name)
			return nil
		}
	}
	return map[string]workflow.SetupFunc{
		sandbox.SetupGreenfield: mk(sandbox.SetupGreenfield),
		sandbox.SetupBrownfield: mk(sandbox.SetupBrownfield),
		sandbox.SetupBugfix:     mk(sandbox.SetupBugfix),
	}
}

func TestStandard_Budgets(t *testing.T) {
	var calls []string
	r, err := NewStandard(stubSetups(&calls))
	require.NoError(t, err)
	require.Equal(t, 12, r.Count())
	require.NoError(t, r.ValidateDependencies())

	tests := []struct {
		name     string
		category string
		timeout  time.Duration
		turns    int
		setup    string
	}{
		{"help", "smoke", 120 * time.Second, 5, ""},
		{"doctor", "smoke", 180 * time.Second, 15, "greenfield"},
		{"status-dash", "smoke", 180 * time.Second, 15, "greenfield"},
		{"init-greenfield", "greenfield", 300 * time.Second, 5, "greenfield"},
		{"pm", "greenfield", 900 * time.Second, 30, ""},
		{"tpm", "greenfield", 1500 * time.Second, 60, "greenfield"},
		{"dev", "greenfield", 1200 * time.Second, 50, ""},
		{"review", "greenfield", 900 * time.Second, 35, ""},
		{"tpm-hotfix", "hotfix", 600 * time.Second, 30, "greenfield"},
		{"init-brownfield", "brownfield", 300 * time.Second, 5, "brownfield"},
		{"analyze", "brownfield", 900 * time.Second, 40, ""},
		{"bugfix", "bugfix", 900 * time.Second, 40, "bugfix"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := r.Get(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.category, def.Category)
			assert.Equal(t, tt.timeout, def.Timeout)
			assert.Equal(t, tt.turns, def.MaxTurns)
			assert.Equal(t, tt.setup, def.SetupName)
			assert.Equal(t, tt.setup != "", def.Setup != nil)
		})
	}
}

func TestStandard_SetupResolved(t *testing.T) {
	var calls []string
	r, err := NewStandard(stubSetups(&calls))
	require.NoError(t, err)

	def, err := r.Get("bugfix")
	require.NoError(t, err)
	require.NoError(t, def.Setup(context.Background(), t.TempDir()))
	assert.Equal(t, []string{"bugfix"}, calls)
}

func TestStandard_Validators(t *testing.T) {
	r, err := NewStandard(nil)
	require.NoError(t, err)
	known := validators.New(validators.Options{})

	for _, def := range r.List() {
		if def.Validator == nil {
			continue
		}
		spec, ok := known.Lookup(def.Validator.Name)
		require.True(t, ok, def.Name)
		assert.GreaterOrEqual(t, len(def.Validator.Args), spec.MinArgs, def.Name)
	}

	brown, _ := r.Get("init-brownfield")
	assert.Equal(t, []string{"BrownfieldTest", "brownfield", "python"}, brown.Validator.Args)
	hotfix, _ := r.Get("tpm-hotfix")
	assert.Equal(t, []string{"--hotfix"}, hotfix.Validator.Args)
	help, _ := r.Get("help")
	assert.Nil(t, help.Validator)
}

func TestStandard_Chains(t *testing.T) {
	r, err := NewStandard(nil)
	require.NoError(t, err)

	chains, err := r.Chains()
	require.NoError(t, err)

	byHead := map[string][]string{}
	for _, c := range chains {
		byHead[c[0].Name] = names(c)
	}

	assert.Equal(t, []string{"init-greenfield", "pm", "tpm", "dev", "review"}, byHead[GreenfieldChain])
	assert.Equal(t, []string{"init-brownfield", "analyze"}, byHead[BrownfieldChain])
	assert.Equal(t, []string{"bugfix"}, byHead["bugfix"])
	assert.Len(t, chains, 7)
}

func TestStandard_PromptsRender(t *testing.T) {
	r, err := NewStandard(nil)
	require.NoError(t, err)

	for _, def := range r.List() {
		text, err := workflow.RenderPrompt(def, workflow.PromptData{Dir: "/sb"})
		require.NoError(t, err, def.Name)
		assert.Contains(t, text, "VERDICT: PASS", def.Name)
	}

	dev, _ := r.Get("dev")
	text, err := workflow.RenderPrompt(dev, workflow.PromptData{Dir: "/sb"})
	require.NoError(t, err)
	assert.Contains(t, text, "harness validate dev /sb AUTO")
	assert.Contains(t, text, "ST-*.yml")
}
