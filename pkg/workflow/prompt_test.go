package workflow

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPrompt_Full(t *testing.T) {
	d := Definition{
		Name: "dev",
		Prompt: Prompt{
			Skill: "dev",
			Args:  "develop the first story",
			Extra: "Substitute the story ID for AUTO.\n",
		},
		Validator: &Invocation{Name: "dev", Args: []string{"AUTO"}},
	}

	text, err := RenderPrompt(d, PromptData{Dir: "/work/dev-1"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(text,
		"Run the /dev skill with: develop the first story."))
	assert.Contains(t, text, `("dev")`)
	assert.Contains(t, text, "Work only inside /work/dev-1")
	assert.Contains(t, text, "\n  harness validate dev /work/dev-1 AUTO\n")
	assert.Contains(t, text, "\n\nSubstitute the story ID for AUTO.\n\n")
	assert.True(t, strings.HasSuffix(text, verdictLine))
}

func TestRenderPrompt_FullWithoutValidator(t *testing.T) {
	d := Definition{Name: "x", Prompt: Prompt{Skill: "analyze"}}

	text, err := RenderPrompt(d, PromptData{Executable: "/bin/h", Dir: "/d"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(text, "Run the /analyze skill.\n"))
	assert.NotContains(t, text, "run the validator")
	assert.True(t, strings.HasSuffix(text, verdictLine))
}

func TestRenderPrompt_Smoke(t *testing.T) {
	d := Definition{Name: "help", Prompt: Prompt{Skill: "help", Smoke: true}}

	text, err := RenderPrompt(d, PromptData{Dir: "/d"})
	require.NoError(t, err)

	assert.Contains(t, text, "Run the /help skill and report what it shows.")
	assert.True(t, strings.HasSuffix(text,
		"If the skill completes without errors, VERDICT: PASS. Otherwise VERDICT: FAIL."))
}

func TestRenderPrompt_SmokeWithValidator(t *testing.T) {
	d := Definition{
		Name:      "init-greenfield",
		Prompt:    Prompt{Skill: "doctor", Smoke: true},
		Validator: &Invocation{Name: "init", Args: []string{"TestProject", "greenfield", "python"}},
	}

	text, err := RenderPrompt(d, PromptData{Dir: "/sb"})
	require.NoError(t, err)

	assert.Contains(t, text,
		"Also run: harness validate init /sb TestProject greenfield python\n"+
			"Print the validator output. "+verdictLine)
}

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
		found  bool
	}{
		{"none", "all done", "", false},
		{"pass", "checks ok\nVERDICT: PASS\n", "PASS", true},
		{"fail bold", "**VERDICT: FAIL**", "FAIL", true},
		{"last wins", "VERDICT: FAIL\nretrying\nVERDICT: PASS", "PASS", true},
		{"not a word", "VERDICT: PASSWORD", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseVerdict(tt.output)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
