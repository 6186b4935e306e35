package workflow

import (
	"bytes"
	"fmt"
	"regexp"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// Prompt describes what the agent is asked to do. Smoke prompts
// only exercise a skill; full prompts pass arguments and ask the
// agent to run the validator itself.
type Prompt struct {
	Skill string `json:"skill" yaml:"skill"`
	Args  string `json:"args,omitempty" yaml:"args,omitempty"`
	Extra string `json:"extra,omitempty" yaml:"extra,omitempty"`
	Smoke bool   `json:"smoke,omitempty" yaml:"smoke,omitempty"`
}

// PromptData is the run-time context a prompt is rendered with.
type PromptData struct {
	// Executable is how the agent should invoke the validator
	// (e.g. "harness").
	Executable string

	// Dir is the sandbox directory.
	Dir string
}

const verdictLine = "If all checks pass, VERDICT: PASS. Otherwise VERDICT: FAIL."

const fullPromptText = `Run the /{{ .Skill }} skill{{ with .Args }} with: {{ . }}{{ end }}.

This is an automated workflow test ({{ .Name | quote }}). Work only inside {{ .Dir }} and do not ask for clarification.
{{- with .Validate }}

When the skill has finished, run the validator:
{{ . | indent 2 }}
Print the validator output.
{{- end }}
{{- with .Extra }}

{{ . | trim }}
{{- end }}

{{ .Verdict }}`

const smokePromptText = `Run the /{{ .Skill }} skill and report what it shows. This is an automated smoke test ({{ .Name | quote }}); do not ask for clarification.
{{- if .Validate }}

Also run: {{ .Validate }}
Print the validator output. {{ .Verdict }}
{{- else }}

If the skill completes without errors, VERDICT: PASS. Otherwise VERDICT: FAIL.
{{- end }}`

var (
	fullPrompt = template.Must(
		template.New("full").Funcs(sprig.TxtFuncMap()).Parse(fullPromptText),
	)
	smokePrompt = template.Must(
		template.New("smoke").Funcs(sprig.TxtFuncMap()).Parse(smokePromptText),
	)
)

// RenderPrompt builds the text sent to the agent for d.
func RenderPrompt(d Definition, data PromptData) (string, error) {
	if data.Executable == "" {
		data.Executable = "harness"
	}

	var validate string
	if d.Validator != nil {
		validate = d.Validator.String(data.Executable, data.Dir)
	}

	vars := map[string]any{
		"Name":     d.Name,
		"Skill":    d.Prompt.Skill,
		"Args":     d.Prompt.Args,
		"Extra":    d.Prompt.Extra,
		"Dir":      data.Dir,
		"Validate": validate,
		"Verdict":  verdictLine,
	}

	tmpl := fullPrompt
	if d.Prompt.Smoke {
		tmpl = smokePrompt
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("render prompt for %s: %w", d.Name, err)
	}
	return buf.String(), nil
}

var verdictPattern = regexp.MustCompile(`VERDICT:\s*\**\s*(PASS|FAIL)\b`)

// ParseVerdict returns the last VERDICT reported in output.
func ParseVerdict(output string) (string, bool) {
	matches := verdictPattern.FindAllStringSubmatch(output, -1)
	if len(matches) == 0 {
		return "", false
	}
	return matches[len(matches)-1][1], true
}
