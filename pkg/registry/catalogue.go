package registry

import (
	"fmt"
	"time"

	"digital.vasic.harness/pkg/sandbox"
	"digital.vasic.harness/pkg/validators"
	"digital.vasic.harness/pkg/workflow"
)

// Chain heads of the standard catalogue.
const (
	GreenfieldChain = "init-greenfield"
	BrownfieldChain = "init-brownfield"
)

const autoStoryNote = `"AUTO" means the first story in .state/stories/. ` +
	`Before running the validator, list .state/stories/ST-*.yml, ` +
	`take the first story ID and use it in place of AUTO.`

// Standard returns the built-in test definitions. Setup
// procedures are looked up by name in setups; a missing name
// leaves the definition without setup.
func Standard(setups map[string]workflow.SetupFunc) []workflow.Definition {
	def := func(
		name, category string,
		timeoutSec, maxTurns int,
		setup, after string,
		prompt workflow.Prompt,
		validator *workflow.Invocation,
	) workflow.Definition {
		return workflow.Definition{
			Name:      name,
			Category:  category,
			Timeout:   time.Duration(timeoutSec) * time.Second,
			MaxTurns:  maxTurns,
			After:     after,
			SetupName: setup,
			Setup:     setups[setup],
			Prompt:    prompt,
			Validator: validator,
		}
	}
	smoke := func(skill string) workflow.Prompt {
		return workflow.Prompt{Skill: skill, Smoke: true}
	}
	full := func(skill, args, extra string) workflow.Prompt {
		return workflow.Prompt{Skill: skill, Args: args, Extra: extra}
	}
	validate := func(name string, args ...string) *workflow.Invocation {
		return &workflow.Invocation{Name: name, Args: args}
	}

	return []workflow.Definition{
		// Smoke.
		def("help", workflow.CategorySmoke, 120, 5, "", "",
			smoke("help"), nil),
		def("doctor", workflow.CategorySmoke, 180, 15, sandbox.SetupGreenfield, "",
			smoke("doctor"), nil),
		def("status-dash", workflow.CategorySmoke, 180, 15, sandbox.SetupGreenfield, "",
			smoke("status-dash"), nil),

		// Greenfield chain, one shared sandbox.
		def(GreenfieldChain, workflow.CategoryGreenfield, 300, 5, sandbox.SetupGreenfield, "",
			smoke("doctor"), validate("init", "TestProject", "greenfield", "python")),
		def("pm", workflow.CategoryGreenfield, 900, 30, "", GreenfieldChain,
			full("pm", "Create a PRD for the user authentication feature described in .state/prd.md", ""),
			validate("pm")),
		def("tpm", workflow.CategoryGreenfield, 1500, 60, sandbox.SetupGreenfield, "pm",
			full("tpm", "plan the user authentication feature from the PRD", ""),
			validate("tpm")),
		def("dev", workflow.CategoryGreenfield, 1200, 50, "", "tpm",
			full("dev", "develop the first story", autoStoryNote),
			validate("dev", validators.AutoStory)),
		def("review", workflow.CategoryGreenfield, 900, 35, "", "dev",
			full("review", "review the completed story",
				`"AUTO" means the story from the previous dev step. `+
					`Find it in .state/stories/ and use its ID in place of AUTO.`),
			validate("review", validators.AutoStory)),

		// Hotfix, independent.
		def("tpm-hotfix", workflow.CategoryHotfix, 600, 30, sandbox.SetupGreenfield, "",
			full("tpm", "hotfix: fix the login timeout bug causing 500 errors", ""),
			validate("tpm", validators.HotfixFlag)),

		// Brownfield chain.
		def(BrownfieldChain, workflow.CategoryBrownfield, 300, 5, sandbox.SetupBrownfield, "",
			smoke("doctor"), validate("init", "BrownfieldTest", "brownfield", "python")),
		def("analyze", workflow.CategoryBrownfield, 900, 40, "", BrownfieldChain,
			full("analyze", "analyze this codebase", ""),
			validate("analyze")),

		// Bugfix, independent.
		def("bugfix", workflow.CategoryBugfix, 900, 40, sandbox.SetupBugfix, "",
			full("bugfix", "divide function raises ZeroDivisionError instead of ValueError on zero input", ""),
			validate("bugfix")),
	}
}

// NewStandard returns a registry holding the Standard catalogue.
func NewStandard(setups map[string]workflow.SetupFunc) (*DefaultRegistry, error) {
	r := NewRegistry()
	for _, def := range Standard(setups) {
		if err := r.Register(def); err != nil {
			return nil, fmt.Errorf("standard catalogue: %w", err)
		}
	}
	return r, nil
}
