// Package workflow defines the declarative unit of a harness
// test: how its sandbox is prepared, what the agent is asked to
// do, under which budget, and how the outcome is validated.
package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/kballard/go-shellquote"

	"digital.vasic.harness/pkg/assertion"
)

// Categories used by the standard catalogue.
const (
	CategorySmoke      = "smoke"
	CategoryGreenfield = "greenfield"
	CategoryBrownfield = "brownfield"
	CategoryHotfix     = "hotfix"
	CategoryBugfix     = "bugfix"
)

// SetupFunc prepares a sandbox directory before the agent runs.
// Implementations must be idempotent.
type SetupFunc func(ctx context.Context, dir string) error

// Definition describes one test. It is built once when the
// registry is populated and never mutated afterwards.
type Definition struct {
	Name        string        `json:"name" yaml:"name"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Category    string        `json:"category" yaml:"category"`
	Timeout     time.Duration `json:"timeout" yaml:"timeout"`
	MaxTurns    int           `json:"max_turns" yaml:"max_turns"`

	// After names the previous test of a chain. Chained tests
	// reuse the sandbox of the test they follow.
	After string `json:"after,omitempty" yaml:"after,omitempty"`

	// SetupName identifies Setup for listings and definition
	// files; Setup is resolved from it by the registry loader.
	SetupName string    `json:"setup,omitempty" yaml:"setup,omitempty"`
	Setup     SetupFunc `json:"-" yaml:"-"`

	Prompt    Prompt              `json:"prompt" yaml:"prompt"`
	Validator *Invocation         `json:"validator,omitempty" yaml:"validator,omitempty"`
	Checks    []DocumentAssertion `json:"checks,omitempty" yaml:"checks,omitempty"`
}

// Invocation names a validator and its arguments. The sandbox
// path is supplied at run time.
type Invocation struct {
	Name string   `json:"name" yaml:"name"`
	Args []string `json:"args,omitempty" yaml:"args,omitempty"`
}

// String renders the invocation as a shell-quoted command line
// for the given executable and sandbox.
func (i Invocation) String(executable, dir string) string {
	parts := append([]string{executable, "validate", i.Name, dir}, i.Args...)
	return shellquote.Join(parts...)
}

// DocumentAssertion is an extra assertion evaluated against a
// document inside the sandbox after the validator has run.
type DocumentAssertion struct {
	File                 string `json:"file" yaml:"file"`
	assertion.Definition `yaml:",inline"`
}

// Validate reports structural problems with a definition.
func (d Definition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("definition has no name")
	}
	if d.Timeout <= 0 {
		return fmt.Errorf("definition %s: timeout must be positive", d.Name)
	}
	if d.MaxTurns <= 0 {
		return fmt.Errorf("definition %s: max_turns must be positive", d.Name)
	}
	if d.After == d.Name {
		return fmt.Errorf("definition %s: cannot follow itself", d.Name)
	}
	if d.Prompt.Skill == "" {
		return fmt.Errorf("definition %s: prompt has no skill", d.Name)
	}
	if d.Validator != nil && d.Validator.Name == "" {
		return fmt.Errorf("definition %s: validator has no name", d.Name)
	}
	for i, c := range d.Checks {
		if c.File == "" || c.Type == "" {
			return fmt.Errorf(
				"definition %s: check %d needs file and type", d.Name, i,
			)
		}
	}
	return nil
}
