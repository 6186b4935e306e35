// Package validators holds the composite validator of each
// workflow. A validator inspects a sandbox in its final state and
// returns a validation report; it never sets anything up and
// never returns an error other than ErrUsage.
package validators

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"digital.vasic.harness/pkg/sandbox"
	"digital.vasic.harness/pkg/validation"
)

// ErrUsage reports a validator invoked with an unknown name or
// missing arguments. It is detected before any report exists.
var ErrUsage = errors.New("usage error")

// AutoStory asks a story-scoped validator to pick the first
// story found in the sandbox.
const AutoStory = "AUTO"

// Default project test command settings.
const (
	DefaultTestTimeout = 30 * time.Second
)

// DefaultTestCommand runs the sandbox project's own test suite.
var DefaultTestCommand = []string{
	"python3", "-m", "pytest", "tests/", "-v", "--tb=short",
}

// Options tunes validators that shell out.
type Options struct {
	// TestCommand is the argv of the project test suite.
	TestCommand []string

	// TestTimeout bounds TestCommand.
	TestTimeout time.Duration
}

// Func validates the sandbox at root with positional args.
type Func func(
	ctx context.Context,
	root string,
	args []string,
	opts Options,
) *validation.Report

// Spec describes one registered validator.
type Spec struct {
	// Name is the CLI name of the validator.
	Name string

	// Args documents the positional arguments, e.g.
	// "<story-id>".
	Args string

	// MinArgs is the number of required positional arguments.
	MinArgs int

	// Description is a one-line summary.
	Description string

	run Func
}

// Catalogue maps validator names to their implementation.
type Catalogue struct {
	opts  Options
	specs map[string]Spec
}

// New returns a catalogue with every built-in validator.
// Missing options are filled with defaults.
func New(opts Options) *Catalogue {
	if len(opts.TestCommand) == 0 {
		opts.TestCommand = DefaultTestCommand
	}
	if opts.TestTimeout <= 0 {
		opts.TestTimeout = DefaultTestTimeout
	}

	c := &Catalogue{opts: opts, specs: map[string]Spec{}}
	for _, s := range []Spec{
		{
			Name: "adversarial-review", Args: "<story-id>", MinArgs: 1,
			Description: "handoff, findings and memory after an adversarial review",
			run:         AdversarialReview,
		},
		{
			Name:        "bugfix",
			Description: "zero-division fix in place and project tests passing",
			run:         Bugfix,
		},
		{
			Name:        "pm",
			Description: "PRD and product artifacts",
			run:         PM,
		},
		{
			Name: "init", Args: "<name> <type> <language>", MinArgs: 3,
			Description: "state directory initialised with project settings",
			run:         Init,
		},
		{
			Name: "tpm", Args: "[--hotfix]",
			Description: "stories and sprint plan",
			run:         TPM,
		},
		{
			Name: "dev", Args: "<story-id|AUTO>", MinArgs: 1,
			Description: "story implemented with passing tests",
			run:         Dev,
		},
		{
			Name: "review", Args: "<story-id|AUTO>", MinArgs: 1,
			Description: "review findings and verdict recorded",
			run:         Review,
		},
		{
			Name:        "analyze",
			Description: "codebase analysis artifacts",
			run:         Analyze,
		},
	} {
		c.specs[s.Name] = s
	}
	return c
}

// Names returns the registered validator names, sorted.
func (c *Catalogue) Names() []string {
	names := make([]string, 0, len(c.specs))
	for n := range c.specs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the spec registered under name.
func (c *Catalogue) Lookup(name string) (Spec, bool) {
	s, ok := c.specs[name]
	return s, ok
}

// Usage returns the one-line usage of a validator.
func (s Spec) Usage() string {
	return strings.TrimSpace(fmt.Sprintf(
		"validate %s <sandbox> %s", s.Name, s.Args,
	))
}

// Run validates the sandbox at root with the named validator.
// It fails with ErrUsage before building any report when the name
// is unknown or required arguments are missing.
func (c *Catalogue) Run(
	ctx context.Context,
	name, root string,
	args []string,
) (*validation.Report, error) {
	s, ok := c.specs[name]
	if !ok {
		return nil, fmt.Errorf(
			"%w: unknown validator %q (available: %s)",
			ErrUsage, name, strings.Join(c.Names(), ", "),
		)
	}
	if root == "" || len(args) < s.MinArgs {
		return nil, fmt.Errorf("%w: %s", ErrUsage, s.Usage())
	}
	return s.run(ctx, root, args, c.opts), nil
}

// resolveStory turns AUTO into the first story id present in the
// sandbox. AUTO is kept when there are no stories.
func resolveStory(l sandbox.Layout, id string) string {
	if id != AutoStory {
		return id
	}
	if ids := l.StoryIDs(); len(ids) > 0 {
		return ids[0]
	}
	return id
}
