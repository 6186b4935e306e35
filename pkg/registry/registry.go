// Package registry provides test definition registration,
// discovery, and chain-ordered retrieval.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"digital.vasic.harness/pkg/workflow"
)

var (
	// ErrNotFound is returned for an unknown test name.
	ErrNotFound = errors.New("test definition not found")

	// ErrDuplicate is returned when a name is registered twice.
	ErrDuplicate = errors.New("test definition already registered")
)

// Registry defines the interface for managing test definitions.
type Registry interface {
	// Register adds a definition after validating it.
	Register(def workflow.Definition) error

	// Get retrieves a definition by name.
	Get(name string) (workflow.Definition, error)

	// List returns all definitions sorted by name.
	List() []workflow.Definition

	// ListByCategory returns the definitions of one category
	// sorted by name.
	ListByCategory(category string) []workflow.Definition

	// ChainOrder returns all definitions in topological order
	// of their After links.
	ChainOrder() ([]workflow.Definition, error)

	// Chains groups definitions into sandbox-sharing chains,
	// each in run order.
	Chains() ([][]workflow.Definition, error)

	// ValidateDependencies checks that every After link names
	// a registered definition.
	ValidateDependencies() error

	// Clear removes all definitions.
	Clear()

	// Count returns the number of registered definitions.
	Count() int
}

// DefaultRegistry is the standard Registry implementation.
// It is safe for concurrent use.
type DefaultRegistry struct {
	mu          sync.RWMutex
	definitions map[string]workflow.Definition
}

// NewRegistry creates a new, empty DefaultRegistry.
func NewRegistry() *DefaultRegistry {
	return &DefaultRegistry{
		definitions: make(map[string]workflow.Definition),
	}
}

// Register adds a definition. Returns an error if it is invalid
// or its name is already registered.
func (r *DefaultRegistry) Register(def workflow.Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.definitions[def.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicate, def.Name)
	}

	r.definitions[def.Name] = def
	return nil
}

// Get retrieves a definition by name.
func (r *DefaultRegistry) Get(name string) (workflow.Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, exists := r.definitions[name]
	if !exists {
		return workflow.Definition{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return def, nil
}

// List returns all registered definitions sorted by name.
func (r *DefaultRegistry) List() []workflow.Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return sortedDefinitions(r.definitions, func(workflow.Definition) bool {
		return true
	})
}

// ListByCategory returns the definitions of one category.
func (r *DefaultRegistry) ListByCategory(
	category string,
) []workflow.Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return sortedDefinitions(r.definitions, func(d workflow.Definition) bool {
		return d.Category == category
	})
}

// ChainOrder returns definitions in topological order using
// Kahn's algorithm. Returns an error if a cycle is detected.
func (r *DefaultRegistry) ChainOrder() ([]workflow.Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return topologicalSort(r.definitions)
}

// Chains returns the sandbox-sharing chains. A chain starts at a
// definition without After and holds every definition reachable
// through After links, in topological order. Chains are ordered
// by the name of their first definition.
func (r *DefaultRegistry) Chains() ([][]workflow.Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ordered, err := topologicalSort(r.definitions)
	if err != nil {
		return nil, err
	}

	index := map[string]int{}
	var chains [][]workflow.Definition
	for _, def := range ordered {
		head := chainHead(r.definitions, def.Name)
		i, ok := index[head]
		if !ok {
			i = len(chains)
			index[head] = i
			chains = append(chains, nil)
		}
		chains[i] = append(chains[i], def)
	}

	sort.SliceStable(chains, func(i, j int) bool {
		return chains[i][0].Name < chains[j][0].Name
	})
	return chains, nil
}

// ValidateDependencies checks that every After link names a
// registered definition. Returns the first missing one found,
// in name order.
func (r *DefaultRegistry) ValidateDependencies() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, def := range sortedDefinitions(r.definitions, func(d workflow.Definition) bool {
		return d.After != ""
	}) {
		if _, exists := r.definitions[def.After]; !exists {
			return fmt.Errorf(
				"test %s runs after unregistered test: %s",
				def.Name, def.After,
			)
		}
	}
	return nil
}

// Clear removes all definitions.
func (r *DefaultRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.definitions = make(map[string]workflow.Definition)
}

// Count returns the number of registered definitions.
func (r *DefaultRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.definitions)
}

func sortedDefinitions(
	defs map[string]workflow.Definition,
	keep func(workflow.Definition) bool,
) []workflow.Definition {
	out := make([]workflow.Definition, 0, len(defs))
	for _, d := range defs {
		if keep(d) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// chainHead follows After links to the first definition of the
// chain. An unregistered After target ends the walk at the last
// registered definition. Callers guarantee the graph is acyclic.
func chainHead(defs map[string]workflow.Definition, name string) string {
	for {
		def := defs[name]
		if _, ok := defs[def.After]; def.After == "" || !ok {
			return name
		}
		name = def.After
	}
}
