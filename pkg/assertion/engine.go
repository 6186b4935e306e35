package assertion

import (
	"fmt"
	"sort"
	"sync"

	"digital.vasic.harness/pkg/document"
)

// Engine defines the interface for assertion evaluation engines.
type Engine interface {
	// Evaluate checks a single assertion against an already
	// resolved value. An absent value fails with a missing
	// field message.
	Evaluate(assertion Definition, value document.Node) Result

	// EvaluateAll resolves each assertion's Target inside doc
	// and evaluates it.
	EvaluateAll(
		assertions []Definition,
		doc document.Node,
	) []Result

	// Register adds a custom evaluator for the given assertion
	// type. Returns an error if the type is already registered.
	Register(assertionType string, evaluator Evaluator) error
}

// DefaultEngine is the standard Engine implementation. It is
// safe for concurrent use.
type DefaultEngine struct {
	mu         sync.RWMutex
	evaluators map[string]Evaluator
}

// NewEngine creates a DefaultEngine with the built-in
// evaluators pre-registered.
func NewEngine() *DefaultEngine {
	e := &DefaultEngine{
		evaluators: make(map[string]Evaluator),
	}
	e.registerDefaults()
	return e
}

func (e *DefaultEngine) registerDefaults() {
	e.evaluators["exists"] = evaluateExists
	e.evaluators["equals"] = evaluateEquals
	e.evaluators["in"] = evaluateIn
	e.evaluators["not_empty"] = evaluateNotEmpty
	e.evaluators["gte"] = evaluateGTE
	e.evaluators["min_length"] = evaluateMinLength
	e.evaluators["is_list"] = evaluateIsList
	e.evaluators["is_mapping"] = evaluateIsMapping
	e.evaluators["contains"] = evaluateContains
	e.evaluators["matches"] = evaluateMatches
	e.evaluators["all"] = e.evaluateAllOf
	e.evaluators["any"] = e.evaluateAnyOf
}

// Register adds a custom evaluator for the given assertion type.
// Returns an error if the type is already registered.
func (e *DefaultEngine) Register(
	assertionType string,
	evaluator Evaluator,
) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.evaluators[assertionType]; exists {
		return fmt.Errorf(
			"assertion type already registered: %s",
			assertionType,
		)
	}

	e.evaluators[assertionType] = evaluator
	return nil
}

// Evaluate runs a single assertion against the provided value.
func (e *DefaultEngine) Evaluate(
	assertion Definition,
	value document.Node,
) Result {
	e.mu.RLock()
	evaluator, exists := e.evaluators[assertion.Type]
	e.mu.RUnlock()

	result := Result{
		Type:     assertion.Type,
		Target:   assertion.Target,
		Expected: expectedOf(assertion),
		Actual:   value.Value(),
		Found:    !value.IsAbsent(),
	}

	switch {
	case !exists:
		result.Message = fmt.Sprintf(
			"unknown assertion type: %s", assertion.Type,
		)
	case value.IsAbsent():
		result.Message = fmt.Sprintf(
			"missing field: %s", assertion.Target,
		)
	default:
		result.Passed, result.Message = evaluator(assertion, value)
	}

	return result
}

// EvaluateAll resolves each assertion's Target inside doc and
// evaluates it. Results keep the order of assertions.
func (e *DefaultEngine) EvaluateAll(
	assertions []Definition,
	doc document.Node,
) []Result {
	results := make([]Result, 0, len(assertions))

	for _, a := range assertions {
		value, _ := document.Resolve(doc, a.Target)
		results = append(results, e.Evaluate(a, value))
	}

	return results
}

// HasEvaluator returns true if the given assertion type has a
// registered evaluator.
func (e *DefaultEngine) HasEvaluator(
	assertionType string,
) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, exists := e.evaluators[assertionType]
	return exists
}

// Types returns the registered assertion types, sorted.
func (e *DefaultEngine) Types() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	types := make([]string, 0, len(e.evaluators))
	for t := range e.evaluators {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

func expectedOf(a Definition) any {
	if len(a.Values) > 0 {
		return a.Values
	}
	return a.Value
}
