package assertion

import (
	"fmt"

	"digital.vasic.harness/pkg/document"
)

// evaluateAllOf passes when every nested assertion passes. Nested
// targets are resolved relative to the value the compound
// assertion addressed, so "" means that value itself.
func (e *DefaultEngine) evaluateAllOf(
	assertion Definition,
	value document.Node,
) (bool, string) {
	if len(assertion.Assertions) == 0 {
		return false, "no nested assertions"
	}

	results := e.EvaluateAll(assertion.Assertions, value)
	for _, r := range results {
		if !r.Passed {
			return false, fmt.Sprintf("%s '%s': %s", r.Type, r.Target, r.Message)
		}
	}
	return true, fmt.Sprintf("%d nested assertions passed", len(results))
}

// evaluateAnyOf passes as soon as one nested assertion passes.
func (e *DefaultEngine) evaluateAnyOf(
	assertion Definition,
	value document.Node,
) (bool, string) {
	if len(assertion.Assertions) == 0 {
		return false, "no nested assertions"
	}

	results := e.EvaluateAll(assertion.Assertions, value)
	for _, r := range results {
		if r.Passed {
			return true, fmt.Sprintf("%s '%s' passed", r.Type, r.Target)
		}
	}
	return false, fmt.Sprintf("none of %d nested assertions passed", len(results))
}

// UnknownType returns the first type used by d, nested
// assertions included, that has no registered evaluator.
func (e *DefaultEngine) UnknownType(d Definition) (string, bool) {
	if !e.HasEvaluator(d.Type) {
		return d.Type, true
	}
	for _, sub := range d.Assertions {
		if t, ok := e.UnknownType(sub); ok {
			return t, true
		}
	}
	return "", false
}
