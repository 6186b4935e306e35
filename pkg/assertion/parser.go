package assertion

import (
	"strings"

	"digital.vasic.harness/pkg/document"
)

// ParseAssertionString parses a compact assertion string of the
// form "type:value" into its components. If no colon is present
// the entire string is treated as the type and value is nil. The
// value is read as a YAML scalar or flow collection, so numbers,
// booleans and lists keep their types.
//
// Examples:
//
//	"not_empty"          -> ("not_empty", nil)
//	"equals:TestProject" -> ("equals", "TestProject")
//	"min_length:2"       -> ("min_length", int64(2))
//	"in:[P0, P1]"        -> ("in", []any{"P0", "P1"})
func ParseAssertionString(
	s string,
) (assertionType string, value any) {
	parts := strings.SplitN(s, ":", 2)
	assertionType = parts[0]

	if len(parts) > 1 {
		value = parts[1]
		n, err := document.Parse([]byte(parts[1]), document.FormatYAML)
		if err == nil && !n.IsMapping() && n.Kind() != document.Null {
			value = n.Value()
		}
	}

	return
}

// ParseDefinition builds a Definition for target from a compact
// assertion string.
func ParseDefinition(target, s string) Definition {
	t, v := ParseAssertionString(s)
	return Definition{Type: t, Target: target, Value: v}
}
