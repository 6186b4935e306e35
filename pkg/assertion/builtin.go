package assertion

import (
	"fmt"
	"regexp"
	"strings"

	"digital.vasic.harness/pkg/document"
)

// evaluateExists passes for any resolved value; missing targets
// are rejected by the engine before evaluators run.
func evaluateExists(
	assertion Definition,
	_ document.Node,
) (bool, string) {
	return true, fmt.Sprintf("field %s exists", assertion.Target)
}

// evaluateEquals compares the value structurally with the
// expected value.
func evaluateEquals(
	assertion Definition,
	value document.Node,
) (bool, string) {
	expected := document.FromValue(assertion.Value)
	if value.Equal(expected) {
		return true, fmt.Sprintf("equals %s", expected.Repr())
	}

	return false, fmt.Sprintf(
		"got %s, expected %s", value.Repr(), expected.Repr(),
	)
}

// evaluateIn checks membership in a closed set of allowed
// values, taken from Values or from a list-valued Value.
func evaluateIn(
	assertion Definition,
	value document.Node,
) (bool, string) {
	for _, allowed := range allowedValues(assertion) {
		if value.Equal(allowed) {
			return true, fmt.Sprintf("%s is allowed", value.Repr())
		}
	}

	return false, fmt.Sprintf("got %s", value.Repr())
}

// evaluateNotEmpty checks that the value is truthy.
func evaluateNotEmpty(
	_ Definition,
	value document.Node,
) (bool, string) {
	if value.Truthy() {
		return true, "value is not empty"
	}

	return false, fmt.Sprintf("field is empty: %s", value.Repr())
}

// evaluateGTE checks a numeric lower bound. Numeric strings and
// booleans are converted; anything else is reported as not
// numeric.
func evaluateGTE(
	assertion Definition,
	value document.Node,
) (bool, string) {
	minimum, ok := document.FromValue(assertion.Value).Float()
	if !ok {
		return false, "expected value is not a number"
	}

	actual, ok := value.Float()
	if !ok {
		return false, fmt.Sprintf("not numeric: %s", value.Repr())
	}

	if actual >= minimum {
		return true, fmt.Sprintf(
			"%s >= %s", value.String(), formatMinimum(minimum),
		)
	}

	return false, fmt.Sprintf("got %s", value.String())
}

// evaluateMinLength checks that the value is a sequence with at
// least the expected number of entries.
func evaluateMinLength(
	assertion Definition,
	value document.Node,
) (bool, string) {
	minimum, ok := toInt(assertion.Value)
	if !ok {
		return false, "expected value is not a number"
	}

	if !value.IsSequence() {
		return false, fmt.Sprintf("not a list: %s", value.Kind())
	}

	if value.Len() >= minimum {
		return true, fmt.Sprintf(
			"has %d entries >= %d", value.Len(), minimum,
		)
	}

	return false, fmt.Sprintf("has %d entries", value.Len())
}

// evaluateIsList checks that the value is a sequence.
func evaluateIsList(
	_ Definition,
	value document.Node,
) (bool, string) {
	if value.IsSequence() {
		return true, "value is a list"
	}

	return false, fmt.Sprintf("not a list: %s", value.Kind())
}

// evaluateIsMapping checks that the value is a mapping.
func evaluateIsMapping(
	_ Definition,
	value document.Node,
) (bool, string) {
	if value.IsMapping() {
		return true, "value is a mapping"
	}

	return false, fmt.Sprintf("not a mapping: %s", value.Kind())
}

// evaluateContains checks that a string value contains the
// expected substring (case-insensitive).
func evaluateContains(
	assertion Definition,
	value document.Node,
) (bool, string) {
	str, ok := value.Text()
	if !ok {
		return false, fmt.Sprintf("not a string: %s", value.Kind())
	}

	expected := fmt.Sprint(assertion.Value)
	if strings.Contains(
		strings.ToLower(str),
		strings.ToLower(expected),
	) {
		return true, fmt.Sprintf("contains '%s'", expected)
	}

	return false, fmt.Sprintf("does not contain '%s'", expected)
}

// evaluateMatches checks a string value against a regular
// expression.
func evaluateMatches(
	assertion Definition,
	value document.Node,
) (bool, string) {
	str, ok := value.Text()
	if !ok {
		return false, fmt.Sprintf("not a string: %s", value.Kind())
	}

	pattern := fmt.Sprint(assertion.Value)
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, fmt.Sprintf("invalid pattern: %v", err)
	}

	if re.MatchString(str) {
		return true, fmt.Sprintf("matches %q", pattern)
	}

	return false, fmt.Sprintf("does not match %q", pattern)
}

// --- helpers ---

// allowedValues flattens Values and a list-valued Value into
// document nodes.
func allowedValues(assertion Definition) []document.Node {
	var out []document.Node
	for _, v := range assertion.Values {
		out = append(out, document.FromValue(v))
	}

	if assertion.Value != nil {
		n := document.FromValue(assertion.Value)
		if n.IsSequence() {
			out = append(out, n.Items()...)
		} else {
			out = append(out, n)
		}
	}

	return out
}

// toInt converts an expected value to int.
func toInt(v any) (int, bool) {
	f, ok := document.FromValue(v).Float()
	if !ok {
		return 0, false
	}
	return int(f), true
}

func formatMinimum(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}
