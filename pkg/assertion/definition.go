// Package assertion provides an extensible evaluation engine for
// checks against parsed documents. Each assertion addresses a
// value by dot-path and applies a named evaluator to it. Custom
// evaluators can be registered alongside the built-in ones.
package assertion

// Definition describes a single assertion against a document.
type Definition struct {
	// Type is the evaluator type (e.g., "exists", "equals",
	// "min_length").
	Type string `json:"type" yaml:"type"`

	// Target is the dot-path of the value to check. An empty
	// target addresses the document root.
	Target string `json:"target" yaml:"target"`

	// Value is the expected value for single-value assertions.
	Value any `json:"value,omitempty" yaml:"value,omitempty"`

	// Values holds the allowed values for multi-value
	// assertions (e.g., "in").
	Values []any `json:"values,omitempty" yaml:"values,omitempty"`

	// Message is a human-readable label shown in reports.
	Message string `json:"message,omitempty" yaml:"message,omitempty"`

	// Assertions holds the nested assertions of the compound
	// "all" and "any" types. Their targets are relative to the
	// value this assertion addresses.
	Assertions []Definition `json:"assertions,omitempty" yaml:"assertions,omitempty"`
}

// Result captures the outcome of evaluating a single assertion.
type Result struct {
	// Type is the assertion type that was evaluated.
	Type string `json:"type"`

	// Target is the dot-path that was checked.
	Target string `json:"target"`

	// Expected is the value the assertion expected.
	Expected any `json:"expected,omitempty"`

	// Actual is the plain value that was observed, nil when
	// the target was not found.
	Actual any `json:"actual"`

	// Found reports whether the target resolved.
	Found bool `json:"found"`

	// Passed indicates whether the assertion succeeded.
	Passed bool `json:"passed"`

	// Message is a human-readable description of the outcome.
	Message string `json:"message"`
}
