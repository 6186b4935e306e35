package assertion

import "digital.vasic.harness/pkg/document"

// Evaluator checks a resolved document value against an
// assertion. It is only called for values that were found; it
// returns whether the assertion passed and an explanation.
type Evaluator func(assertion Definition, value document.Node) (bool, string)
