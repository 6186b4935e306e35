// Package validation records pass/fail evidence about a sandbox.
// A Report is an append-only ledger of named checks; the check
// primitives in this package each append exactly one record and
// return its outcome, so composite validators can keep going
// after a failure or stop at a gate.
package validation

import (
	"encoding/json"
	"fmt"
)

// Check is a single immutable check record.
type Check struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// String renders the record as "[PASS] name" or
// "[FAIL] name -- detail".
func (c Check) String() string {
	if c.Passed {
		return "[PASS] " + c.Name
	}
	if c.Detail == "" {
		return "[FAIL] " + c.Name
	}
	return fmt.Sprintf("[FAIL] %s -- %s", c.Name, c.Detail)
}

// Report collects the checks of one validation run. It is not
// safe for concurrent use; every run builds its own report.
type Report struct {
	workflow string
	checks   []Check
}

// NewReport creates an empty report for the given workflow
// label.
func NewReport(workflow string) *Report {
	return &Report{workflow: workflow}
}

// Workflow returns the report label.
func (r *Report) Workflow() string { return r.workflow }

// Add appends a check record and returns it. The detail of a
// passing check is dropped.
func (r *Report) Add(name string, passed bool, detail string) Check {
	if passed {
		detail = ""
	}
	c := Check{Name: name, Passed: passed, Detail: detail}
	r.checks = append(r.checks, c)
	return c
}

// Checks returns a copy of the records in append order.
func (r *Report) Checks() []Check {
	out := make([]Check, len(r.checks))
	copy(out, r.checks)
	return out
}

// Passed returns the number of passing checks.
func (r *Report) Passed() int {
	n := 0
	for _, c := range r.checks {
		if c.Passed {
			n++
		}
	}
	return n
}

// Failed returns the number of failing checks.
func (r *Report) Failed() int { return r.Total() - r.Passed() }

// Total returns the number of checks.
func (r *Report) Total() int { return len(r.checks) }

// AllPassed reports whether no check failed. An empty report
// counts as passed.
func (r *Report) AllPassed() bool { return r.Failed() == 0 }

// Summary returns the one-line verdict, e.g.
// "[PASS] bugfix: 4/4 checks passed".
func (r *Report) Summary() string {
	status := "PASS"
	if !r.AllPassed() {
		status = "FAIL"
	}
	return fmt.Sprintf(
		"[%s] %s: %d/%d checks passed",
		status, r.workflow, r.Passed(), r.Total(),
	)
}

// DetailLines returns the summary followed by one indented line
// per check.
func (r *Report) DetailLines() []string {
	lines := make([]string, 0, len(r.checks)+1)
	lines = append(lines, r.Summary())
	for _, c := range r.checks {
		lines = append(lines, "  "+c.String())
	}
	return lines
}

// ExitCode returns 0 when all checks passed and 1 otherwise.
func (r *Report) ExitCode() int {
	if r.AllPassed() {
		return 0
	}
	return 1
}

type reportJSON struct {
	Workflow  string  `json:"workflow"`
	Passed    int     `json:"passed"`
	Failed    int     `json:"failed"`
	Total     int     `json:"total"`
	AllPassed bool    `json:"all_passed"`
	Checks    []Check `json:"checks"`
}

// MarshalJSON encodes the report with its derived counts.
func (r *Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(reportJSON{
		Workflow:  r.workflow,
		Passed:    r.Passed(),
		Failed:    r.Failed(),
		Total:     r.Total(),
		AllPassed: r.AllPassed(),
		Checks:    r.Checks(),
	})
}

// UnmarshalJSON restores a report from its JSON form. Derived
// counts are recomputed from the checks.
func (r *Report) UnmarshalJSON(data []byte) error {
	var raw reportJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.workflow = raw.Workflow
	r.checks = raw.Checks
	return nil
}
