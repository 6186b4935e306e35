package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"digital.vasic.harness/pkg/assertion"
	"digital.vasic.harness/pkg/document"
)

// fields evaluates the field primitives. Its evaluators are
// stateless, so one engine serves every report.
var fields = assertion.NewEngine()

// Assertions returns the engine behind Assert, so callers can
// list its types and check definitions before running them.
func Assertions() *assertion.DefaultEngine {
	return fields
}

func nameOr(label, fallback string) string {
	if label != "" {
		return label
	}
	return fallback
}

// Exists checks that path exists as a file or directory.
func Exists(r *Report, path, label string) bool {
	_, err := os.Stat(path)
	ok := err == nil
	r.Add(
		nameOr(label, filepath.Base(path)+" exists"),
		ok, "not found: "+path,
	)
	return ok
}

// IsDir checks that path is a directory.
func IsDir(r *Report, path, label string) bool {
	ok := isDir(path)
	r.Add(
		nameOr(label, filepath.Base(path)+" is directory"),
		ok, "not a directory: "+path,
	)
	return ok
}

// IsFile checks that path is a regular file.
func IsFile(r *Report, path, label string) bool {
	ok := isFile(path)
	r.Add(
		nameOr(label, filepath.Base(path)+" is file"),
		ok, "not a file: "+path,
	)
	return ok
}

// ValidDocument checks that path parses as a structured
// document and returns the parsed node. The parser's message is
// kept verbatim as the failure detail.
func ValidDocument(r *Report, path, label string) (document.Node, bool) {
	format := document.FormatForPath(path)
	name := nameOr(label, fmt.Sprintf(
		"%s valid %s", filepath.Base(path), strings.ToUpper(string(format)),
	))

	n, err := document.ParseFile(path)
	if err != nil {
		r.Add(name, false, err.Error())
		return document.Node{}, false
	}
	r.Add(name, true, "")
	return n, true
}

// FieldExists checks that path resolves inside doc.
func FieldExists(r *Report, doc document.Node, path, label string) bool {
	return evaluate(r, doc, assertion.Definition{
		Type: "exists", Target: path,
	}, nameOr(label, fmt.Sprintf("field '%s' exists", path)))
}

// FieldEquals checks that path resolves to a value equal to
// expected.
func FieldEquals(
	r *Report,
	doc document.Node,
	path string,
	expected any,
	label string,
) bool {
	return evaluate(r, doc, assertion.Definition{
		Type: "equals", Target: path, Value: expected,
	}, nameOr(label, fmt.Sprintf(
		"field '%s' == %s", path, document.FromValue(expected).Repr(),
	)))
}

// FieldIn checks that path resolves to one of allowed.
func FieldIn(
	r *Report,
	doc document.Node,
	path string,
	allowed []any,
	label string,
) bool {
	return evaluate(r, doc, assertion.Definition{
		Type: "in", Target: path, Values: allowed,
	}, nameOr(label, fmt.Sprintf(
		"field '%s' in %s", path, document.FromValue(allowed).Repr(),
	)))
}

// FieldNonEmpty checks that path resolves to a truthy value.
func FieldNonEmpty(r *Report, doc document.Node, path, label string) bool {
	return evaluate(r, doc, assertion.Definition{
		Type: "not_empty", Target: path,
	}, nameOr(label, fmt.Sprintf("field '%s' is non-empty", path)))
}

// FieldGTE checks that path resolves to a number of at least
// minimum. Values that cannot be read as numbers fail with a
// "not numeric" detail.
func FieldGTE(
	r *Report,
	doc document.Node,
	path string,
	minimum float64,
	label string,
) bool {
	return evaluate(r, doc, assertion.Definition{
		Type: "gte", Target: path, Value: minimum,
	}, nameOr(label, fmt.Sprintf(
		"field '%s' >= %s", path,
		strconv.FormatFloat(minimum, 'f', -1, 64),
	)))
}

// ListMinLength checks that path resolves to a sequence with at
// least minimum entries.
func ListMinLength(
	r *Report,
	doc document.Node,
	path string,
	minimum int,
	label string,
) bool {
	return evaluate(r, doc, assertion.Definition{
		Type: "min_length", Target: path, Value: minimum,
	}, nameOr(label, fmt.Sprintf(
		"field '%s' has >= %d entries", path, minimum,
	)))
}

// GlobCount checks that pattern matches at least minimum paths
// under dir and returns the matches.
func GlobCount(
	r *Report,
	dir, pattern string,
	minimum int,
	label string,
) []string {
	matches := Glob(dir, pattern)
	r.Add(
		nameOr(label, fmt.Sprintf(
			"glob '%s' matches >= %d files", pattern, minimum,
		)),
		len(matches) >= minimum,
		fmt.Sprintf("found %d", len(matches)),
	)
	return matches
}

// Assert evaluates an arbitrary assertion against doc and
// records it under name.
func Assert(
	r *Report,
	doc document.Node,
	def assertion.Definition,
	name string,
) bool {
	return evaluate(r, doc, def, nameOr(name, nameOr(
		def.Message, fmt.Sprintf("%s '%s'", def.Type, def.Target),
	)))
}

func evaluate(
	r *Report,
	doc document.Node,
	def assertion.Definition,
	name string,
) bool {
	value, _ := document.Resolve(doc, def.Target)
	res := fields.Evaluate(def, value)
	r.Add(name, res.Passed, res.Message)
	return res.Passed
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
