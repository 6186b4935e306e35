package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"digital.vasic.harness/pkg/document"
)

// DocumentFields checks that path is a file that parses and that
// each dot-path in required exists. Check names are prefixed with
// label, or the file name when label is empty. It returns the
// parsed document and false when the file is missing, invalid or
// empty.
func DocumentFields(
	r *Report,
	path string,
	required []string,
	label string,
) (document.Node, bool) {
	prefix := nameOr(label, filepath.Base(path))

	if !IsFile(r, path, prefix+" exists") {
		return document.Node{}, false
	}
	doc, ok := ValidDocument(r, path, fmt.Sprintf(
		"%s valid %s", prefix,
		strings.ToUpper(string(document.FormatForPath(path))),
	))
	if !ok || doc.Kind() == document.Null {
		return doc, false
	}

	for _, f := range required {
		FieldExists(r, doc, f, fmt.Sprintf("%s: '%s' exists", prefix, f))
	}
	return doc, true
}

// AllDocumentsInDir checks that every YAML file directly inside
// dir parses. A missing directory is a single failing check.
func AllDocumentsInDir(r *Report, dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		r.Add(fmt.Sprintf("directory %s exists", dir), false, "not found")
		return
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yml", ".yaml":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		ValidDocument(r, filepath.Join(dir, name), name+" valid YAML")
	}
}
