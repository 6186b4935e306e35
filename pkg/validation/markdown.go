package validation

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownHeadings checks that the markdown file at path has at
// least minimum headings of any level.
func MarkdownHeadings(r *Report, path string, minimum int, label string) bool {
	name := nameOr(label, fmt.Sprintf(
		"%s has >= %d headings", filepath.Base(path), minimum,
	))

	src, err := os.ReadFile(path)
	if err != nil {
		r.Add(name, false, "not found: "+path)
		return false
	}

	count := CountHeadings(src)
	ok := count >= minimum
	r.Add(name, ok, fmt.Sprintf("found %d heading(s)", count))
	return ok
}

// CountHeadings returns the number of ATX and setext headings in
// a markdown source.
func CountHeadings(src []byte) int {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	count := 0
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering && n.Kind() == ast.KindHeading {
			count++
		}
		return ast.WalkContinue, nil
	})
	return count
}
