package document

import "strings"

// Resolve walks a dot-separated path into nested mappings. The
// empty path resolves to node itself. If any segment is missing,
// or is applied to a node that is not a mapping, Resolve reports
// (Absent, false); it never panics.
func Resolve(node Node, path string) (Node, bool) {
	if path == "" {
		return node, true
	}

	current := node
	for _, segment := range strings.Split(path, ".") {
		next, ok := current.Get(segment)
		if !ok {
			return Node{}, false
		}
		current = next
	}
	return current, true
}
