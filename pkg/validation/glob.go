package validation

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// Glob returns the sorted paths under dir matching pattern. A
// leading "**/" matches the rest of the pattern in dir and in
// every directory below it. Hidden files match like any other.
// Patterns use forward slashes and apply below dir only, so
// metacharacters in dir itself are taken literally.
func Glob(dir, pattern string) []string {
	if dir == "" {
		dir = "."
	}
	fsys := os.DirFS(dir)
	rest, recursive := strings.CutPrefix(pattern, "**/")
	if !recursive {
		matches, _ := fs.Glob(fsys, pattern)
		return under(dir, matches)
	}

	var rel []string
	_ = fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		matches, _ := fs.Glob(fsys, path.Join(p, rest))
		rel = append(rel, matches...)
		return nil
	})
	return under(dir, rel)
}

// under joins slash-separated paths relative to dir, dropping
// duplicates, and sorts the result.
func under(dir string, rel []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(rel))
	for _, m := range rel {
		p := filepath.Join(dir, filepath.FromSlash(m))
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// Search returns the sorted, de-duplicated union of Glob over
// several patterns.
func Search(dir string, patterns ...string) []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range patterns {
		for _, m := range Glob(dir, p) {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	sort.Strings(out)
	return out
}
