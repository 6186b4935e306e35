package validation

// Candidate is one place an artifact may live: an exact file, or
// a directory searched with name patterns.
type Candidate struct {
	Path     string
	Patterns []string
}

// File is a candidate matching an exact file path.
func File(path string) Candidate { return Candidate{Path: path} }

// Dir is a candidate matching any entry of dir named by one of
// patterns.
func Dir(dir string, patterns ...string) Candidate {
	return Candidate{Path: dir, Patterns: patterns}
}

// FirstMatch returns the first candidate that exists, in order.
// A file candidate matches itself; a directory candidate matches
// its first entry named by a pattern.
func FirstMatch(candidates ...Candidate) (string, bool) {
	for _, c := range candidates {
		if isFile(c.Path) {
			return c.Path, true
		}
		if len(c.Patterns) == 0 || !isDir(c.Path) {
			continue
		}
		for _, p := range c.Patterns {
			if m := Glob(c.Path, p); len(m) > 0 {
				return m[0], true
			}
		}
	}
	return "", false
}

// Found records a presence-by-search check: it passes when any
// candidate exists and returns the match.
func Found(
	r *Report,
	name, detail string,
	candidates ...Candidate,
) (string, bool) {
	path, ok := FirstMatch(candidates...)
	r.Add(name, ok, detail)
	return path, ok
}
