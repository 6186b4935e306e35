package registry

import (
	"fmt"
	"sort"
	"strings"

	"digital.vasic.harness/pkg/workflow"
)

// topologicalSort orders definitions so each one follows the
// definition named by its After link, using Kahn's algorithm.
// Links to unregistered names impose no order. It returns an
// error if a cycle is detected.
func topologicalSort(
	defs map[string]workflow.Definition,
) ([]workflow.Definition, error) {
	inDegree := make(map[string]int, len(defs))
	followers := make(map[string][]string, len(defs))

	for name, d := range defs {
		if _, exists := inDegree[name]; !exists {
			inDegree[name] = 0
		}
		if _, registered := defs[d.After]; d.After != "" && registered {
			inDegree[name]++
			followers[d.After] = append(followers[d.After], name)
		}
	}

	// Seed the queue with zero-degree nodes, sorted for
	// deterministic output.
	var queue []string
	for name, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, name)
		}
	}
	sort.Strings(queue)

	ordered := make([]workflow.Definition, 0, len(defs))

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		ordered = append(ordered, defs[name])

		next := followers[name]
		sort.Strings(next)
		for _, f := range next {
			inDegree[f]--
			if inDegree[f] == 0 {
				queue = append(queue, f)
			}
		}
	}

	if len(ordered) != len(defs) {
		return nil, fmt.Errorf(
			"circular test chain detected: %s", detectCycle(defs),
		)
	}

	return ordered, nil
}

// detectCycle returns a human-readable description of a cycle
// of After links. Each definition has at most one After link, so
// walking the links from every start finds the cycle.
func detectCycle(defs map[string]workflow.Definition) string {
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)

	const (
		white = 0 // unvisited
		gray  = 1 // on the current walk
		black = 2 // finished
	)
	colour := make(map[string]int, len(defs))

	for _, start := range names {
		if colour[start] != white {
			continue
		}

		var path []string
		name := start
		for {
			if colour[name] == gray {
				// Trim the walk to the cycle itself.
				for i, p := range path {
					if p == name {
						cycle := append(path[i:], name)
						return strings.Join(cycle, " -> ")
					}
				}
			}
			if colour[name] == black {
				break
			}
			colour[name] = gray
			path = append(path, name)

			next := defs[name].After
			if _, ok := defs[next]; next == "" || !ok {
				break
			}
			name = next
		}
		for _, p := range path {
			colour[p] = black
		}
	}

	return "unknown cycle"
}
