package sandbox

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// StateDir is the directory inside a sandbox holding the agent's
// structured project state.
const StateDir = ".state"

// InstructionsFile is the agent-readable instructions file at
// the sandbox root and inside the state directory.
const InstructionsFile = "AGENTS.md"

// TestLogFile is the event log the agent is told to append to.
const TestLogFile = ".harness-test.log"

// documentExts are tried in order when locating a document whose
// extension is not fixed.
var documentExts = []string{".yml", ".yaml", ".json", ".toml"}

// Layout resolves the well-known paths of a sandbox.
type Layout struct {
	Root string
}

// NewLayout returns the layout of the sandbox rooted at root.
func NewLayout(root string) Layout { return Layout{Root: root} }

// State returns the state directory.
func (l Layout) State() string { return filepath.Join(l.Root, StateDir) }

// StatePath joins elem onto the state directory.
func (l Layout) StatePath(elem ...string) string {
	return filepath.Join(append([]string{l.State()}, elem...)...)
}

// Stories returns the stories directory.
func (l Layout) Stories() string { return l.StatePath("stories") }

// StoryDir returns the working directory of one story.
func (l Layout) StoryDir(id string) string {
	return filepath.Join(l.Stories(), id)
}

// StoryFile returns the record of one story.
func (l Layout) StoryFile(id string) string {
	return Document(filepath.Join(l.Stories(), id))
}

// Handoff returns the handoff record of one story.
func (l Layout) Handoff(id string) string {
	return Document(filepath.Join(l.StoryDir(id), "handoff"))
}

// Settings returns the project settings document.
func (l Layout) Settings() string {
	return Document(l.StatePath("settings"))
}

// Sprints returns the sprint plan document.
func (l Layout) Sprints() string {
	return Document(l.StatePath("sprints"))
}

// Memory returns the directory of the append-only memory logs.
func (l Layout) Memory() string { return l.StatePath("memory") }

// MemoryLog returns one memory log (decisions, lessons,
// principles).
func (l Layout) MemoryLog(name string) string {
	return Document(filepath.Join(l.Memory(), name))
}

// Analysis returns the codebase analysis directory.
func (l Layout) Analysis() string { return l.StatePath("analysis") }

// Designs returns the design documents directory.
func (l Layout) Designs() string { return l.StatePath("designs") }

// Instructions returns the root instructions file.
func (l Layout) Instructions() string {
	return filepath.Join(l.Root, InstructionsFile)
}

// StoryIDs returns the sorted ids of all ST-* stories, whether
// recorded as a document or as a story directory.
func (l Layout) StoryIDs() []string {
	entries, err := os.ReadDir(l.Stories())
	if err != nil {
		return nil
	}

	seen := map[string]bool{}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, "ST-") {
			continue
		}
		id := name
		if !e.IsDir() {
			ext := filepath.Ext(name)
			if !isDocumentExt(ext) {
				continue
			}
			id = strings.TrimSuffix(name, ext)
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// StoryFiles returns the sorted ST-* story documents.
func (l Layout) StoryFiles() []string {
	entries, err := os.ReadDir(l.Stories())
	if err != nil {
		return nil
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), "ST-") {
			continue
		}
		if isDocumentExt(filepath.Ext(e.Name())) {
			files = append(files, filepath.Join(l.Stories(), e.Name()))
		}
	}
	sort.Strings(files)
	return files
}

// Document returns the first existing file named base plus one
// of the document extensions, or base+".yml" when none exists.
func Document(base string) string {
	for _, ext := range documentExts {
		p := base + ext
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return base + documentExts[0]
}

func isDocumentExt(ext string) bool {
	ext = strings.ToLower(ext)
	for _, e := range documentExts {
		if e == ext {
			return true
		}
	}
	return false
}
