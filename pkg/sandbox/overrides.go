package sandbox

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// overridesMarker opens the testing-mode block; it also keeps
// AppendOverrides idempotent.
const overridesMarker = "## Testing Mode: Automated Workflow Test"

// Overrides is the behavioural block appended to the sandbox
// instructions file. It bounds the agent's iteration counts and
// makes event logging to TestLogFile mandatory.
var Overrides = `

---

` + overridesMarker + `

This is an automated test run. The following overrides apply.

### Workflow Constraints
- **Quality review loops: 1 iteration maximum.** After the first review and fix pass, continue with the next workflow step whatever findings remain.
- **Story creation: 2 stories maximum.** Pick the 2 most representative stories.
- **Sprint planning: 1 sprint only.**
- **Do not ask the user for clarification.** Make reasonable assumptions and proceed.

### Observability: Mandatory Logging
Every agent, sub-agents included, MUST log major events to ` + "`" + TestLogFile + "`" + ` in the project root:
` + "```" + `
echo "[$(date +%H:%M:%S)] <event>" >> ` + TestLogFile + `
` + "```" + `

Events to log:
- Agent start: "[agent-name] started: <purpose>"
- Phase transition: "PHASE: <phase-name> started" / "PHASE: <phase-name> complete"
- Quality review: "QUALITY: reviewing <artifact>" / "QUALITY: verdict=<PASS|BLOCKED> findings=<count>"
- Quality fix: "QUALITY-FIX: fixing <count> findings in <artifact>"
- File write: "WRITE: <file-path>"
- Sprint allocation: "SPRINT: allocated <count> stories to <sprint-id>"
- Memory capture: "MEMORY: captured <count> lessons"
- Agent complete: "[agent-name] complete"
`

// AppendOverrides appends Overrides to the instructions file at
// path. It reports false without error when the file does not
// exist, and does not append a second copy.
func AppendOverrides(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read instructions: %w", err)
	}
	if strings.Contains(string(data), overridesMarker) {
		return true, nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		return false, fmt.Errorf("open instructions: %w", err)
	}
	if _, err := f.WriteString(Overrides); err != nil {
		f.Close()
		return false, fmt.Errorf("append overrides: %w", err)
	}
	return true, f.Close()
}
