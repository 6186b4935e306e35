package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type execResult struct {
	code   int
	stdout string
	stderr string
}

func execute(t *testing.T, args ...string) execResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Execute(context.Background(), args, &stdout, &stderr)
	return execResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

// workspace writes a harness.yaml that keeps every path inside a
// temp dir and returns the config path and the dir.
func workspace(t *testing.T, agentCommand string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := fmt.Sprintf(`work_dir: %[1]s/work
results_dir: %[1]s/results
history_file: %[1]s/results/history.jsonl
definitions_dir: %[1]s/definitions
agent:
  command: %[2]q
  env_file: %[1]s/.env
log:
  level: warn
`, dir, agentCommand)
	path := filepath.Join(dir, "harness.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0644))
	return path, dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}
