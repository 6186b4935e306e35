package runner

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"digital.vasic.harness/pkg/logging"
	"digital.vasic.harness/pkg/registry"
	"digital.vasic.harness/pkg/workflow"
)

// fakeAgent records requests and answers with respond.
type fakeAgent struct {
	mu      sync.Mutex
	calls   []AgentRequest
	respond func(ctx context.Context, req AgentRequest) (*AgentOutput, error)
}

func (f *fakeAgent) Run(ctx context.Context, req AgentRequest) (*AgentOutput, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	if f.respond == nil {
		return &AgentOutput{Output: "done\nVERDICT: PASS\n"}, nil
	}
	return f.respond(ctx, req)
}

func (f *fakeAgent) requests() []AgentRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]AgentRequest, len(f.calls))
	copy(out, f.calls)
	return out
}

func replying(output string, exitCode int) *fakeAgent {
	return &fakeAgent{respond: func(context.Context, AgentRequest) (*AgentOutput, error) {
		return &AgentOutput{Output: output, ExitCode: exitCode}, nil
	}}
}

func def(name string) workflow.Definition {
	return workflow.Definition{
		Name:     name,
		Category: workflow.CategorySmoke,
		Timeout:  time.Minute,
		MaxTurns: 5,
		Prompt:   workflow.Prompt{Skill: name, Smoke: true},
	}
}

func newRegistry(t *testing.T, defs ...workflow.Definition) *registry.DefaultRegistry {
	t.Helper()
	reg := registry.NewRegistry()
	for _, d := range defs {
		require.NoError(t, reg.Register(d))
	}
	return reg
}

func writeFileSetup(rel, content string) workflow.SetupFunc {
	return func(_ context.Context, dir string) error {
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		return os.WriteFile(path, []byte(content), 0o644)
	}
}

// commandRecorder keeps command logs.
type commandRecorder struct {
	logging.NullLogger
	mu       sync.Mutex
	commands []logging.CommandLog
}

func (c *commandRecorder) LogCommand(entry logging.CommandLog) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.commands = append(c.commands, entry)
}
