package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.harness/pkg/assertion"
	"digital.vasic.harness/pkg/monitor"
	"digital.vasic.harness/pkg/registry"
	"digital.vasic.harness/pkg/shell"
	"digital.vasic.harness/pkg/workflow"
)

func TestNewRunner_Defaults(t *testing.T) {
	r := NewRunner()
	assert.NotEmpty(t, r.RunID())
	assert.NotNil(t, r.registry)
	assert.NotNil(t, r.validators)
	assert.Equal(t, "harness", r.executable)
	assert.Equal(t, 1, r.concurrency)

	fixed := NewRunner(WithRunID("run-1"), WithConcurrency(-3))
	assert.Equal(t, "run-1", fixed.RunID())
	assert.Equal(t, 1, fixed.concurrency)
}

func TestRun_NotFound(t *testing.T) {
	r := NewRunner(WithWorkDir(t.TempDir()))
	_, err := r.Run(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, registry.ErrNotFound))
}

func TestRun_VerdictDecidesWithoutValidator(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		exitCode int
		status   string
		verdict  string
	}{
		{"pass", "all good\nVERDICT: PASS", 0, workflow.StatusPassed, "PASS"},
		{"fail", "VERDICT: FAIL", 0, workflow.StatusFailed, "FAIL"},
		{"no verdict", "crashed", 0, workflow.StatusFailed, ""},
		{"pass but non-zero exit", "VERDICT: PASS", 3, workflow.StatusFailed, "PASS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			work := t.TempDir()
			r := NewRunner(
				WithRegistry(newRegistry(t, def("help"))),
				WithAgent(replying(tt.output, tt.exitCode)),
				WithWorkDir(work),
			)

			res, err := r.Run(context.Background(), "help")
			require.NoError(t, err)
			assert.Equal(t, tt.status, res.Status)
			assert.Equal(t, tt.verdict, res.Verdict)
			assert.Equal(t, tt.exitCode, res.AgentExitCode)
			assert.Nil(t, res.Report)
			assert.Equal(t, r.RunID(), res.RunID)
			assert.Equal(t, work, filepath.Dir(res.Sandbox))
			assert.True(t, strings.HasPrefix(filepath.Base(res.Sandbox), "help-"))
			assert.Len(t, filepath.Base(res.Sandbox), len("help-")+8)
			assert.False(t, res.EndTime.Before(res.StartTime))
		})
	}
}

func TestRun_AgentRequest(t *testing.T) {
	agent := &fakeAgent{}
	d := def("doctor")
	d.MaxTurns = 7
	r := NewRunner(
		WithRegistry(newRegistry(t, d)),
		WithAgent(agent),
		WithWorkDir(t.TempDir()),
		WithExecutable("hx"),
	)

	res, err := r.Run(context.Background(), "doctor")
	require.NoError(t, err)

	calls := agent.requests()
	require.Len(t, calls, 1)
	assert.Equal(t, 7, calls[0].MaxTurns)
	assert.Equal(t, d.Timeout, calls[0].Timeout)
	assert.Equal(t, res.Sandbox, calls[0].Dir)
	assert.Equal(t, "doctor", calls[0].Test)
	assert.Equal(t, r.RunID(), calls[0].RunID)
	assert.Contains(t, calls[0].Prompt, "/doctor")
	assert.Contains(t, calls[0].Prompt, "VERDICT: PASS")
}

func TestRun_AgentTimeout(t *testing.T) {
	agent := &fakeAgent{respond: func(context.Context, AgentRequest) (*AgentOutput, error) {
		return &AgentOutput{Output: "partial", ExitCode: -1},
			fmt.Errorf("%w: claude", shell.ErrTimeout)
	}}
	r := NewRunner(
		WithRegistry(newRegistry(t, def("status-dash"))),
		WithAgent(agent),
		WithWorkDir(t.TempDir()),
	)

	res, err := r.Run(context.Background(), "status-dash")
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusTimedOut, res.Status)
	assert.Contains(t, res.Error, "timed out after 1m0s")
	assert.Equal(t, -1, res.AgentExitCode)
}

func TestRun_AgentLaunchError(t *testing.T) {
	agent := &fakeAgent{respond: func(context.Context, AgentRequest) (*AgentOutput, error) {
		return nil, errors.New("executable not found")
	}}
	r := NewRunner(
		WithRegistry(newRegistry(t, def("help"))),
		WithAgent(agent),
		WithWorkDir(t.TempDir()),
	)

	res, err := r.Run(context.Background(), "help")
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusError, res.Status)
	assert.Contains(t, res.Error, "executable not found")
	assert.Equal(t, -1, res.AgentExitCode)
}

func TestRun_NoAgent(t *testing.T) {
	r := NewRunner(
		WithRegistry(newRegistry(t, def("help"))),
		WithWorkDir(t.TempDir()),
	)

	res, err := r.Run(context.Background(), "help")
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusError, res.Status)
	assert.Equal(t, "no agent configured", res.Error)
}

func TestRun_SetupFailureSkipsAgent(t *testing.T) {
	d := def("pm")
	d.SetupName = "broken"
	d.Setup = func(context.Context, string) error { return errors.New("no templates") }
	agent := &fakeAgent{}
	r := NewRunner(
		WithRegistry(newRegistry(t, d)),
		WithAgent(agent),
		WithWorkDir(t.TempDir()),
	)

	res, err := r.Run(context.Background(), "pm")
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusError, res.Status)
	assert.Equal(t, "setup failed: no templates", res.Error)
	assert.Empty(t, agent.requests())
}

func TestRun_ValidatorReportDecides(t *testing.T) {
	d := def("init-greenfield")
	d.Prompt.Smoke = false
	d.Validator = &workflow.Invocation{
		Name: "init", Args: []string{"TestProject", "greenfield", "python"},
	}
	r := NewRunner(
		WithRegistry(newRegistry(t, d)),
		WithAgent(replying("VERDICT: PASS", 0)),
		WithWorkDir(t.TempDir()),
	)

	res, err := r.Run(context.Background(), "init-greenfield")
	require.NoError(t, err)

	require.NotNil(t, res.Report)
	assert.Equal(t, workflow.StatusFailed, res.Status,
		"an empty sandbox fails validation whatever the agent claims")
	assert.Greater(t, res.Report.Failed(), 0)
	assert.Equal(t, "PASS", res.Verdict)
}

func TestRun_ValidatorUsageError(t *testing.T) {
	d := def("dev")
	d.Validator = &workflow.Invocation{Name: "dev"}
	r := NewRunner(
		WithRegistry(newRegistry(t, d)),
		WithAgent(&fakeAgent{}),
		WithWorkDir(t.TempDir()),
	)

	res, err := r.Run(context.Background(), "dev")
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusError, res.Status)
	assert.Contains(t, res.Error, "usage error")
}

func TestRun_ExtraChecks(t *testing.T) {
	d := def("settings")
	d.Setup = writeFileSetup(".state/settings.yml",
		"project:\n  name: TestProject\n  language: python\n")
	d.Checks = []workflow.DocumentAssertion{
		{File: ".state/settings.yml", Definition: assertion.Definition{
			Type: "equals", Target: "project.name", Value: "TestProject",
		}},
		{File: ".state/settings.yml", Definition: assertion.Definition{
			Type: "not_empty", Target: "project.language",
		}},
	}
	r := NewRunner(
		WithRegistry(newRegistry(t, d)),
		WithAgent(replying("VERDICT: FAIL", 0)),
		WithWorkDir(t.TempDir()),
	)

	res, err := r.Run(context.Background(), "settings")
	require.NoError(t, err)
	require.NotNil(t, res.Report)
	assert.Equal(t, "settings", res.Report.Workflow())
	assert.Equal(t, 3, res.Report.Total())
	assert.True(t, res.Report.AllPassed())
	assert.Equal(t, workflow.StatusPassed, res.Status,
		"checks decide over the verdict")
}

func TestRun_ExtraChecks_Compound(t *testing.T) {
	d := def("review")
	d.Setup = writeFileSetup(".state/review.yml",
		"finding:\n  severity: P1\n  description: slow query\n")
	d.Checks = []workflow.DocumentAssertion{
		{File: ".state/review.yml", Definition: assertion.Definition{
			Type: "all", Target: "finding",
			Assertions: []assertion.Definition{
				{Type: "in", Target: "severity", Values: []any{"P0", "P1"}},
				{Type: "any", Assertions: []assertion.Definition{
					{Type: "not_empty", Target: "issue"},
					{Type: "not_empty", Target: "description"},
				}},
			},
		}},
		{File: ".state/review.yml", Definition: assertion.Definition{
			Type: "all", Target: "finding",
			Assertions: []assertion.Definition{
				{Type: "equals", Target: "severity", Value: "P0"},
			},
		}},
	}
	r := NewRunner(
		WithRegistry(newRegistry(t, d)),
		WithAgent(&fakeAgent{}),
		WithWorkDir(t.TempDir()),
	)

	res, err := r.Run(context.Background(), "review")
	require.NoError(t, err)
	require.NotNil(t, res.Report)
	assert.Equal(t, 3, res.Report.Total())
	assert.Equal(t, 2, res.Report.Passed())
	assert.Equal(t, workflow.StatusFailed, res.Status)
}

func TestRun_ExtraChecks_MissingFile(t *testing.T) {
	d := def("settings")
	d.Checks = []workflow.DocumentAssertion{
		{File: "absent.yml", Definition: assertion.Definition{
			Type: "exists", Target: "x",
		}},
	}
	r := NewRunner(
		WithRegistry(newRegistry(t, d)),
		WithAgent(&fakeAgent{}),
		WithWorkDir(t.TempDir()),
	)

	res, err := r.Run(context.Background(), "settings")
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusFailed, res.Status)
	assert.Equal(t, 1, res.Report.Total())
}

func TestRun_Hooks(t *testing.T) {
	var seen []string
	pre := func(_ context.Context, d workflow.Definition, res *workflow.Result) error {
		seen = append(seen, "pre:"+d.Name+":"+res.Status)
		assert.NotEmpty(t, res.Sandbox)
		return nil
	}
	post := func(_ context.Context, d workflow.Definition, res *workflow.Result) error {
		seen = append(seen, "post:"+d.Name+":"+res.Status)
		return errors.New("ignored")
	}
	r := NewRunner(
		WithRegistry(newRegistry(t, def("help"))),
		WithAgent(&fakeAgent{}),
		WithWorkDir(t.TempDir()),
		WithPreHook(pre),
		WithPostHook(post),
	)

	res, err := r.Run(context.Background(), "help")
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusPassed, res.Status)
	assert.Equal(t, []string{"pre:help:running", "post:help:passed"}, seen)
}

func TestRun_PreHookFailure(t *testing.T) {
	agent := &fakeAgent{}
	r := NewRunner(
		WithRegistry(newRegistry(t, def("help"))),
		WithAgent(agent),
		WithWorkDir(t.TempDir()),
		WithPreHook(func(context.Context, workflow.Definition, *workflow.Result) error {
			return errors.New("quota exceeded")
		}),
	)

	res, err := r.Run(context.Background(), "help")
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusError, res.Status)
	assert.Equal(t, "pre-hook failed: quota exceeded", res.Error)
	assert.Empty(t, agent.requests())
}

func TestRun_EmitsEvents(t *testing.T) {
	collector := monitor.NewEventCollector()
	d := def("help")
	d.Setup = writeFileSetup("marker", "x")
	d.SetupName = "marker"
	r := NewRunner(
		WithRegistry(newRegistry(t, d)),
		WithAgent(&fakeAgent{}),
		WithWorkDir(t.TempDir()),
		WithCollector(collector),
	)

	_, err := r.Run(context.Background(), "help")
	require.NoError(t, err)

	var types []monitor.EventType
	for _, e := range collector.Events() {
		types = append(types, e.Type)
		assert.Equal(t, "help", e.Name)
		assert.Equal(t, r.RunID(), e.RunID)
	}
	assert.Equal(t, []monitor.EventType{
		monitor.EventStarted, monitor.EventSetup,
		monitor.EventAgent, monitor.EventCompleted,
	}, types)
	assert.Equal(t, 1, collector.Stats().Passed)
}

func TestRun_Transcript(t *testing.T) {
	results := t.TempDir()
	r := NewRunner(
		WithRegistry(newRegistry(t, def("help"))),
		WithAgent(replying("transcript body\nVERDICT: PASS", 0)),
		WithWorkDir(t.TempDir()),
		WithResultsDir(results),
		WithRunID("run-42"),
	)

	res, err := r.Run(context.Background(), "help")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(results, "run-42", "help.log"), res.Transcript)
	data, err := os.ReadFile(res.Transcript)
	require.NoError(t, err)
	assert.Contains(t, string(data), "transcript body")
}

func TestRun_CleanupKeepsFailures(t *testing.T) {
	work := t.TempDir()
	reg := newRegistry(t, def("good"), def("bad"))
	agent := &fakeAgent{respond: func(_ context.Context, req AgentRequest) (*AgentOutput, error) {
		if req.Test == "bad" {
			return &AgentOutput{Output: "VERDICT: FAIL"}, nil
		}
		return &AgentOutput{Output: "VERDICT: PASS"}, nil
	}}
	r := NewRunner(
		WithRegistry(reg), WithAgent(agent),
		WithWorkDir(work), WithCleanup(true),
	)

	good, err := r.Run(context.Background(), "good")
	require.NoError(t, err)
	bad, err := r.Run(context.Background(), "bad")
	require.NoError(t, err)

	assert.NoDirExists(t, good.Sandbox)
	assert.DirExists(t, bad.Sandbox)
}
