package cmd

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.harness/pkg/monitor"
)

func TestStatus_ReadsMonitor(t *testing.T) {
	c := monitor.NewEventCollector()
	srv := monitor.NewServer("", c, monitor.NewDashboard("run-status"))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	c.Emit(monitor.TestEvent{Type: monitor.EventStarted, Name: "bugfix"})
	c.Emit(monitor.TestEvent{Type: monitor.EventFailed, Name: "bugfix", Passed: 2, Total: 4, Message: "tests failing"})
	c.Emit(monitor.TestEvent{Type: monitor.EventStarted, Name: "analyze"})

	cfg, _ := workspace(t, "true")
	res := execute(t, "--config", cfg, "status", "--addr", ts.URL)

	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Run run-status: running")
	assert.Contains(t, res.stdout, "2 tests: 0 passed, 1 failed")
	assert.Contains(t, res.stdout, "1 running")
	assert.Contains(t, res.stdout, "2/4")
	assert.Contains(t, res.stdout, "tests failing")
}

func TestStatus_NoAddress(t *testing.T) {
	cfg, _ := workspace(t, "true")
	res := execute(t, "--config", cfg, "status")

	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "no monitor address")
}
