package validation

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCommand(t *testing.T) {
	tests := []struct {
		name    string
		argv    []string
		timeout time.Duration
		passed  bool
		detail  string
	}{
		{
			name:   "success",
			argv:   []string{"sh", "-c", "echo ok"},
			passed: true,
		},
		{
			name: "non-zero exit keeps last line",
			argv: []string{"sh", "-c",
				"echo 'collected 2 items'; echo '1 failed, 1 passed in 0.02s'; echo; exit 1"},
			detail: "1 failed, 1 passed in 0.02s",
		},
		{
			name:   "silent failure",
			argv:   []string{"sh", "-c", "exit 4"},
			detail: "exit code 4",
		},
		{
			name:   "launch failure",
			argv:   []string{"no-such-binary-for-harness"},
			detail: "command error: ",
		},
		{
			name:    "timeout",
			argv:    []string{"sleep", "5"},
			timeout: 100 * time.Millisecond,
			detail:  "command error: command timed out",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReport("cmd")
			ok := Command(context.Background(), r,
				"tests pass after fix", t.TempDir(), tt.timeout, tt.argv)

			assert.Equal(t, tt.passed, ok)
			c := lastCheck(r)
			assert.Equal(t, "tests pass after fix", c.Name)
			assert.True(t, strings.HasPrefix(c.Detail, tt.detail),
				"detail %q", c.Detail)
			if tt.passed {
				assert.Empty(t, c.Detail)
			}
		})
	}
}

func TestCommand_ReportKeepsGoing(t *testing.T) {
	r := NewReport("bugfix")
	Command(context.Background(), r, "tests", t.TempDir(), time.Second,
		[]string{"sh", "-c", "exit 1"})
	r.Add("after", true, "")

	assert.Equal(t, 2, r.Total())
	assert.Equal(t, 1, r.Failed())
}
