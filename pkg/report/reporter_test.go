package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.harness/pkg/workflow"
)

func TestNewReporter(t *testing.T) {
	tests := []struct {
		format string
		ext    string
	}{
		{"json", "json"},
		{"markdown", "md"},
		{"md", "md"},
		{"html", "html"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			r, err := NewReporter(tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.ext, r.Extension())
		})
	}

	_, err := NewReporter("pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown report format "pdf"`)
}

func TestJSONReporter_GenerateReport(t *testing.T) {
	data, err := NewJSONReporter(false).GenerateReport(failedResult("pm"))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "pm", decoded["name"])
	assert.Equal(t, "failed", decoded["status"])
	report := decoded["report"].(map[string]any)
	assert.Equal(t, float64(1), report["passed"])
	assert.Equal(t, float64(2), report["total"])
	assert.Equal(t, false, report["all_passed"])
}

func TestJSONReporter_MasterSummary(t *testing.T) {
	data, err := NewJSONReporter(true).GenerateMasterSummary([]*workflow.Result{
		passedResult("a"), failedResult("b"), timedOutResult("c"),
	})
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  ")

	var decoded jsonMasterSummary
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 3, decoded.Total)
	assert.Equal(t, 1, decoded.Passed)
	assert.Equal(t, 2, decoded.Failed)
	require.Len(t, decoded.Results, 3)
	assert.Equal(t, 2, decoded.Results[1].Report.Total())
}

func TestMarkdownReporter_WriteReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewMarkdownReporter().WriteReport(&buf, failedResult("pm")))
	md := buf.String()

	assert.Contains(t, md, "# pm: FAILED")
	assert.Contains(t, md, "| Verdict | FAIL |")
	assert.Contains(t, md, "[FAIL] pm: 1/2 checks passed")
	assert.Contains(t, md, "- [x] prd.md exists\n")
	assert.Contains(t, md, "- [ ] prd.md has 3+ sections -- found 1 <heading|pipe>\n")
}

func TestMarkdownReporter_EscapesError(t *testing.T) {
	res := timedOutResult("help")
	res.Error = "a|b\nc"
	data, err := NewMarkdownReporter().GenerateReport(res)
	require.NoError(t, err)
	assert.Contains(t, string(data), `| Error | a\|b c |`)
	assert.NotContains(t, string(data), "## Checks")
}

func TestHTMLReporter_EscapesContent(t *testing.T) {
	data, err := NewHTMLReporter().GenerateReport(failedResult("pm"))
	require.NoError(t, err)
	html := string(data)

	assert.Contains(t, html, "<!DOCTYPE html>")
	assert.Contains(t, html, "<h1>Test Report: pm</h1>")
	assert.Contains(t, html, "found 1 &lt;heading|pipe&gt;")
	assert.Contains(t, html, `class="status-failed">FAIL`)
	assert.Contains(t, html, "</html>")
}

func TestHTMLReporter_MasterSummary(t *testing.T) {
	data, err := NewHTMLReporter().GenerateMasterSummary([]*workflow.Result{
		passedResult("init-greenfield"), failedResult("pm"),
	})
	require.NoError(t, err)
	html := string(data)
	assert.Contains(t, html, "<h1>Harness Run Summary</h1>")
	assert.Contains(t, html, "<td>init-greenfield</td>")
	assert.Contains(t, html, "<td>2/2</td>")
	assert.Contains(t, html, "<tr><td>Pass Rate</td><td>50%</td></tr>")
}

func TestWriteReports(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	paths, err := WriteReports(dir, NewMarkdownReporter(), []*workflow.Result{
		passedResult("a"), failedResult("b"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.md"),
		filepath.Join(dir, "b.md"),
		filepath.Join(dir, "summary.md"),
	}, paths)
	for _, p := range paths {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}
