package report

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"
	"time"

	"digital.vasic.harness/pkg/workflow"
)

// HTMLReporter generates standalone HTML reports.
type HTMLReporter struct{}

// NewHTMLReporter creates a new HTML reporter.
func NewHTMLReporter() *HTMLReporter { return &HTMLReporter{} }

func (r *HTMLReporter) Extension() string { return "html" }

func (r *HTMLReporter) GenerateReport(result *workflow.Result) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.WriteReport(&buf, result); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteReport writes an HTML report to the specified writer.
func (r *HTMLReporter) WriteReport(w io.Writer, result *workflow.Result) error {
	r.writeHeader(w, "Test Report: "+result.Name)
	fmt.Fprintf(w, "<h1>Test Report: %s</h1>\n", html.EscapeString(result.Name))
	r.writeSummaryTable(w, result)
	r.writeChecksSection(w, result)
	r.writeFooter(w)
	return nil
}

func statusClass(status string) string {
	if status == workflow.StatusPassed {
		return "status-passed"
	}
	return "status-failed"
}

func (r *HTMLReporter) writeSummaryTable(w io.Writer, result *workflow.Result) {
	fmt.Fprintln(w, "<h2>Summary</h2>")
	fmt.Fprintln(w, "<table>")
	fmt.Fprintln(w, "<tr><th>Field</th><th>Value</th></tr>")
	fmt.Fprintf(w, "<tr><td>Status</td><td class=\"%s\"><strong>%s</strong></td></tr>\n",
		statusClass(result.Status), strings.ToUpper(result.Status))
	row := func(k, v string) {
		fmt.Fprintf(w, "<tr><td>%s</td><td>%s</td></tr>\n", k, html.EscapeString(v))
	}
	row("Category", result.Category)
	row("Sandbox", result.Sandbox)
	row("Start Time", result.StartTime.Format(time.RFC3339))
	row("Duration", result.Duration.Round(time.Millisecond).String())
	row("Agent Exit Code", fmt.Sprint(result.AgentExitCode))
	if result.Verdict != "" {
		row("Verdict", result.Verdict)
	}
	if result.Error != "" {
		fmt.Fprintf(w, "<tr><td>Error</td><td class=\"status-failed\">%s</td></tr>\n",
			html.EscapeString(result.Error))
	}
	fmt.Fprintln(w, "</table>")
}

func (r *HTMLReporter) writeChecksSection(w io.Writer, result *workflow.Result) {
	if result.Report == nil {
		return
	}
	fmt.Fprintf(w, "<h2>Checks</h2>\n<p>%s</p>\n", html.EscapeString(result.Report.Summary()))
	fmt.Fprintln(w, "<table>")
	fmt.Fprintln(w, "<tr><th>Check</th><th>Result</th><th>Detail</th></tr>")
	for _, c := range result.Report.Checks() {
		cls, label := "status-passed", "PASS"
		if !c.Passed {
			cls, label = "status-failed", "FAIL"
		}
		fmt.Fprintf(w, "<tr><td>%s</td><td class=\"%s\">%s</td><td>%s</td></tr>\n",
			html.EscapeString(c.Name), cls, label, html.EscapeString(c.Detail))
	}
	fmt.Fprintln(w, "</table>")
}

// GenerateMasterSummary creates an HTML summary of all results.
func (r *HTMLReporter) GenerateMasterSummary(results []*workflow.Result) ([]byte, error) {
	var buf bytes.Buffer
	summary := BuildMasterSummary(results)

	r.writeHeader(&buf, "Harness Run Summary")
	fmt.Fprintln(&buf, "<h1>Harness Run Summary</h1>")
	fmt.Fprintf(&buf, "<p><strong>Generated:</strong> %s</p>\n",
		summary.GeneratedAt.Format(time.RFC3339))

	fmt.Fprintln(&buf, "<h2>Overview</h2>")
	fmt.Fprintln(&buf, "<table>")
	fmt.Fprintln(&buf, "<tr><th>Test</th><th>Category</th><th>Status</th><th>Checks</th><th>Duration</th></tr>")
	for _, t := range summary.Tests {
		fmt.Fprintf(&buf, "<tr><td>%s</td><td>%s</td><td class=\"%s\">%s</td><td>%d/%d</td><td>%v</td></tr>\n",
			html.EscapeString(t.Name), html.EscapeString(t.Category),
			statusClass(t.Status), strings.ToUpper(t.Status),
			t.ChecksPassed, t.ChecksTotal, t.Duration.Round(time.Millisecond))
	}
	fmt.Fprintln(&buf, "</table>")

	fmt.Fprintln(&buf, "<h2>Statistics</h2>")
	fmt.Fprintln(&buf, "<table>")
	for _, s := range summary.stats() {
		fmt.Fprintf(&buf, "<tr><td>%s</td><td>%s</td></tr>\n", s[0], s[1])
	}
	fmt.Fprintln(&buf, "</table>")

	r.writeFooter(&buf)
	return buf.Bytes(), nil
}

func (r *HTMLReporter) writeHeader(w io.Writer, title string) {
	fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>%s</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; margin-bottom: 1em; }
th, td { border: 1px solid #ccc; padding: 4px 8px; text-align: left; }
.status-passed { color: #2e7d32; }
.status-failed { color: #c62828; }
</style>
</head>
<body>
`, html.EscapeString(title))
}

func (r *HTMLReporter) writeFooter(w io.Writer) {
	fmt.Fprintln(w, "</body>\n</html>")
}
