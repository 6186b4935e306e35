package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"digital.vasic.harness/pkg/workflow"
)

// MarkdownReporter renders results as GitHub-flavoured
// Markdown.
type MarkdownReporter struct{}

// NewMarkdownReporter creates a new Markdown reporter.
func NewMarkdownReporter() *MarkdownReporter { return &MarkdownReporter{} }

func (r *MarkdownReporter) Extension() string { return "md" }

func (r *MarkdownReporter) GenerateReport(result *workflow.Result) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.WriteReport(&buf, result); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteReport writes the result header, the run facts and every
// check of its validation report.
func (r *MarkdownReporter) WriteReport(w io.Writer, result *workflow.Result) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s: %s\n\n", result.Name, strings.ToUpper(result.Status))
	sb.WriteString("| Field | Value |\n|-------|-------|\n")
	fmt.Fprintf(&sb, "| Category | %s |\n", result.Category)
	fmt.Fprintf(&sb, "| Run ID | %s |\n", result.RunID)
	fmt.Fprintf(&sb, "| Sandbox | `%s` |\n", result.Sandbox)
	fmt.Fprintf(&sb, "| Duration | %v |\n", result.Duration.Round(time.Millisecond))
	fmt.Fprintf(&sb, "| Agent exit code | %d |\n", result.AgentExitCode)
	if result.Verdict != "" {
		fmt.Fprintf(&sb, "| Verdict | %s |\n", result.Verdict)
	}
	if result.Error != "" {
		fmt.Fprintf(&sb, "| Error | %s |\n", escapeCell(result.Error))
	}

	if result.Report != nil {
		fmt.Fprintf(&sb, "\n## Checks\n\n%s\n\n", result.Report.Summary())
		for _, c := range result.Report.Checks() {
			mark := "x"
			if !c.Passed {
				mark = " "
			}
			fmt.Fprintf(&sb, "- [%s] %s", mark, c.Name)
			if !c.Passed && c.Detail != "" {
				fmt.Fprintf(&sb, " -- %s", c.Detail)
			}
			sb.WriteString("\n")
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func (r *MarkdownReporter) GenerateMasterSummary(results []*workflow.Result) ([]byte, error) {
	return []byte(generateSummaryMarkdown(BuildMasterSummary(results))), nil
}

func escapeCell(s string) string {
	return strings.NewReplacer("|", `\|`, "\n", " ").Replace(s)
}
