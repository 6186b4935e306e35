package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"digital.vasic.harness/pkg/workflow"
)

// MasterSummary aggregates the results of one harness run.
type MasterSummary struct {
	ID            string        `json:"id"`
	RunID         string        `json:"run_id,omitempty"`
	GeneratedAt   time.Time     `json:"generated_at"`
	Tests         []TestSummary `json:"tests"`
	Total         int           `json:"total"`
	Passed        int           `json:"passed"`
	Failed        int           `json:"failed"`
	TimedOut      int           `json:"timed_out"`
	Errors        int           `json:"errors"`
	Skipped       int           `json:"skipped"`
	TotalDuration time.Duration `json:"total_duration"`
	PassRate      float64       `json:"pass_rate"`
}

// TestSummary is one line of the master summary.
type TestSummary struct {
	Name         string        `json:"name"`
	Category     string        `json:"category"`
	Status       string        `json:"status"`
	Duration     time.Duration `json:"duration"`
	ChecksPassed int           `json:"checks_passed"`
	ChecksTotal  int           `json:"checks_total"`
	Verdict      string        `json:"verdict,omitempty"`
	Sandbox      string        `json:"sandbox"`
	Error        string        `json:"error,omitempty"`

	// Failures lists the failing checks as "[FAIL] name --
	// detail" lines.
	Failures []string `json:"failures,omitempty"`
}

// BuildMasterSummary creates a master summary from results. The
// pass rate is passed over total, between 0 and 1.
func BuildMasterSummary(results []*workflow.Result) *MasterSummary {
	now := time.Now()
	summary := &MasterSummary{
		ID:          fmt.Sprintf("summary_%s", now.Format("20060102_150405")),
		GeneratedAt: now,
		Tests:       make([]TestSummary, 0, len(results)),
	}

	for _, r := range results {
		if summary.RunID == "" {
			summary.RunID = r.RunID
		}
		passed, total := checkCounts(r)
		ts := TestSummary{
			Name:         r.Name,
			Category:     r.Category,
			Status:       r.Status,
			Duration:     r.Duration,
			ChecksPassed: passed,
			ChecksTotal:  total,
			Verdict:      r.Verdict,
			Sandbox:      r.Sandbox,
			Error:        r.Error,
		}
		if r.Report != nil {
			for _, c := range r.Report.Checks() {
				if !c.Passed {
					ts.Failures = append(ts.Failures, c.String())
				}
			}
		}
		summary.Tests = append(summary.Tests, ts)
		summary.Total++
		summary.TotalDuration += r.Duration

		switch r.Status {
		case workflow.StatusPassed:
			summary.Passed++
		case workflow.StatusTimedOut:
			summary.TimedOut++
		case workflow.StatusError:
			summary.Errors++
		case workflow.StatusSkipped:
			summary.Skipped++
		default:
			summary.Failed++
		}
	}

	if summary.Total > 0 {
		summary.PassRate = float64(summary.Passed) / float64(summary.Total)
	}
	return summary
}

// AllPassed reports whether every test passed. An empty run
// counts as passed.
func (s *MasterSummary) AllPassed() bool {
	return s.Passed == s.Total
}

func (s *MasterSummary) stats() [][2]string {
	return [][2]string{
		{"Total Tests", fmt.Sprint(s.Total)},
		{"Passed", fmt.Sprint(s.Passed)},
		{"Failed", fmt.Sprint(s.Failed)},
		{"Timed Out", fmt.Sprint(s.TimedOut)},
		{"Errors", fmt.Sprint(s.Errors)},
		{"Skipped", fmt.Sprint(s.Skipped)},
		{"Pass Rate", fmt.Sprintf("%.0f%%", s.PassRate*100)},
		{"Total Duration", s.TotalDuration.Round(time.Millisecond).String()},
	}
}

// SaveMasterSummary saves the master summary to both JSON and
// Markdown files in outputDir and points latest_summary.* at
// them. It returns the JSON path.
func SaveMasterSummary(summary *MasterSummary, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	ts := summary.GeneratedAt.Format("20060102_150405")

	jsonPath := filepath.Join(outputDir, fmt.Sprintf("master_summary_%s.json", ts))
	jsonData, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := os.WriteFile(jsonPath, jsonData, 0o644); err != nil {
		return "", fmt.Errorf("failed to write JSON summary: %w", err)
	}

	mdPath := filepath.Join(outputDir, fmt.Sprintf("master_summary_%s.md", ts))
	if err := os.WriteFile(mdPath, []byte(generateSummaryMarkdown(summary)), 0o644); err != nil {
		return "", fmt.Errorf("failed to write Markdown summary: %w", err)
	}

	latestJSON := filepath.Join(outputDir, "latest_summary.json")
	latestMD := filepath.Join(outputDir, "latest_summary.md")

	_ = os.Remove(latestJSON)
	_ = os.Remove(latestMD)
	_ = os.Symlink(filepath.Base(jsonPath), latestJSON)
	_ = os.Symlink(filepath.Base(mdPath), latestMD)

	return jsonPath, nil
}

// generateSummaryMarkdown creates markdown from a master
// summary.
func generateSummaryMarkdown(summary *MasterSummary) string {
	var sb strings.Builder

	sb.WriteString("# Harness Run Summary\n\n")
	fmt.Fprintf(&sb, "**Summary ID:** %s\n\n", summary.ID)
	if summary.RunID != "" {
		fmt.Fprintf(&sb, "**Run ID:** %s\n\n", summary.RunID)
	}
	fmt.Fprintf(&sb, "**Generated:** %s\n\n", summary.GeneratedAt.Format(time.RFC3339))

	sb.WriteString("## Overview\n\n")
	sb.WriteString("| Test | Category | Status | Checks | Duration |\n")
	sb.WriteString("|------|----------|--------|--------|----------|\n")
	for _, t := range summary.Tests {
		fmt.Fprintf(&sb, "| %s | %s | %s | %d/%d | %v |\n",
			t.Name, t.Category, strings.ToUpper(t.Status),
			t.ChecksPassed, t.ChecksTotal, t.Duration.Round(time.Millisecond))
	}

	sb.WriteString("\n## Statistics\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	for _, s := range summary.stats() {
		fmt.Fprintf(&sb, "| %s | %s |\n", s[0], s[1])
	}

	var failing []TestSummary
	for _, t := range summary.Tests {
		if t.Status != workflow.StatusPassed {
			failing = append(failing, t)
		}
	}
	if len(failing) > 0 {
		sb.WriteString("\n## Failures\n")
		for _, t := range failing {
			fmt.Fprintf(&sb, "\n### %s (%s)\n\n", t.Name, t.Status)
			if t.Error != "" {
				fmt.Fprintf(&sb, "Error: %s\n\n", t.Error)
			}
			fmt.Fprintf(&sb, "Sandbox: `%s`\n", t.Sandbox)
			for _, f := range t.Failures {
				fmt.Fprintf(&sb, "\n    %s", f)
			}
			if len(t.Failures) > 0 {
				sb.WriteString("\n")
			}
		}
	}

	return sb.String()
}
