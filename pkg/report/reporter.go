// Package report renders test results: per-test reports, the
// master summary of a run, and the JSONL run history.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"digital.vasic.harness/pkg/workflow"
)

// Reporter defines the interface for generating test reports.
type Reporter interface {
	// GenerateReport creates a report for a single result.
	GenerateReport(result *workflow.Result) ([]byte, error)

	// GenerateMasterSummary creates a summary of all results.
	GenerateMasterSummary(results []*workflow.Result) ([]byte, error)

	// WriteReport writes a report to the specified writer.
	WriteReport(w io.Writer, result *workflow.Result) error

	// Extension is the file extension of generated reports,
	// without the dot.
	Extension() string
}

// Formats lists the names accepted by NewReporter.
var Formats = []string{"json", "markdown", "html"}

// NewReporter returns the reporter for a format name.
func NewReporter(format string) (Reporter, error) {
	switch format {
	case "json":
		return NewJSONReporter(true), nil
	case "markdown", "md":
		return NewMarkdownReporter(), nil
	case "html":
		return NewHTMLReporter(), nil
	}
	return nil, fmt.Errorf("unknown report format %q (available: json, markdown, html)", format)
}

// WriteReports writes one report per result into dir, named
// <test>.<ext>, plus summary.<ext>. It returns the written paths.
func WriteReports(
	dir string,
	reporter Reporter,
	results []*workflow.Result,
) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	var paths []string
	for _, res := range results {
		data, err := reporter.GenerateReport(res)
		if err != nil {
			return paths, fmt.Errorf("report for %s: %w", res.Name, err)
		}
		path := filepath.Join(dir, res.Name+"."+reporter.Extension())
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("write report %s: %w", path, err)
		}
		paths = append(paths, path)
	}

	data, err := reporter.GenerateMasterSummary(results)
	if err != nil {
		return paths, fmt.Errorf("master summary: %w", err)
	}
	path := filepath.Join(dir, "summary."+reporter.Extension())
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return paths, fmt.Errorf("write report %s: %w", path, err)
	}
	return append(paths, path), nil
}

// checkCounts returns the passed and total check counts of a
// result, zero when it has no report.
func checkCounts(r *workflow.Result) (passed, total int) {
	if r.Report == nil {
		return 0, 0
	}
	return r.Report.Passed(), r.Report.Total()
}
