package report

import (
	"encoding/json"
	"io"
	"time"

	"digital.vasic.harness/pkg/workflow"
)

// JSONReporter generates JSON reports from test results.
type JSONReporter struct {
	pretty bool
}

// NewJSONReporter creates a new JSON reporter. When pretty is
// true, output is indented for readability.
func NewJSONReporter(pretty bool) *JSONReporter {
	return &JSONReporter{pretty: pretty}
}

func (r *JSONReporter) Extension() string { return "json" }

func (r *JSONReporter) marshal(v any) ([]byte, error) {
	if r.pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

// GenerateReport creates a JSON report for a single result. The
// validation report is embedded with its derived counts.
func (r *JSONReporter) GenerateReport(result *workflow.Result) ([]byte, error) {
	return r.marshal(result)
}

type jsonMasterSummary struct {
	GeneratedAt   time.Time          `json:"generated_at"`
	Total         int                `json:"total"`
	Passed        int                `json:"passed"`
	Failed        int                `json:"failed"`
	TotalDuration time.Duration      `json:"total_duration"`
	Results       []*workflow.Result `json:"results"`
}

// GenerateMasterSummary creates a JSON summary of all results.
// Anything that did not pass counts as failed.
func (r *JSONReporter) GenerateMasterSummary(
	results []*workflow.Result,
) ([]byte, error) {
	summary := jsonMasterSummary{
		GeneratedAt: time.Now(),
		Total:       len(results),
		Results:     results,
	}
	for _, res := range results {
		if res.Passed() {
			summary.Passed++
		} else {
			summary.Failed++
		}
		summary.TotalDuration += res.Duration
	}
	return r.marshal(summary)
}

// WriteReport writes a JSON report to the specified writer.
func (r *JSONReporter) WriteReport(w io.Writer, result *workflow.Result) error {
	data, err := r.GenerateReport(result)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
