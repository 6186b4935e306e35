package report

import (
	"time"

	"digital.vasic.harness/pkg/validation"
	"digital.vasic.harness/pkg/workflow"
)

var testStart = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func passedResult(name string) *workflow.Result {
	rep := validation.NewReport(name)
	rep.Add(".state/ exists", true, "")
	rep.Add("settings.yml valid YAML", true, "")
	return &workflow.Result{
		RunID:         "run-1",
		Name:          name,
		Category:      workflow.CategoryGreenfield,
		Status:        workflow.StatusPassed,
		Sandbox:       "/tmp/" + name + "-abcd1234",
		StartTime:     testStart,
		EndTime:       testStart.Add(90 * time.Second),
		Duration:      90 * time.Second,
		AgentExitCode: 0,
		Verdict:       "PASS",
		Report:        rep,
	}
}

func failedResult(name string) *workflow.Result {
	rep := validation.NewReport(name)
	rep.Add("prd.md exists", true, "")
	rep.Add("prd.md has 3+ sections", false, "found 1 <heading|pipe>")
	return &workflow.Result{
		RunID:         "run-1",
		Name:          name,
		Category:      workflow.CategoryGreenfield,
		Status:        workflow.StatusFailed,
		Sandbox:       "/tmp/" + name + "-ffff0000",
		StartTime:     testStart,
		EndTime:       testStart.Add(time.Minute),
		Duration:      time.Minute,
		AgentExitCode: 0,
		Verdict:       "FAIL",
		Report:        rep,
	}
}

func timedOutResult(name string) *workflow.Result {
	return &workflow.Result{
		RunID:         "run-1",
		Name:          name,
		Category:      workflow.CategorySmoke,
		Status:        workflow.StatusTimedOut,
		StartTime:     testStart,
		EndTime:       testStart.Add(2 * time.Minute),
		Duration:      2 * time.Minute,
		AgentExitCode: -1,
		Error:         "agent timed out after 2m0s",
	}
}
