package monitor

import (
	"strconv"
	"sync"
	"time"
)

// Dashboard holds a live view of a harness run.
type Dashboard struct {
	mu        sync.RWMutex
	runID     string
	startTime time.Time
	status    string
	tests     map[string]TestState
}

// Snapshot is a point-in-time copy of a Dashboard.
type Snapshot struct {
	RunID     string               `json:"run_id"`
	StartTime time.Time            `json:"start_time"`
	Status    string               `json:"status"`
	Tests     map[string]TestState `json:"tests"`
	Summary   Summary              `json:"summary"`
}

// TestState is the current state of one test.
type TestState struct {
	Name      string        `json:"name"`
	Category  string        `json:"category,omitempty"`
	Phase     string        `json:"phase"`
	Sandbox   string        `json:"sandbox,omitempty"`
	StartTime *time.Time    `json:"start_time,omitempty"`
	EndTime   *time.Time    `json:"end_time,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
	Checks    string        `json:"checks,omitempty"`
	Message   string        `json:"message,omitempty"`
}

// Summary holds aggregate counts for the dashboard.
type Summary struct {
	Total    int     `json:"total"`
	Passed   int     `json:"passed"`
	Failed   int     `json:"failed"`
	Skipped  int     `json:"skipped"`
	TimedOut int     `json:"timed_out"`
	Errors   int     `json:"errors"`
	Running  int     `json:"running"`
	PassRate float64 `json:"pass_rate"`
	Elapsed  string  `json:"elapsed"`
}

// NewDashboard creates an empty dashboard for a run.
func NewDashboard(runID string) *Dashboard {
	return &Dashboard{
		runID:     runID,
		startTime: time.Now(),
		status:    "running",
		tests:     make(map[string]TestState),
	}
}

// UpdateFromEvent folds an event into the dashboard.
func (d *Dashboard) UpdateFromEvent(event TestEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := event.Timestamp
	if now.IsZero() {
		now = time.Now()
	}
	state, exists := d.tests[event.Name]
	if !exists {
		state = TestState{Name: event.Name, Phase: "pending"}
	}
	if event.Category != "" {
		state.Category = event.Category
	}
	if event.Sandbox != "" {
		state.Sandbox = event.Sandbox
	}
	if event.Message != "" {
		state.Message = event.Message
	}

	switch event.Type {
	case EventStarted:
		state.Phase = "running"
		state.StartTime = &now
	case EventSetup, EventAgent, EventValidated:
		state.Phase = string(event.Type)
		if event.Total > 0 {
			state.Checks = checksLabel(event)
		}
	case EventCompleted, EventFailed, EventTimedOut, EventError, EventSkipped:
		state.Phase = phaseOf(event.Type)
		state.EndTime = &now
		state.Duration = event.Duration
		if event.Total > 0 {
			state.Checks = checksLabel(event)
		}
	}

	d.tests[event.Name] = state
}

func phaseOf(t EventType) string {
	if t == EventCompleted {
		return "passed"
	}
	return string(t)
}

func checksLabel(e TestEvent) string {
	return strconv.Itoa(e.Passed) + "/" + strconv.Itoa(e.Total)
}

// SetStatus sets the overall run status.
func (d *Dashboard) SetStatus(status string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.status = status
}

// Snapshot returns a copy of the current state.
func (d *Dashboard) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()

	snap := Snapshot{
		RunID:     d.runID,
		StartTime: d.startTime,
		Status:    d.status,
		Tests:     make(map[string]TestState, len(d.tests)),
	}
	for k, v := range d.tests {
		snap.Tests[k] = v
		switch v.Phase {
		case "passed":
			snap.Summary.Passed++
		case "failed":
			snap.Summary.Failed++
		case "skipped":
			snap.Summary.Skipped++
		case "timed_out":
			snap.Summary.TimedOut++
		case "error":
			snap.Summary.Errors++
		case "pending":
		default:
			snap.Summary.Running++
		}
	}
	snap.Summary.Total = len(d.tests)
	finished := snap.Summary.Passed + snap.Summary.Failed +
		snap.Summary.TimedOut + snap.Summary.Errors
	if finished > 0 {
		snap.Summary.PassRate = float64(snap.Summary.Passed) / float64(finished) * 100
	}
	snap.Summary.Elapsed = time.Since(d.startTime).Round(time.Millisecond).String()
	return snap
}

// BuildDashboard replays the events of a collector into a new
// dashboard.
func BuildDashboard(runID string, collector *EventCollector) *Dashboard {
	d := NewDashboard(runID)
	for _, event := range collector.Events() {
		d.UpdateFromEvent(event)
	}
	return d
}
