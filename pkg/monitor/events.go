// Package monitor collects test run events and serves them live
// over WebSocket and Server-Sent Events.
package monitor

import "time"

// EventType represents the type of run event.
type EventType string

const (
	EventStarted   EventType = "started"
	EventSetup     EventType = "setup"
	EventAgent     EventType = "agent"
	EventValidated EventType = "validated"
	EventCompleted EventType = "completed"
	EventFailed    EventType = "failed"
	EventSkipped   EventType = "skipped"
	EventTimedOut  EventType = "timed_out"
	EventError     EventType = "error"
	EventLog       EventType = "log"
)

// TestEvent represents a lifecycle event of one test run.
type TestEvent struct {
	Type      EventType     `json:"type"`
	RunID     string        `json:"run_id,omitempty"`
	Name      string        `json:"name"`
	Category  string        `json:"category,omitempty"`
	Sandbox   string        `json:"sandbox,omitempty"`
	Status    string        `json:"status,omitempty"`
	Message   string        `json:"message,omitempty"`
	Passed    int           `json:"passed,omitempty"`
	Total     int           `json:"total,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// Terminal reports whether the event ends a test run.
func (e TestEvent) Terminal() bool {
	switch e.Type {
	case EventCompleted, EventFailed, EventSkipped,
		EventTimedOut, EventError:
		return true
	}
	return false
}
