// Package metrics counts test outcomes of a harness run and
// renders them in the Prometheus text exposition format.
package metrics

import (
	"sync"
	"time"

	"digital.vasic.harness/pkg/monitor"
)

// TestMetrics defines the interface for recording run metrics.
type TestMetrics interface {
	// RecordTest records a finished test with its final status.
	RecordTest(name, status string, duration time.Duration)
	// RecordChecks records the validation checks of a test.
	RecordChecks(name string, passed, total int)
	// IncrementRunTotal increments the total run counter.
	IncrementRunTotal()
	// SetActiveTests sets the gauge of running tests.
	SetActiveTests(count int)
}

// NoopMetrics discards everything.
type NoopMetrics struct{}

func (NoopMetrics) RecordTest(_, _ string, _ time.Duration) {}
func (NoopMetrics) RecordChecks(_ string, _, _ int)         {}
func (NoopMetrics) IncrementRunTotal()                      {}
func (NoopMetrics) SetActiveTests(_ int)                    {}

// Observe feeds m from the events of collector. Tests count as
// active from their started event until their terminal event.
func Observe(collector *monitor.EventCollector, m TestMetrics) {
	var mu sync.Mutex
	active := map[string]struct{}{}
	collector.OnEvent(func(e monitor.TestEvent) {
		mu.Lock()
		defer mu.Unlock()
		switch {
		case e.Type == monitor.EventStarted:
			active[e.Name] = struct{}{}
			m.SetActiveTests(len(active))
		case e.Type == monitor.EventValidated:
			m.RecordChecks(e.Name, e.Passed, e.Total)
		case e.Terminal():
			delete(active, e.Name)
			m.SetActiveTests(len(active))
			m.RecordTest(e.Name, statusOf(e), e.Duration)
		}
	})
}

func statusOf(e monitor.TestEvent) string {
	if e.Status != "" {
		return e.Status
	}
	if e.Type == monitor.EventCompleted {
		return "passed"
	}
	return string(e.Type)
}
