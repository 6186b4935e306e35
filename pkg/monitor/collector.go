package monitor

import (
	"sync"
	"time"
)

// EventCollector captures run events and timing data. It is
// safe for concurrent use.
type EventCollector struct {
	mu       sync.RWMutex
	events   []TestEvent
	handlers []func(TestEvent)
	stats    CollectorStats
}

// CollectorStats holds aggregate statistics over terminal
// events.
type CollectorStats struct {
	Total     int           `json:"total"`
	Passed    int           `json:"passed"`
	Failed    int           `json:"failed"`
	Skipped   int           `json:"skipped"`
	TimedOut  int           `json:"timed_out"`
	Errors    int           `json:"errors"`
	StartTime time.Time     `json:"start_time"`
	Duration  time.Duration `json:"duration"`
}

// add counts a terminal event under its outcome.
func (s *CollectorStats) add(e TestEvent) {
	if !e.Terminal() {
		return
	}
	s.Total++
	switch e.Type {
	case EventCompleted:
		s.Passed++
	case EventFailed:
		s.Failed++
	case EventSkipped:
		s.Skipped++
	case EventTimedOut:
		s.TimedOut++
	case EventError:
		s.Errors++
	}
}

// Finished returns the number of tests that ran to a verdict,
// skipped tests excluded.
func (s CollectorStats) Finished() int {
	return s.Total - s.Skipped
}

// NewEventCollector creates a new event collector.
func NewEventCollector() *EventCollector {
	return &EventCollector{
		events: make([]TestEvent, 0, 64),
		stats:  CollectorStats{StartTime: time.Now()},
	}
}

// OnEvent registers a handler to be called for each event.
func (c *EventCollector) OnEvent(handler func(TestEvent)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, handler)
}

// Emit records an event and then calls the handlers in
// registration order. Handlers run outside the lock, so they may
// emit or read the collector themselves.
func (c *EventCollector) Emit(event TestEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	c.mu.Lock()
	c.events = append(c.events, event)
	c.stats.add(event)
	handlers := make([]func(TestEvent), len(c.handlers))
	copy(handlers, c.handlers)
	c.mu.Unlock()

	for _, h := range handlers {
		h(event)
	}
}

// Events returns a copy of all collected events.
func (c *EventCollector) Events() []TestEvent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]TestEvent(nil), c.events...)
}

// Stats returns the current aggregate statistics.
func (c *EventCollector) Stats() CollectorStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.stats
	s.Duration = time.Since(s.StartTime)
	return s
}

// Reset clears all collected events and statistics. Handlers
// stay registered.
func (c *EventCollector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = c.events[:0]
	c.stats = CollectorStats{StartTime: time.Now()}
}
