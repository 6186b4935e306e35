package monitor

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventCollector_Emit_SetsTimestamp(t *testing.T) {
	c := NewEventCollector()
	c.Emit(TestEvent{Type: EventStarted, Name: "pm"})

	events := c.Events()
	require.Len(t, events, 1)
	assert.False(t, events[0].Timestamp.IsZero())
}

func TestEventCollector_Stats(t *testing.T) {
	c := NewEventCollector()
	for _, e := range []TestEvent{
		{Type: EventStarted, Name: "a"},
		{Type: EventCompleted, Name: "a"},
		{Type: EventStarted, Name: "b"},
		{Type: EventFailed, Name: "b"},
		{Type: EventTimedOut, Name: "c"},
		{Type: EventError, Name: "d"},
		{Type: EventSkipped, Name: "e"},
		{Type: EventLog, Name: "e", Message: "noise"},
	} {
		c.Emit(e)
	}

	s := c.Stats()
	assert.Equal(t, 5, s.Total)
	assert.Equal(t, 1, s.Passed)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 1, s.TimedOut)
	assert.Equal(t, 1, s.Errors)
	assert.Equal(t, 1, s.Skipped)
	assert.Equal(t, 4, s.Finished())
	assert.Len(t, c.Events(), 8)
}

func TestEventCollector_OnEvent(t *testing.T) {
	c := NewEventCollector()
	var got []string
	c.OnEvent(func(e TestEvent) { got = append(got, e.Name) })

	c.Emit(TestEvent{Type: EventStarted, Name: "one"})
	c.Emit(TestEvent{Type: EventStarted, Name: "two"})

	assert.Equal(t, []string{"one", "two"}, got)
}

func TestEventCollector_Reset(t *testing.T) {
	c := NewEventCollector()
	calls := 0
	c.OnEvent(func(TestEvent) { calls++ })
	c.Emit(TestEvent{Type: EventCompleted, Name: "x"})

	c.Reset()
	assert.Empty(t, c.Events())
	assert.Zero(t, c.Stats().Total)

	c.Emit(TestEvent{Type: EventCompleted, Name: "y"})
	assert.Equal(t, 2, calls)
}

func TestEventCollector_ConcurrentEmit(t *testing.T) {
	c := NewEventCollector()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Emit(TestEvent{Type: EventCompleted, Name: "t"})
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, c.Stats().Passed)
}

func TestTestEvent_Terminal(t *testing.T) {
	tests := []struct {
		typ  EventType
		want bool
	}{
		{EventStarted, false},
		{EventSetup, false},
		{EventAgent, false},
		{EventValidated, false},
		{EventLog, false},
		{EventCompleted, true},
		{EventFailed, true},
		{EventSkipped, true},
		{EventTimedOut, true},
		{EventError, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			assert.Equal(t, tt.want, TestEvent{Type: tt.typ}.Terminal())
		})
	}
}

func TestEventCollector_DurationAdvances(t *testing.T) {
	c := NewEventCollector()
	time.Sleep(2 * time.Millisecond)
	assert.Greater(t, c.Stats().Duration, time.Duration(0))
}
