package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendToHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.jsonl")

	require.NoError(t, AppendToHistory(path, passedResult("pm"), "results/run-1"))
	require.NoError(t, AppendToHistory(path, timedOutResult("help"), ""))

	entries, err := LoadHistory(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	e := entries[0]
	assert.Equal(t, "pm", e.Name)
	assert.Equal(t, "run-1", e.RunID)
	assert.Equal(t, "passed", e.Status)
	assert.Equal(t, "1m30s", e.Duration)
	assert.Equal(t, 2, e.ChecksPassed)
	assert.Equal(t, 2, e.ChecksTotal)
	assert.Equal(t, "results/run-1", e.ResultsPath)
	assert.True(t, e.Timestamp.Equal(testStart.Add(90*time.Second)))

	assert.Equal(t, "timed_out", entries[1].Status)
	assert.Zero(t, entries[1].ChecksTotal)
}

func TestAppendToHistory_Concurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, AppendToHistory(path, passedResult(fmt.Sprintf("t%d", i)), ""))
		}(i)
	}
	wg.Wait()

	entries, err := LoadHistory(path)
	require.NoError(t, err)
	assert.Len(t, entries, 20)
}

func TestAppendToHistory_MarshalError(t *testing.T) {
	original := jsonMarshal
	t.Cleanup(func() { jsonMarshal = original })
	jsonMarshal = func(any) ([]byte, error) { return nil, assert.AnError }

	err := AppendToHistory(filepath.Join(t.TempDir(), "h.jsonl"), passedResult("pm"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to marshal history entry")
}

func TestAppendToHistory_OpenError(t *testing.T) {
	dir := t.TempDir()
	// A directory where the file should be.
	path := filepath.Join(dir, "history.jsonl")
	require.NoError(t, os.Mkdir(path, 0o755))

	err := AppendToHistory(path, passedResult("pm"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open history file")
}

func TestLoadHistory_Missing(t *testing.T) {
	entries, err := LoadHistory(filepath.Join(t.TempDir(), "none.jsonl"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLoadHistory_SkipsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(
		`{"name":"pm","status":"passed"}`+"\n"+
			"not json\n\n"+
			`{"name":"dev","status":"failed"}`+"\n",
	), 0o644))

	entries, err := LoadHistory(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "dev", entries[1].Name)
}

func TestLastRuns(t *testing.T) {
	entries := []HistoricalEntry{
		{Name: "pm", Status: "failed", Timestamp: testStart},
		{Name: "dev", Status: "passed", Timestamp: testStart},
		{Name: "pm", Status: "passed", Timestamp: testStart.Add(time.Hour)},
	}
	last := LastRuns(entries)
	assert.Len(t, last, 2)
	assert.Equal(t, "passed", last["pm"].Status)
}
