package report

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"digital.vasic.harness/pkg/workflow"
)

// jsonMarshal is swapped in tests to exercise marshal failures.
var jsonMarshal = json.Marshal

// HistoricalEntry represents a single test run in the history
// log.
type HistoricalEntry struct {
	Timestamp    time.Time `json:"timestamp"`
	RunID        string    `json:"run_id"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	Status       string    `json:"status"`
	Duration     string    `json:"duration"`
	ChecksPassed int       `json:"checks_passed"`
	ChecksTotal  int       `json:"checks_total"`
	Sandbox      string    `json:"sandbox"`
	ResultsPath  string    `json:"results_path,omitempty"`
}

// AppendToHistory adds an entry to the history log stored at
// historyPath, one JSON object per line. Concurrent harness
// processes are serialised through a lock file next to it.
func AppendToHistory(
	historyPath string,
	result *workflow.Result,
	resultsPath string,
) error {
	passed, total := checkCounts(result)
	entry := HistoricalEntry{
		Timestamp:    result.EndTime,
		RunID:        result.RunID,
		Name:         result.Name,
		Category:     result.Category,
		Status:       result.Status,
		Duration:     result.Duration.String(),
		ChecksPassed: passed,
		ChecksTotal:  total,
		Sandbox:      result.Sandbox,
		ResultsPath:  resultsPath,
	}

	data, err := jsonMarshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal history entry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(historyPath), 0o755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	lock := flock.New(historyPath + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock history file: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	file, err := os.OpenFile(historyPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open history file: %w", err)
	}
	defer func() { _ = file.Close() }()

	_, err = fmt.Fprintln(file, string(data))
	return err
}

// LoadHistory reads every entry of the history log. A missing
// file yields no entries. Lines that are not valid entries are
// skipped.
func LoadHistory(historyPath string) ([]HistoricalEntry, error) {
	file, err := os.Open(historyPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open history file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var entries []HistoricalEntry
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var e HistoricalEntry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return entries, fmt.Errorf("failed to read history file: %w", err)
	}
	return entries, nil
}

// LastRuns returns the most recent entry per test name.
func LastRuns(entries []HistoricalEntry) map[string]HistoricalEntry {
	last := make(map[string]HistoricalEntry)
	for _, e := range entries {
		if prev, ok := last[e.Name]; !ok || !e.Timestamp.Before(prev.Timestamp) {
			last[e.Name] = e
		}
	}
	return last
}
