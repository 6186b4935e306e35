package metrics

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"
)

// PrometheusMetrics implements TestMetrics with in-memory
// counters and serves them in the Prometheus text format. It is
// safe for concurrent use.
type PrometheusMetrics struct {
	mu        sync.Mutex
	tests     map[testKey]int
	durations map[string]time.Duration
	checks    map[checkKey]int
	runTotal  int
	active    int
}

type testKey struct {
	name   string
	status string
}

type checkKey struct {
	name   string
	passed bool
}

// NewPrometheusMetrics creates an empty PrometheusMetrics.
func NewPrometheusMetrics() *PrometheusMetrics {
	return &PrometheusMetrics{
		tests:     make(map[testKey]int),
		durations: make(map[string]time.Duration),
		checks:    make(map[checkKey]int),
	}
}

func (m *PrometheusMetrics) RecordTest(name, status string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tests[testKey{name, status}]++
	m.durations[name] += duration
}

func (m *PrometheusMetrics) RecordChecks(name string, passed, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checks[checkKey{name, true}] += passed
	m.checks[checkKey{name, false}] += total - passed
}

func (m *PrometheusMetrics) IncrementRunTotal() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runTotal++
}

func (m *PrometheusMetrics) SetActiveTests(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = count
}

// TestCount returns how often name finished with status.
func (m *PrometheusMetrics) TestCount(name, status string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tests[testKey{name, status}]
}

// CheckCount returns the number of passing or failing checks
// recorded for name.
func (m *PrometheusMetrics) CheckCount(name string, passed bool) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.checks[checkKey{name, passed}]
}

// RunTotal returns the total number of runs.
func (m *PrometheusMetrics) RunTotal() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runTotal
}

// ActiveTests returns the current active tests gauge.
func (m *PrometheusMetrics) ActiveTests() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// WriteText writes every metric in the Prometheus text format.
// Series are sorted so the output is stable.
func (m *PrometheusMetrics) WriteText(w io.Writer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "# HELP harness_runs_total Harness runs started.")
	fmt.Fprintln(bw, "# TYPE harness_runs_total counter")
	fmt.Fprintf(bw, "harness_runs_total %d\n", m.runTotal)

	fmt.Fprintln(bw, "# HELP harness_tests_active Tests currently running.")
	fmt.Fprintln(bw, "# TYPE harness_tests_active gauge")
	fmt.Fprintf(bw, "harness_tests_active %d\n", m.active)

	fmt.Fprintln(bw, "# HELP harness_tests_total Finished tests by status.")
	fmt.Fprintln(bw, "# TYPE harness_tests_total counter")
	tests := make([]testKey, 0, len(m.tests))
	for k := range m.tests {
		tests = append(tests, k)
	}
	sort.Slice(tests, func(i, j int) bool {
		if tests[i].name != tests[j].name {
			return tests[i].name < tests[j].name
		}
		return tests[i].status < tests[j].status
	})
	for _, k := range tests {
		fmt.Fprintf(bw, "harness_tests_total{test=%q,status=%q} %d\n", k.name, k.status, m.tests[k])
	}

	fmt.Fprintln(bw, "# HELP harness_test_duration_seconds_total Time spent in finished tests.")
	fmt.Fprintln(bw, "# TYPE harness_test_duration_seconds_total counter")
	names := make([]string, 0, len(m.durations))
	for name := range m.durations {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(bw, "harness_test_duration_seconds_total{test=%q} %g\n", name, m.durations[name].Seconds())
	}

	fmt.Fprintln(bw, "# HELP harness_checks_total Validation checks by outcome.")
	fmt.Fprintln(bw, "# TYPE harness_checks_total counter")
	checks := make([]checkKey, 0, len(m.checks))
	for k := range m.checks {
		checks = append(checks, k)
	}
	sort.Slice(checks, func(i, j int) bool {
		if checks[i].name != checks[j].name {
			return checks[i].name < checks[j].name
		}
		return checks[i].passed && !checks[j].passed
	})
	for _, k := range checks {
		result := "failed"
		if k.passed {
			result = "passed"
		}
		fmt.Fprintf(bw, "harness_checks_total{test=%q,result=%q} %d\n", k.name, result, m.checks[k])
	}

	return bw.Flush()
}

// ServeHTTP serves WriteText.
func (m *PrometheusMetrics) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	_ = m.WriteText(w)
}
