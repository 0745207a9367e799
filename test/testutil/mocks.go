package testutil

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/arloliu/casspark/types"
)

// TestLogger is a recording implementation of types.Logger for asserting on
// log output in tests.
type TestLogger struct {
	mu      sync.RWMutex
	entries []LogEntry
}

// LogEntry is one recorded log call.
type LogEntry struct {
	Level   string
	Message string
	Args    []any
}

// Compile-time assertion that TestLogger implements types.Logger.
var _ types.Logger = (*TestLogger)(nil)

// NewTestLogger creates a new recording logger.
func NewTestLogger() *TestLogger {
	return &TestLogger{}
}

func (l *TestLogger) record(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, LogEntry{Level: level, Message: msg, Args: args})
}

// Debug records a debug-level entry.
func (l *TestLogger) Debug(msg string, args ...any) { l.record("debug", msg, args) }

// Info records an info-level entry.
func (l *TestLogger) Info(msg string, args ...any) { l.record("info", msg, args) }

// Warn records a warn-level entry.
func (l *TestLogger) Warn(msg string, args ...any) { l.record("warn", msg, args) }

// Error records an error-level entry.
func (l *TestLogger) Error(msg string, args ...any) { l.record("error", msg, args) }

// Fatal records a fatal-level entry. It does not exit.
func (l *TestLogger) Fatal(msg string, args ...any) { l.record("fatal", msg, args) }

// Entries returns a copy of all recorded entries.
func (l *TestLogger) Entries() []LogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]LogEntry, len(l.entries))
	copy(out, l.entries)

	return out
}

// Contains reports whether any recorded message equals msg.
func (l *TestLogger) Contains(msg string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, e := range l.entries {
		if e.Message == msg {
			return true
		}
	}

	return false
}

// String renders the recorded entries for test failure output.
func (l *TestLogger) String() string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out string
	for _, e := range l.entries {
		out += fmt.Sprintf("[%s] %s %v\n", e.Level, e.Message, e.Args)
	}

	return out
}

// TestMetricsCollector is a recording implementation of
// types.MetricsCollector for asserting on harness instrumentation.
type TestMetricsCollector struct {
	StatementTotal  atomic.Int64
	StatementErrors atomic.Int64
	KeyspaceCreated atomic.Int64
	AwaitTimeouts   atomic.Int64
	SkipTotal       atomic.Int64
	FailureCaptured atomic.Int64

	mu                 sync.RWMutex
	inFlight           int
	maxInFlight        int
	statementDurations []float64
	awaitDurations     []float64
}

// Compile-time assertion that TestMetricsCollector implements
// types.MetricsCollector.
var _ types.MetricsCollector = (*TestMetricsCollector)(nil)

// NewTestMetricsCollector creates a new recording metrics collector.
func NewTestMetricsCollector() *TestMetricsCollector {
	return &TestMetricsCollector{}
}

// IncStatementTotal increments the submitted statement count.
func (m *TestMetricsCollector) IncStatementTotal() { m.StatementTotal.Add(1) }

// IncStatementError increments the failed statement count.
func (m *TestMetricsCollector) IncStatementError() { m.StatementErrors.Add(1) }

// ObserveStatementDuration records a statement duration.
func (m *TestMetricsCollector) ObserveStatementDuration(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statementDurations = append(m.statementDurations, seconds)
}

// SetInFlight records the in-flight gauge and tracks its high-water mark.
func (m *TestMetricsCollector) SetInFlight(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight = n
	if n > m.maxInFlight {
		m.maxInFlight = n
	}
}

// IncKeyspaceCreated increments the keyspace creation count.
func (m *TestMetricsCollector) IncKeyspaceCreated() { m.KeyspaceCreated.Add(1) }

// ObserveAwaitDuration records a schema await duration.
func (m *TestMetricsCollector) ObserveAwaitDuration(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.awaitDurations = append(m.awaitDurations, seconds)
}

// IncAwaitTimeout increments the schema-await timeout count.
func (m *TestMetricsCollector) IncAwaitTimeout() { m.AwaitTimeouts.Add(1) }

// IncSkipTotal increments the gated-skip count.
func (m *TestMetricsCollector) IncSkipTotal() { m.SkipTotal.Add(1) }

// IncFailureCaptured increments the captured-failure count.
func (m *TestMetricsCollector) IncFailureCaptured() { m.FailureCaptured.Add(1) }

// InFlight returns the last recorded in-flight gauge value.
func (m *TestMetricsCollector) InFlight() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.inFlight
}

// MaxInFlight returns the highest in-flight gauge value observed.
func (m *TestMetricsCollector) MaxInFlight() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.maxInFlight
}

// StatementDurations returns a copy of the recorded statement durations.
func (m *TestMetricsCollector) StatementDurations() []float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]float64, len(m.statementDurations))
	copy(out, m.statementDurations)

	return out
}
