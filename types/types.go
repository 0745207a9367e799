package types

import "errors"

// Logger is a minimal structured logging interface.
//
// The signature is compatible with zap.SugaredLogger's *w methods, so a
// production logger can be plugged in without an adapter:
//
//	logger, _ := zap.NewDevelopment()
//	h := casspark.New(cluster, casspark.WithLogger(logger.Sugar()))
type Logger interface {
	// Debug logs a debug-level message with key/value pairs.
	Debug(msg string, args ...any)

	// Info logs an info-level message with key/value pairs.
	Info(msg string, args ...any)

	// Warn logs a warning-level message with key/value pairs.
	Warn(msg string, args ...any)

	// Error logs an error-level message with key/value pairs.
	Error(msg string, args ...any)

	// Fatal logs a fatal-level message with key/value pairs.
	Fatal(msg string, args ...any)
}

// TestStatus classifies the outcome of a single harness-managed test.
type TestStatus string

const (
	// StatusPassed indicates the test body ran and succeeded.
	StatusPassed TestStatus = "passed"
	// StatusFailed indicates the test body ran and failed.
	StatusFailed TestStatus = "failed"
	// StatusSkipped indicates a capability gate prevented the body from running.
	StatusSkipped TestStatus = "skipped"
)

// Sentinel errors for common harness failure scenarios.
var (
	// ErrSessionClosed indicates an operation was attempted on a closed session.
	ErrSessionClosed = errors.New("casspark: session is closed")

	// ErrNilSession indicates that a nil session was provided.
	ErrNilSession = errors.New("casspark: session cannot be nil")

	// ErrExecutorClosed indicates a statement was submitted to a closed executor.
	ErrExecutorClosed = errors.New("casspark: executor is closed")

	// ErrAwaitTimeout indicates a bounded polling helper exhausted its window.
	ErrAwaitTimeout = errors.New("casspark: await timed out")

	// ErrInvalidKeyspaceName indicates a keyspace name failed validation.
	ErrInvalidKeyspaceName = errors.New("casspark: invalid keyspace name")

	// ErrNoContactPoints indicates the harness was configured without any
	// cluster contact points.
	ErrNoContactPoints = errors.New("casspark: no contact points configured")
)
