package types

// MetricsCollector defines methods for collecting harness operational metrics.
//
// Implementations should be thread-safe as methods may be called concurrently
// from the async executor's completion goroutines.
//
// Example usage with VictoriaMetrics (via contrib/metrics/vm):
//
//	collector := vmmetrics.New(vmmetrics.WithPrefix("casspark"))
//	h := casspark.New(cluster, casspark.WithMetrics(collector))
type MetricsCollector interface {
	// ----------------------
	// Statement Execution
	// ----------------------

	// IncStatementTotal increments the total submitted statement counter.
	IncStatementTotal()

	// IncStatementError increments the failed statement counter.
	IncStatementError()

	// ObserveStatementDuration records a statement round-trip duration in seconds.
	ObserveStatementDuration(seconds float64)

	// SetInFlight sets the current number of in-flight statements.
	SetInFlight(n int)

	// ----------------------
	// Fixtures
	// ----------------------

	// IncKeyspaceCreated increments the keyspace creation counter.
	IncKeyspaceCreated()

	// ObserveAwaitDuration records how long a schema await took in seconds.
	ObserveAwaitDuration(seconds float64)

	// IncAwaitTimeout increments the schema-await timeout counter.
	IncAwaitTimeout()

	// ----------------------
	// Gating
	// ----------------------

	// IncSkipTotal increments the gated-skip counter.
	IncSkipTotal()

	// IncFailureCaptured increments the captured-failure counter.
	IncFailureCaptured()
}
