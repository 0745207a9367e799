package vm

import (
	"fmt"
	"io"
	"net/http"
	"sync/atomic"

	"github.com/VictoriaMetrics/metrics"

	"github.com/arloliu/casspark/types"
)

// Option configures a Collector.
type Option func(*Collector)

// WithPrefix sets the metric name prefix.
//
// Default: "casspark"
//
// Parameters:
//   - prefix: The prefix to use for all metric names
//
// Returns:
//   - Option: A configuration option
func WithPrefix(prefix string) Option {
	return func(c *Collector) {
		c.prefix = prefix
	}
}

// WithMetricsSet sets the metrics set to use.
//
// If provided, the collector will register metrics with this set instead of
// creating a new one. The caller is responsible for exposing this set
// (e.g., via metrics.WritePrometheus or a custom handler).
//
// Parameters:
//   - set: The metrics set to use
//
// Returns:
//   - Option: A configuration option
func WithMetricsSet(set *metrics.Set) Option {
	return func(c *Collector) {
		c.set = set
	}
}

// Collector implements types.MetricsCollector using VictoriaMetrics.
//
// All metrics are pre-created at initialization time for optimal performance.
// Thread-safe for concurrent use.
type Collector struct {
	set    *metrics.Set
	prefix string

	// Statement execution metrics
	statementTotal    *metrics.Counter
	statementErrors   *metrics.Counter
	statementDuration *metrics.Histogram
	inFlight          atomic.Int64

	// Fixture metrics
	keyspacesCreated *metrics.Counter
	awaitDuration    *metrics.Histogram
	awaitTimeouts    *metrics.Counter

	// Gating metrics
	skipTotal        *metrics.Counter
	failuresCaptured *metrics.Counter
}

// Compile-time assertion that Collector implements types.MetricsCollector.
var _ types.MetricsCollector = (*Collector)(nil)

// New creates a new VictoriaMetrics-based metrics collector.
//
// The collector creates its own metrics.Set and registers it globally.
// All metrics are pre-created at initialization for optimal performance.
//
// Parameters:
//   - opts: Configuration options (e.g., WithPrefix)
//
// Returns:
//   - *Collector: A new metrics collector ready for use
//
// Example:
//
//	collector := vm.New(vm.WithPrefix("connector_it"))
//	h := casspark.New(cluster, casspark.WithMetrics(collector))
func New(opts ...Option) *Collector {
	c := &Collector{
		prefix: "casspark",
	}

	for _, opt := range opts {
		opt(c)
	}

	// If no set is provided, create a new one and register it globally.
	// If a set is provided, we assume the caller manages it.
	if c.set == nil {
		c.set = metrics.NewSet()
		metrics.RegisterSet(c.set)
	}

	c.initMetrics()

	return c
}

// initMetrics pre-creates all metrics with the configured prefix.
func (c *Collector) initMetrics() {
	p := c.prefix

	c.statementTotal = c.set.NewCounter(fmt.Sprintf(`%s_statement_total`, p))
	c.statementErrors = c.set.NewCounter(fmt.Sprintf(`%s_statement_errors_total`, p))
	c.statementDuration = c.set.NewHistogram(fmt.Sprintf(`%s_statement_duration_seconds`, p))
	c.set.NewGauge(fmt.Sprintf(`%s_statements_in_flight`, p), func() float64 {
		return float64(c.inFlight.Load())
	})

	c.keyspacesCreated = c.set.NewCounter(fmt.Sprintf(`%s_keyspaces_created_total`, p))
	c.awaitDuration = c.set.NewHistogram(fmt.Sprintf(`%s_schema_await_duration_seconds`, p))
	c.awaitTimeouts = c.set.NewCounter(fmt.Sprintf(`%s_schema_await_timeouts_total`, p))

	c.skipTotal = c.set.NewCounter(fmt.Sprintf(`%s_gated_skips_total`, p))
	c.failuresCaptured = c.set.NewCounter(fmt.Sprintf(`%s_failures_captured_total`, p))
}

// Set returns the underlying metrics set.
func (c *Collector) Set() *metrics.Set {
	return c.set
}

// Handler returns an HTTP handler that exposes metrics in Prometheus format.
//
// Example:
//
//	http.HandleFunc("/metrics", collector.Handler)
func (c *Collector) Handler(w http.ResponseWriter, _ *http.Request) {
	c.set.WritePrometheus(w)
}

// WritePrometheus writes all metrics in Prometheus format to the given writer.
//
// Parameters:
//   - w: The writer to write metrics to
func (c *Collector) WritePrometheus(w io.Writer) {
	c.set.WritePrometheus(w)
}

// IncStatementTotal increments the total submitted statement counter.
func (c *Collector) IncStatementTotal() {
	c.statementTotal.Inc()
}

// IncStatementError increments the failed statement counter.
func (c *Collector) IncStatementError() {
	c.statementErrors.Inc()
}

// ObserveStatementDuration records a statement round-trip duration in seconds.
func (c *Collector) ObserveStatementDuration(seconds float64) {
	c.statementDuration.Update(seconds)
}

// SetInFlight sets the current number of in-flight statements.
func (c *Collector) SetInFlight(n int) {
	c.inFlight.Store(int64(n))
}

// IncKeyspaceCreated increments the keyspace creation counter.
func (c *Collector) IncKeyspaceCreated() {
	c.keyspacesCreated.Inc()
}

// ObserveAwaitDuration records how long a schema await took in seconds.
func (c *Collector) ObserveAwaitDuration(seconds float64) {
	c.awaitDuration.Update(seconds)
}

// IncAwaitTimeout increments the schema-await timeout counter.
func (c *Collector) IncAwaitTimeout() {
	c.awaitTimeouts.Inc()
}

// IncSkipTotal increments the gated-skip counter.
func (c *Collector) IncSkipTotal() {
	c.skipTotal.Inc()
}

// IncFailureCaptured increments the captured-failure counter.
func (c *Collector) IncFailureCaptured() {
	c.failuresCaptured.Inc()
}
