// Package metrics provides internal metrics utilities for casspark.
package metrics

import "github.com/arloliu/casspark/types"

// NopMetrics is a no-op metrics collector that discards all metrics.
//
// This is used as the default metrics collector when no collector is
// configured, avoiding nil checks throughout the codebase.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements types.MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNopMetrics creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A collector that discards all metrics
func NewNopMetrics() *NopMetrics {
	return &NopMetrics{}
}

// IncStatementTotal discards the metric.
func (m *NopMetrics) IncStatementTotal() {}

// IncStatementError discards the metric.
func (m *NopMetrics) IncStatementError() {}

// ObserveStatementDuration discards the metric.
func (m *NopMetrics) ObserveStatementDuration(_ float64) {}

// SetInFlight discards the metric.
func (m *NopMetrics) SetInFlight(_ int) {}

// IncKeyspaceCreated discards the metric.
func (m *NopMetrics) IncKeyspaceCreated() {}

// ObserveAwaitDuration discards the metric.
func (m *NopMetrics) ObserveAwaitDuration(_ float64) {}

// IncAwaitTimeout discards the metric.
func (m *NopMetrics) IncAwaitTimeout() {}

// IncSkipTotal discards the metric.
func (m *NopMetrics) IncSkipTotal() {}

// IncFailureCaptured discards the metric.
func (m *NopMetrics) IncFailureCaptured() {}
