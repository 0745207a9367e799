// Package report delivers test outcome records from isolated worker
// processes to a coordinating process.
//
// Records carry only plain value types (including the flattened
// failure.Summary), so every outcome is reportable across a process boundary
// no matter how the underlying test failed.
//
// Two implementations are provided:
//   - Local: an in-process channel for single-process runs and unit tests
//   - NATS: a JetStream publisher for distributed runs
package report
