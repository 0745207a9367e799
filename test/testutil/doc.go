// Package testutil provides test utilities and container helpers for
// casspark testing.
//
// # Mock Implementations
//
// The package provides recording implementations of the ambient interfaces:
//
//   - [TestLogger]: Recording implementation of types.Logger
//   - [TestMetricsCollector]: Recording implementation of types.MetricsCollector
//
// # Integration Test Helpers
//
// For integration tests, helper functions are provided:
//
//   - StartCQLCluster: Starts a CQL-compatible container for use in TestMain
//     (prefers ScyllaDB, falls back to Cassandra; requires Docker)
//   - StartEmbeddedNATS: Starts an embedded NATS server with JetStream for
//     reporter testing
package testutil
