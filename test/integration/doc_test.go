// Package integration_test provides end-to-end integration tests for the
// casspark harness.
//
// These tests verify harness behavior against a real CQL cluster.
//
// # Running Integration Tests
//
// Integration tests are skipped by default when using -short flag:
//
//	go test -short ./...           # Skips integration tests
//	go test ./test/integration/... # Runs integration tests
//
// The tests require Docker and use testcontainers to spin up a CQL node
// (ScyllaDB preferred, Cassandra fallback). Spark-dependent paths are only
// exercised when CASSPARK_SPARK_REMOTE points at a running Spark Connect
// endpoint.
package integration_test
