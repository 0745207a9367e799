// Package types provides shared types and errors for the casspark harness.
//
// This is a "leaf" package with no imports from other casspark packages,
// allowing it to be imported by any package without causing import cycles.
// It contains the Logger and MetricsCollector interfaces, test outcome
// statuses, and sentinel errors.
package types
