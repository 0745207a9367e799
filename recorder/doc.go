// Package recorder persists test outcomes to a local SQLite journal.
//
// The journal accumulates outcome rows across runs, enabling post-run
// analysis such as flake detection (tests with mixed pass/fail history).
// Recorder implements report.Reporter and can be chained behind any other
// reporter on a coordinating process.
package recorder
