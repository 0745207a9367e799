package report

import (
	"context"
	"time"

	"github.com/arloliu/casspark/failure"
	"github.com/arloliu/casspark/types"
)

// Record is one test outcome delivered from a worker process to the
// coordinator.
//
// Every field is a plain value type, so a Record always survives JSON
// encoding regardless of how the underlying test failed.
type Record struct {
	// RunID identifies the harness run the record belongs to.
	RunID string `json:"run_id"`

	// Test is the fully qualified test name.
	Test string `json:"test"`

	// Status is the test outcome.
	Status types.TestStatus `json:"status"`

	// Reason carries the skip reason for StatusSkipped records.
	Reason string `json:"reason,omitempty"`

	// Failure carries the flattened failure for StatusFailed records.
	Failure *failure.Summary `json:"failure,omitempty"`

	// DurationSeconds is the wall-clock duration of the test body.
	DurationSeconds float64 `json:"duration_seconds"`

	// At is the time the outcome was recorded.
	At time.Time `json:"at"`
}

// Reporter delivers test outcome records to a coordinator.
//
// Implementations must tolerate concurrent Report calls.
type Reporter interface {
	// Report delivers a single outcome record.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - rec: The outcome to deliver
	//
	// Returns:
	//   - error: nil on success, delivery error otherwise
	Report(ctx context.Context, rec Record) error

	// Close releases the reporter's resources.
	//
	// This method is safe to call multiple times.
	Close() error
}
