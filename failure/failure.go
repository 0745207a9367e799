// Package failure provides an always-marshalable failure summary for
// cross-process test reporting.
//
// Integration tests may run in an isolated worker process whose failures are
// shipped to a coordinating process. An arbitrary error value (wrapped driver
// errors, panic payloads) is not guaranteed to survive that boundary, so the
// harness flattens every failure into a fixed Summary value type (message
// plus cause-chain messages as plain strings) before it crosses. The full
// original is logged first, so no diagnostic text is lost.
package failure

import (
	"encoding/json"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/arloliu/casspark/internal/logging"
	"github.com/arloliu/casspark/types"
)

// Summary is a marshalable flattening of a test failure.
//
// It carries only plain strings and therefore always survives JSON encoding,
// regardless of the original error's concrete type.
type Summary struct {
	// Message is the top-level failure message.
	Message string `json:"message"`

	// Causes holds the messages of the unwrapped cause chain, outermost first.
	Causes []string `json:"causes,omitempty"`

	// Panicked is true when the failure originated from a recovered panic.
	Panicked bool `json:"panicked,omitempty"`
}

// Compile-time assertion that *Summary implements error.
var _ error = (*Summary)(nil)

// Error implements the error interface.
func (s *Summary) Error() string {
	if len(s.Causes) == 0 {
		return s.Message
	}

	return s.Message + ": caused by: " + strings.Join(s.Causes, ": caused by: ")
}

// RootCause returns the innermost cause message, or the message itself when
// the error had no cause chain.
func (s *Summary) RootCause() string {
	if len(s.Causes) == 0 {
		return s.Message
	}

	return s.Causes[len(s.Causes)-1]
}

// UnmarshalSummary decodes a JSON-encoded Summary, the symmetric helper for
// coordinators consuming reported failures.
//
// Parameters:
//   - data: JSON produced by encoding a Summary
//
// Returns:
//   - *Summary: The decoded summary
//   - error: Decoding error
func UnmarshalSummary(data []byte) (*Summary, error) {
	var s Summary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("casspark/failure: decode summary: %w", err)
	}

	return &s, nil
}

// Capture flattens an error into a Summary.
//
// The Unwrap chain (both single- and multi-error forms) is walked and each
// intermediate message recorded, so the root cause remains visible after the
// original error value is discarded.
//
// Parameters:
//   - err: The error to flatten (nil returns nil)
//
// Returns:
//   - *Summary: The flattened failure, or nil for a nil error
func Capture(err error) *Summary {
	if err == nil {
		return nil
	}

	// If the error already is a Summary, pass it through unchanged.
	if s, ok := err.(*Summary); ok {
		return s
	}

	s := &Summary{Message: err.Error()}
	for _, cause := range unwrapAll(err) {
		s.Causes = append(s.Causes, cause.Error())
	}

	return s
}

// maxCauseDepth bounds cause-chain traversal against pathological or cyclic
// Unwrap implementations.
const maxCauseDepth = 32

// unwrapAll collects the transitive causes of err, outermost first.
func unwrapAll(err error) []error {
	var causes []error

	queue := []error{err}
	for len(queue) > 0 && len(causes) < maxCauseDepth {
		cur := queue[0]
		queue = queue[1:]

		for _, next := range unwrapOnce(cur) {
			if next == nil {
				continue
			}
			causes = append(causes, next)
			queue = append(queue, next)
		}
	}

	return causes
}

// unwrapOnce returns the direct causes of err, handling both unwrap forms.
func unwrapOnce(err error) []error {
	switch e := err.(type) {
	case interface{ Unwrap() error }:
		if cause := e.Unwrap(); cause != nil {
			return []error{cause}
		}
	case interface{ Unwrap() []error }:
		return e.Unwrap()
	}

	return nil
}

// Guard runs a lifecycle hook and converts any escaping failure, whether an
// error return or a panic, into a Summary-backed error.
//
// The full original failure is logged through the provided logger before
// substitution, including the stack trace for panics.
//
// Parameters:
//   - logger: Logger receiving the full original diagnostic (nil uses no-op)
//   - name: Hook name used in log output (e.g. "beforeAll", "afterAll")
//   - fn: The hook body
//
// Returns:
//   - error: nil on success, otherwise a *Summary describing the failure
func Guard(logger types.Logger, name string, fn func() error) (err error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("lifecycle hook panicked",
				"hook", name,
				"panic", r,
				"stack", string(debug.Stack()),
			)

			err = &Summary{
				Message:  fmt.Sprintf("%s panicked: %v", name, r),
				Panicked: true,
			}
		}
	}()

	if hookErr := fn(); hookErr != nil {
		logger.Error("lifecycle hook failed", "hook", name, "error", hookErr)

		summary := *Capture(hookErr)
		summary.Message = name + ": " + summary.Message

		return &summary
	}

	return nil
}
