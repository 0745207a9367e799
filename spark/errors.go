package spark

import (
	"fmt"
	"io"

	"github.com/go-errors/errors"
)

// wrappedError pairs a stable error type with a stack-carrying cause so
// callers can classify with errors.Is while logs keep the full trace.
type wrappedError struct {
	errorType error
	cause     *errors.Error
}

func (w *wrappedError) Unwrap() []error {
	return []error{w.errorType, w.cause}
}

func (w *wrappedError) Error() string {
	return fmt.Sprintf("%s: %s", w.errorType, w.cause)
}

// Format formats the error, supporting both short forms (v, s, q) and the
// verbose form (+v) which includes the captured stack.
func (w *wrappedError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			_, _ = io.WriteString(s, "[casspark/spark] ")
			_, _ = io.WriteString(s, fmt.Sprintf("Error Type: %s\n", w.errorType.Error()))
			_, _ = io.WriteString(s, fmt.Sprintf("Error Cause: %s\n%s", w.cause.Err.Error(), w.cause.Stack()))

			return
		}
		fallthrough
	case 's':
		_, _ = io.WriteString(s, w.Error())
	case 'q':
		_, _ = fmt.Fprintf(s, "%q", w.errorType.Error())
	}
}

// WithType wraps an error with a type that can later be checked using errors.Is.
func WithType(err error, errType errorType) error {
	return &wrappedError{cause: errors.Wrap(err, 1), errorType: errType}
}

type errorType error

// Stable error types for classification with errors.Is.
var (
	// ErrInvalidConfiguration indicates the session configuration is unusable.
	ErrInvalidConfiguration = errorType(errors.New("invalid configuration"))

	// ErrConnection indicates the Spark Connect endpoint could not be reached.
	ErrConnection = errorType(errors.New("connection error"))
)
