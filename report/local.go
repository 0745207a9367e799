package report

import (
	"context"
	"errors"
	"sync"
)

// defaultLocalBuffer is the channel capacity for the in-process reporter.
const defaultLocalBuffer = 256

// ErrBufferFull indicates the local reporter's buffer is saturated because
// no consumer is draining Records().
var ErrBufferFull = errors.New("casspark/report: local reporter buffer is full")

// Local is an in-process channel-backed reporter for single-process runs
// and unit tests.
//
// Unlike NATS, this implementation requires no external infrastructure and
// allows programmatic inspection of delivered records.
type Local struct {
	records chan Record
	mu      sync.Mutex
	closed  bool
}

// Compile-time assertion that Local implements Reporter.
var _ Reporter = (*Local)(nil)

// NewLocal creates a new in-process reporter.
//
// Returns:
//   - *Local: A new local reporter
func NewLocal() *Local {
	return &Local{
		records: make(chan Record, defaultLocalBuffer),
	}
}

// Report delivers the record to the in-process channel.
//
// Delivery never blocks; when the buffer is saturated ErrBufferFull is
// returned so the caller can surface the missing consumer instead of
// silently losing outcomes. Records reported after Close are discarded.
func (l *Local) Report(_ context.Context, rec Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}

	select {
	case l.records <- rec:
		return nil
	default:
		return ErrBufferFull
	}
}

// Records returns the channel of delivered records.
//
// The channel is closed when Close is called.
//
// Returns:
//   - <-chan Record: Channel of delivered outcome records
func (l *Local) Records() <-chan Record {
	return l.records
}

// Close closes the record channel.
//
// This method is safe to call multiple times.
func (l *Local) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}

	l.closed = true
	close(l.records)

	return nil
}
