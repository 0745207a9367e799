package executor

import (
	"context"
	"errors"
	"sync"
)

// Result is the future for an asynchronously submitted statement.
//
// A Result completes exactly once. All Await variants may be called from
// multiple goroutines and return the same outcome.
type Result struct {
	done chan struct{}
	once sync.Once
	err  error
}

func newResult() *Result {
	return &Result{done: make(chan struct{})}
}

// complete resolves the result. Subsequent calls are no-ops.
func (r *Result) complete(err error) {
	r.once.Do(func() {
		r.err = err
		close(r.done)
	})
}

// Done returns a channel that is closed when the statement finishes.
func (r *Result) Done() <-chan struct{} {
	return r.done
}

// Await blocks until the statement finishes and returns its outcome.
//
// There is deliberately no timeout here: the bounded-timeout behavior lives
// in the polling helpers upstream (AwaitTables, metastore bootstrap), and a
// test that hangs on a wedged cluster is more diagnosable than one that
// fails with a synthetic timeout. This is acceptable only in a test-harness
// context. Use AwaitContext when a deadline is required.
//
// Returns:
//   - error: nil on success, the statement's error otherwise
func (r *Result) Await() error {
	<-r.done

	return r.err
}

// AwaitContext blocks until the statement finishes or the context is done.
//
// Note that cancellation abandons the wait, not the statement: the
// underlying execution still runs to completion and releases its slot.
//
// Parameters:
//   - ctx: Context bounding the wait
//
// Returns:
//   - error: The statement's outcome, or the context error if it fired first
func (r *Result) AwaitContext(ctx context.Context) error {
	select {
	case <-r.done:
		return r.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Await blocks until the given result completes.
//
// Parameters:
//   - res: The result to wait on
//
// Returns:
//   - error: The result's outcome
func Await(res *Result) error {
	return res.Await()
}

// AwaitAll blocks until every result completes and joins their errors.
//
// Parameters:
//   - results: The results to wait on
//
// Returns:
//   - error: nil if all succeeded, otherwise the joined errors
func AwaitAll(results ...*Result) error {
	errs := make([]error, 0, len(results))
	for _, res := range results {
		if err := res.Await(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
