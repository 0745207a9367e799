package executor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gocql/gocql"

	"github.com/arloliu/casspark/internal/logging"
	"github.com/arloliu/casspark/internal/metrics"
	"github.com/arloliu/casspark/types"
)

// Fallback sizing used when the cluster config does not specify limits.
const (
	defaultNumConns           = 2
	defaultRequestsPerConn    = 128
	defaultShutdownGraceLimit = 30 * time.Second
)

// StatementRunner abstracts the session surface the executor needs.
//
// *gocql.Session satisfies this via NewSessionRunner; tests can substitute
// a fake runner to exercise the executor without a live cluster.
type StatementRunner interface {
	// ExecContext executes a statement with bound values.
	ExecContext(ctx context.Context, stmt string, values ...any) error
}

// sessionRunner adapts *gocql.Session to StatementRunner.
type sessionRunner struct {
	session *gocql.Session
}

// ExecContext executes a statement on the underlying gocql session.
func (r *sessionRunner) ExecContext(ctx context.Context, stmt string, values ...any) error {
	return r.session.Query(stmt, values...).WithContext(ctx).Exec()
}

// NewSessionRunner wraps a gocql session as a StatementRunner.
//
// Parameters:
//   - session: The gocql session to wrap
//
// Returns:
//   - StatementRunner: A runner executing statements on the session
//   - error: types.ErrNilSession if session is nil
func NewSessionRunner(session *gocql.Session) (StatementRunner, error) {
	if session == nil {
		return nil, types.ErrNilSession
	}

	return &sessionRunner{session: session}, nil
}

// Option configures an Executor.
type Option func(*Executor)

// WithMaxInFlight overrides the derived in-flight statement ceiling.
//
// Parameters:
//   - n: Maximum number of concurrently executing statements (must be > 0)
//
// Returns:
//   - Option: A configuration option
func WithMaxInFlight(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.maxInFlight = n
		}
	}
}

// WithLogger sets the structured logger.
//
// Parameters:
//   - logger: The logger implementation
//
// Returns:
//   - Option: A configuration option
func WithLogger(logger types.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// WithMetrics sets the metrics collector.
//
// Parameters:
//   - collector: The metrics collector implementation
//
// Returns:
//   - Option: A configuration option
func WithMetrics(collector types.MetricsCollector) Option {
	return func(e *Executor) {
		e.metrics = collector
	}
}

// Executor is a bounded-concurrency asynchronous statement executor.
//
// It caps the number of simultaneously in-flight statements at
// NumConns × MaxRequestsPerConn derived from the cluster configuration
// (see MaxInFlightFor). The executor imposes a concurrency ceiling only;
// it makes no ordering guarantee across independently submitted statements.
// Callers that need ordering must await each Result before submitting the
// next statement.
//
// Each Executor is explicitly constructed and explicitly closed. It is
// created fresh per session and discarded with the session; there is no
// process-wide shared pool.
type Executor struct {
	runner      StatementRunner
	maxInFlight int
	sem         chan struct{}
	logger      types.Logger
	metrics     types.MetricsCollector

	inFlight atomic.Int64
	closed   atomic.Bool
	wg       sync.WaitGroup
}

// MaxInFlightFor derives the executor concurrency ceiling from a cluster
// configuration: per-node connection count times per-connection request limit.
// Unset fields fall back to conservative defaults (2 conns × 128 requests).
//
// Parameters:
//   - cfg: The gocql cluster configuration (may be nil)
//
// Returns:
//   - int: The derived in-flight ceiling
func MaxInFlightFor(cfg *gocql.ClusterConfig) int {
	numConns := defaultNumConns
	perConn := defaultRequestsPerConn

	if cfg != nil {
		if cfg.NumConns > 0 {
			numConns = cfg.NumConns
		}
		if cfg.MaxRequestsPerConn > 0 {
			perConn = cfg.MaxRequestsPerConn
		}
	}

	return numConns * perConn
}

// New creates an executor for the given gocql session, sizing its in-flight
// ceiling from the cluster configuration.
//
// Parameters:
//   - session: The gocql session to execute statements on
//   - cfg: The cluster configuration used for sizing (may be nil)
//   - opts: Configuration options
//
// Returns:
//   - *Executor: A new executor ready for submissions
//   - error: types.ErrNilSession if session is nil
func New(session *gocql.Session, cfg *gocql.ClusterConfig, opts ...Option) (*Executor, error) {
	runner, err := NewSessionRunner(session)
	if err != nil {
		return nil, err
	}

	e := NewWithRunner(runner, MaxInFlightFor(cfg), opts...)

	return e, nil
}

// NewWithRunner creates an executor around an arbitrary StatementRunner.
//
// Parameters:
//   - runner: The statement runner to execute against
//   - maxInFlight: The in-flight statement ceiling (values < 1 become 1)
//   - opts: Configuration options
//
// Returns:
//   - *Executor: A new executor ready for submissions
func NewWithRunner(runner StatementRunner, maxInFlight int, opts ...Option) *Executor {
	if maxInFlight < 1 {
		maxInFlight = 1
	}

	e := &Executor{
		runner:      runner,
		maxInFlight: maxInFlight,
		logger:      logging.NewNopLogger(),
		metrics:     metrics.NewNopMetrics(),
	}

	for _, opt := range opts {
		opt(e)
	}

	e.sem = make(chan struct{}, e.maxInFlight)

	return e
}

// MaxInFlight returns the configured in-flight statement ceiling.
func (e *Executor) MaxInFlight() int {
	return e.maxInFlight
}

// InFlight returns the current number of in-flight statements.
func (e *Executor) InFlight() int {
	return int(e.inFlight.Load())
}

// Submit executes a statement asynchronously, blocking only while the
// in-flight ceiling is saturated.
//
// The returned Result completes when the statement finishes. Submissions on
// a closed executor complete immediately with types.ErrExecutorClosed.
//
// Parameters:
//   - ctx: Context governing both slot acquisition and statement execution
//   - stmt: CQL statement with ? placeholders
//   - values: Values to bind to placeholders
//
// Returns:
//   - *Result: A future completing with the statement's outcome
func (e *Executor) Submit(ctx context.Context, stmt string, values ...any) *Result {
	res := newResult()

	if e.closed.Load() {
		res.complete(types.ErrExecutorClosed)

		return res
	}

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		res.complete(ctx.Err())

		return res
	}

	// Re-check after acquiring: Close may have raced the acquisition. The
	// WaitGroup registration happens before the re-check so that a
	// submission passing it is always covered by Close's drain wait; the
	// losing side of the race backs out again.
	e.wg.Add(1)
	if e.closed.Load() {
		e.wg.Done()
		<-e.sem
		res.complete(types.ErrExecutorClosed)

		return res
	}

	e.metrics.SetInFlight(int(e.inFlight.Add(1)))
	e.metrics.IncStatementTotal()

	go func() {
		defer func() {
			e.metrics.SetInFlight(int(e.inFlight.Add(-1)))
			<-e.sem
			e.wg.Done()
		}()

		start := time.Now()
		err := e.runner.ExecContext(ctx, stmt, values...)
		e.metrics.ObserveStatementDuration(time.Since(start).Seconds())

		if err != nil {
			e.metrics.IncStatementError()
			e.logger.Error("statement failed", "stmt", stmt, "error", err)
		}

		res.complete(err)
	}()

	return res
}

// Execute submits a statement and awaits its completion.
//
// This is the sequential building block for ordered DDL such as
// drop-then-create: each call returns only after the statement finished.
//
// Parameters:
//   - ctx: Context governing the execution
//   - stmt: CQL statement with ? placeholders
//   - values: Values to bind to placeholders
//
// Returns:
//   - error: The statement's outcome
func (e *Executor) Execute(ctx context.Context, stmt string, values ...any) error {
	return e.Submit(ctx, stmt, values...).Await()
}

// Close marks the executor closed and waits for in-flight statements to
// drain, up to a bounded grace period. Further submissions fail with
// types.ErrExecutorClosed.
//
// This method is safe to call multiple times.
func (e *Executor) Close() {
	if !e.closed.CompareAndSwap(false, true) {
		return
	}

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(defaultShutdownGraceLimit):
		e.logger.Warn("executor close timed out with statements in flight",
			"in_flight", e.inFlight.Load())
	}
}
