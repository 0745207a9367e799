package executor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/casspark/test/testutil"
	"github.com/arloliu/casspark/types"
)

// fakeRunner implements StatementRunner for testing.
type fakeRunner struct {
	mu         sync.Mutex
	statements []string

	execErr error
	delay   time.Duration
	block   chan struct{} // when non-nil, ExecContext blocks until closed

	concurrent    atomic.Int64
	maxConcurrent atomic.Int64
}

func (f *fakeRunner) ExecContext(ctx context.Context, stmt string, values ...any) error {
	cur := f.concurrent.Add(1)
	defer f.concurrent.Add(-1)

	for {
		prev := f.maxConcurrent.Load()
		if cur <= prev || f.maxConcurrent.CompareAndSwap(prev, cur) {
			break
		}
	}

	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	f.statements = append(f.statements, stmt)
	f.mu.Unlock()

	return f.execErr
}

func (f *fakeRunner) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, len(f.statements))
	copy(out, f.statements)

	return out
}

func TestMaxInFlightFor(t *testing.T) {
	tests := []struct {
		name string
		cfg  *gocql.ClusterConfig
		want int
	}{
		{"nil config", nil, 256},
		{"zero fields", &gocql.ClusterConfig{}, 256},
		{"conns only", &gocql.ClusterConfig{NumConns: 4}, 512},
		{"both set", &gocql.ClusterConfig{NumConns: 3, MaxRequestsPerConn: 100}, 300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, MaxInFlightFor(tt.cfg))
		})
	}
}

func TestNewSessionRunner_NilSession(t *testing.T) {
	_, err := NewSessionRunner(nil)
	require.ErrorIs(t, err, types.ErrNilSession)
}

func TestExecutor_SubmitAwait(t *testing.T) {
	runner := &fakeRunner{}
	exec := NewWithRunner(runner, 4)
	defer exec.Close()

	res := exec.Submit(context.Background(), "SELECT 1")
	require.NoError(t, res.Await())
	require.Equal(t, []string{"SELECT 1"}, runner.recorded())
}

func TestExecutor_SubmitPropagatesError(t *testing.T) {
	wantErr := errors.New("boom")
	runner := &fakeRunner{execErr: wantErr}
	exec := NewWithRunner(runner, 4)
	defer exec.Close()

	err := exec.Submit(context.Background(), "SELECT 1").Await()
	require.ErrorIs(t, err, wantErr)
}

func TestExecutor_ExecuteOrdering(t *testing.T) {
	runner := &fakeRunner{}
	exec := NewWithRunner(runner, 8)
	defer exec.Close()

	ctx := context.Background()
	require.NoError(t, exec.Execute(ctx, "DROP KEYSPACE IF EXISTS ks"))
	require.NoError(t, exec.Execute(ctx, "CREATE KEYSPACE ks"))

	// Each Execute awaited completion, so the recorded order is fixed.
	require.Equal(t, []string{"DROP KEYSPACE IF EXISTS ks", "CREATE KEYSPACE ks"}, runner.recorded())
}

func TestExecutor_RespectsCeiling(t *testing.T) {
	block := make(chan struct{})
	runner := &fakeRunner{block: block}
	exec := NewWithRunner(runner, 3)
	defer exec.Close()

	ctx := context.Background()
	results := make([]*Result, 0, 3)
	for i := 0; i < 3; i++ {
		results = append(results, exec.Submit(ctx, "SELECT 1"))
	}

	// The ceiling is saturated; a fourth submission must block on slot
	// acquisition until a context deadline fires.
	shortCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()

	err := exec.Submit(shortCtx, "SELECT 2").Await()
	require.ErrorIs(t, err, context.DeadlineExceeded)

	close(block)
	require.NoError(t, AwaitAll(results...))
	require.LessOrEqual(t, runner.maxConcurrent.Load(), int64(3))
}

func TestExecutor_ConcurrencyNeverExceedsCeiling(t *testing.T) {
	runner := &fakeRunner{delay: time.Millisecond}
	exec := NewWithRunner(runner, 4)
	defer exec.Close()

	ctx := context.Background()
	results := make([]*Result, 0, 64)
	for i := 0; i < 64; i++ {
		results = append(results, exec.Submit(ctx, "SELECT 1"))
	}

	require.NoError(t, AwaitAll(results...))
	require.LessOrEqual(t, runner.maxConcurrent.Load(), int64(4))
	require.Len(t, runner.recorded(), 64)
}

func TestExecutor_SubmitAfterClose(t *testing.T) {
	exec := NewWithRunner(&fakeRunner{}, 2)
	exec.Close()

	err := exec.Submit(context.Background(), "SELECT 1").Await()
	require.ErrorIs(t, err, types.ErrExecutorClosed)
}

func TestExecutor_CloseDrainsInFlight(t *testing.T) {
	block := make(chan struct{})
	runner := &fakeRunner{block: block}
	exec := NewWithRunner(runner, 2)

	res := exec.Submit(context.Background(), "SELECT 1")

	closed := make(chan struct{})
	go func() {
		exec.Close()
		close(closed)
	}()

	select {
	case <-closed:
		t.Fatal("Close returned with a statement still in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(block)

	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("Close did not return after drain")
	}

	require.NoError(t, res.Await())
}

func TestExecutor_CloseRaceNeverExecutesAfterReturn(t *testing.T) {
	// Hammer Submit against Close: anything Close did not drain must fail
	// with ErrExecutorClosed, and nothing may start executing after Close
	// has returned.
	for i := 0; i < 50; i++ {
		runner := &fakeRunner{}
		exec := NewWithRunner(runner, 4)

		var wg sync.WaitGroup
		results := make(chan *Result, 64)
		for g := 0; g < 4; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 16; j++ {
					results <- exec.Submit(context.Background(), "SELECT 1")
				}
			}()
		}

		exec.Close()
		executedAtClose := len(runner.recorded())

		wg.Wait()
		close(results)
		for res := range results {
			if err := res.Await(); err != nil {
				require.ErrorIs(t, err, types.ErrExecutorClosed)
			}
		}

		require.Len(t, runner.recorded(), executedAtClose,
			"statement executed after Close returned")
	}
}

func TestExecutor_Instrumentation(t *testing.T) {
	collector := testutil.NewTestMetricsCollector()
	runner := &fakeRunner{delay: time.Millisecond}
	exec := NewWithRunner(runner, 4, WithMetrics(collector))
	defer exec.Close()

	ctx := context.Background()
	results := make([]*Result, 0, 16)
	for i := 0; i < 16; i++ {
		results = append(results, exec.Submit(ctx, "SELECT 1"))
	}
	require.NoError(t, AwaitAll(results...))

	require.EqualValues(t, 16, collector.StatementTotal.Load())
	require.EqualValues(t, 0, collector.StatementErrors.Load())
	require.Len(t, collector.StatementDurations(), 16)
	require.Equal(t, 0, collector.InFlight())
	require.GreaterOrEqual(t, collector.MaxInFlight(), 1)
	require.LessOrEqual(t, collector.MaxInFlight(), 4)

	runner.execErr = errors.New("boom")
	require.Error(t, exec.Execute(ctx, "SELECT 2"))
	require.Error(t, exec.Execute(ctx, "SELECT 3"))

	require.EqualValues(t, 18, collector.StatementTotal.Load())
	require.EqualValues(t, 2, collector.StatementErrors.Load())
}

func TestExecutor_CloseIdempotent(t *testing.T) {
	exec := NewWithRunner(&fakeRunner{}, 2)
	exec.Close()
	exec.Close()
}

func TestExecutor_MaxInFlightOption(t *testing.T) {
	exec := NewWithRunner(&fakeRunner{}, 100, WithMaxInFlight(7))
	defer exec.Close()

	require.Equal(t, 7, exec.MaxInFlight())
}

func TestExecutor_MinimumCeiling(t *testing.T) {
	exec := NewWithRunner(&fakeRunner{}, 0)
	defer exec.Close()

	require.Equal(t, 1, exec.MaxInFlight())
}

func TestResult_AwaitContext(t *testing.T) {
	block := make(chan struct{})
	runner := &fakeRunner{block: block}
	exec := NewWithRunner(runner, 2)
	defer exec.Close()

	res := exec.Submit(context.Background(), "SELECT 1")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, res.AwaitContext(ctx), context.DeadlineExceeded)

	// The statement itself is unaffected by the abandoned wait.
	close(block)
	require.NoError(t, res.Await())
}

func TestAwaitAll_JoinsErrors(t *testing.T) {
	errA := errors.New("a failed")
	errB := errors.New("b failed")

	resOK := newResult()
	resOK.complete(nil)
	resA := newResult()
	resA.complete(errA)
	resB := newResult()
	resB.complete(errB)

	err := AwaitAll(resOK, resA, resB)
	require.ErrorIs(t, err, errA)
	require.ErrorIs(t, err, errB)

	require.NoError(t, AwaitAll(resOK))
	require.NoError(t, AwaitAll())
}

func TestResult_AwaitMultipleGoroutines(t *testing.T) {
	wantErr := errors.New("shared outcome")
	res := newResult()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.ErrorIs(t, res.Await(), wantErr)
		}()
	}

	res.complete(wantErr)
	res.complete(errors.New("ignored"))
	wg.Wait()
}
