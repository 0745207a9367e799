package casspark

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/casspark/failure"
	"github.com/arloliu/casspark/report"
	"github.com/arloliu/casspark/test/testutil"
	"github.com/arloliu/casspark/types"
)

func TestNew_NoContactPoints(t *testing.T) {
	_, err := New(nil)
	require.ErrorIs(t, err, types.ErrNoContactPoints)

	_, err = New(&gocql.ClusterConfig{})
	require.ErrorIs(t, err, types.ErrNoContactPoints)
}

func TestNew_RunID(t *testing.T) {
	cluster := gocql.NewCluster("127.0.0.1")

	h, err := New(cluster)
	require.NoError(t, err)
	defer h.Close()
	require.NotEmpty(t, h.RunID())

	h2, err := New(cluster)
	require.NoError(t, err)
	defer h2.Close()
	require.NotEqual(t, h.RunID(), h2.RunID())

	h3, err := New(cluster, WithRunID("ci-build-17"))
	require.NoError(t, err)
	defer h3.Close()
	require.Equal(t, "ci-build-17", h3.RunID())
}

func TestHarness_CloseRestoresEnv(t *testing.T) {
	t.Setenv("CASSPARK_HARNESS_ENV", "before")

	h, err := New(gocql.NewCluster("127.0.0.1"))
	require.NoError(t, err)

	os.Setenv("CASSPARK_HARNESS_ENV", "mutated")
	os.Setenv("CASSPARK_HARNESS_ADDED", "value")
	t.Cleanup(func() { os.Unsetenv("CASSPARK_HARNESS_ADDED") })

	require.NoError(t, h.Close())

	require.Equal(t, "before", os.Getenv("CASSPARK_HARNESS_ENV"))
	_, ok := os.LookupEnv("CASSPARK_HARNESS_ADDED")
	require.False(t, ok)
}

func TestHarness_SessionAfterClose(t *testing.T) {
	h, err := New(gocql.NewCluster("127.0.0.1"))
	require.NoError(t, err)
	require.NoError(t, h.Close())

	_, err = h.Session()
	require.ErrorIs(t, err, types.ErrSessionClosed)

	_, err = h.Spark(context.Background())
	require.ErrorIs(t, err, types.ErrSessionClosed)
}

func TestHarness_CloseIdempotent(t *testing.T) {
	h, err := New(gocql.NewCluster("127.0.0.1"))
	require.NoError(t, err)

	require.NoError(t, h.Close())
	require.NoError(t, h.Close())
}

func TestHarness_CreateKeyspaceValidatesName(t *testing.T) {
	h, err := New(gocql.NewCluster("127.0.0.1"))
	require.NoError(t, err)
	defer h.Close()

	err = h.CreateKeyspace(context.Background(), `bad"name`)
	require.ErrorIs(t, err, types.ErrInvalidKeyspaceName)
}

func TestHarness_Guarded(t *testing.T) {
	h, err := New(gocql.NewCluster("127.0.0.1"))
	require.NoError(t, err)
	defer h.Close()

	require.NoError(t, h.Guarded("beforeAll", func() error { return nil }))

	guardErr := h.Guarded("beforeAll", func() error {
		return errors.New("fixture broke")
	})
	require.Error(t, guardErr)

	var s *failure.Summary
	require.True(t, errors.As(guardErr, &s))
	require.Equal(t, "beforeAll: fixture broke", s.Message)

	panicErr := h.Guarded("afterAll", func() error { panic("teardown") })
	require.True(t, errors.As(panicErr, &s))
	require.True(t, s.Panicked)
}

func TestHarness_GuardedInstrumentation(t *testing.T) {
	logger := testutil.NewTestLogger()
	collector := testutil.NewTestMetricsCollector()

	h, err := New(gocql.NewCluster("127.0.0.1"),
		WithLogger(logger),
		WithMetrics(collector),
	)
	require.NoError(t, err)
	defer h.Close()

	require.NoError(t, h.Guarded("beforeAll", func() error { return nil }))
	require.EqualValues(t, 0, collector.FailureCaptured.Load())

	require.Error(t, h.Guarded("beforeAll", func() error {
		return errors.New("fixture broke")
	}))
	require.EqualValues(t, 1, collector.FailureCaptured.Load())
	require.True(t, logger.Contains("lifecycle hook failed"), "got:\n%s", logger)

	require.Error(t, h.Guarded("afterAll", func() error { panic("teardown") }))
	require.EqualValues(t, 2, collector.FailureCaptured.Load())
	require.True(t, logger.Contains("lifecycle hook panicked"), "got:\n%s", logger)
}

func TestHarness_ReportOutcome(t *testing.T) {
	local := report.NewLocal()
	defer local.Close()

	h, err := New(gocql.NewCluster("127.0.0.1"),
		WithRunID("run-report"),
		WithReporter(local),
	)
	require.NoError(t, err)
	defer h.Close()

	ctx := context.Background()
	testErr := errors.New("assertion failed")
	require.NoError(t, h.ReportOutcome(ctx, "TestWrite", types.StatusFailed, "", testErr, 1500*time.Millisecond))
	require.NoError(t, h.ReportOutcome(ctx, "TestGated", types.StatusSkipped, "not DSE", nil, 0))

	rec := <-local.Records()
	require.Equal(t, "run-report", rec.RunID)
	require.Equal(t, "TestWrite", rec.Test)
	require.Equal(t, types.StatusFailed, rec.Status)
	require.NotNil(t, rec.Failure)
	require.Equal(t, "assertion failed", rec.Failure.Message)
	require.InDelta(t, 1.5, rec.DurationSeconds, 1e-9)

	rec = <-local.Records()
	require.Equal(t, types.StatusSkipped, rec.Status)
	require.Equal(t, "not DSE", rec.Reason)
	require.Nil(t, rec.Failure)
}

func TestHarness_ReportOutcomeWithoutReporter(t *testing.T) {
	h, err := New(gocql.NewCluster("127.0.0.1"))
	require.NoError(t, err)
	defer h.Close()

	require.NoError(t, h.ReportOutcome(context.Background(), "TestAny", types.StatusPassed, "", nil, 0))
}
