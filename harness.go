package casspark

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"

	"github.com/arloliu/casspark/executor"
	"github.com/arloliu/casspark/failure"
	"github.com/arloliu/casspark/gate"
	"github.com/arloliu/casspark/report"
	"github.com/arloliu/casspark/spark"
	"github.com/arloliu/casspark/types"
)

// Metastore DDL. The keyspace name is quoted because the Hive metastore
// convention uses a mixed-case identifier.
const (
	metastoreKeyspace = `HiveMetaStore`
	metastoreTable    = `sparkmetastore`

	createMetastoreKeyspaceDDL = `CREATE KEYSPACE IF NOT EXISTS "` + metastoreKeyspace +
		`" WITH REPLICATION = {'class':'SimpleStrategy','replication_factor':1}`
	createMetastoreTableDDL = `CREATE TABLE IF NOT EXISTS "` + metastoreKeyspace + `".` + metastoreTable +
		` (key text, entity text, value blob, PRIMARY KEY (key, entity))`
)

// Harness wires together a Spark Connect session, a Cassandra session, a
// bounded async statement executor, and capability gates, exposing them as
// reusable fixtures to concrete integration tests.
//
// A Harness is created per test suite and closed when the suite finishes.
// Sessions are opened lazily and cached; the executor is created with the
// session and discarded with it. The process environment is snapshotted at
// construction and restored by Close.
type Harness struct {
	cluster *gocql.ClusterConfig
	config  *Config
	logger  types.Logger
	metrics types.MetricsCollector
	runID   string

	envSnapshot map[string]string

	mu           sync.Mutex
	session      *gocql.Session
	exec         *executor.Executor
	sparkSession *spark.Session
	gates        *gate.Gate
	closed       bool
}

// New creates a harness over the given cluster configuration.
//
// The configuration is used both to open the lazily cached session and to
// size the async executor's in-flight ceiling.
//
// Parameters:
//   - cluster: Cluster connection parameters (required)
//   - opts: Configuration options
//
// Returns:
//   - *Harness: A new harness
//   - error: types.ErrNoContactPoints when the cluster has no hosts
func New(cluster *gocql.ClusterConfig, opts ...Option) (*Harness, error) {
	if cluster == nil || len(cluster.Hosts) == 0 {
		return nil, types.ErrNoContactPoints
	}

	config := DefaultConfig()
	for _, opt := range opts {
		opt(config)
	}

	runID := config.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	return &Harness{
		cluster:     cluster,
		config:      config,
		logger:      config.Logger,
		metrics:     config.Metrics,
		runID:       runID,
		envSnapshot: SnapshotEnv(),
	}, nil
}

// RunID returns the identifier attached to this harness's outcome reports.
func (h *Harness) RunID() string {
	return h.runID
}

// Session returns the harness's Cassandra session, opening it on first use.
//
// Subsequent calls return the same session. Connection failures propagate
// unchanged.
//
// Returns:
//   - *gocql.Session: The cached session
//   - error: Connection error, or types.ErrSessionClosed after Close
func (h *Harness) Session() (*gocql.Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.sessionLocked()
}

// sessionLocked opens and caches the session. Caller holds h.mu.
func (h *Harness) sessionLocked() (*gocql.Session, error) {
	if h.closed {
		return nil, types.ErrSessionClosed
	}

	if h.session != nil {
		return h.session, nil
	}

	session, err := h.cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("casspark: create session: %w", err)
	}

	if err := h.attachSessionLocked(session); err != nil {
		session.Close()

		return nil, err
	}

	h.logger.Info("session ready", "hosts", h.cluster.Hosts)

	return h.session, nil
}

// attachSessionLocked caches the session and builds its executor and gates.
// Caller holds h.mu.
func (h *Harness) attachSessionLocked(session *gocql.Session) error {
	execOpts := []executor.Option{
		executor.WithLogger(h.logger),
		executor.WithMetrics(h.metrics),
	}
	if h.config.MaxInFlight > 0 {
		execOpts = append(execOpts, executor.WithMaxInFlight(h.config.MaxInFlight))
	}

	exec, err := executor.New(session, h.cluster, execOpts...)
	if err != nil {
		return err
	}

	inspector, err := gate.NewSessionInspector(session)
	if err != nil {
		exec.Close()

		return err
	}

	h.session = session
	h.exec = exec
	h.gates = gate.New(inspector,
		gate.WithLogger(h.logger),
		gate.WithMetrics(h.metrics),
	)

	return nil
}

// Executor returns the bounded async statement executor tied to the
// harness session, opening the session on first use.
//
// Returns:
//   - *executor.Executor: The session's executor
//   - error: Session open error
func (h *Harness) Executor() (*executor.Executor, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := h.sessionLocked(); err != nil {
		return nil, err
	}

	return h.exec, nil
}

// Gate returns the capability gates backed by the harness session, opening
// the session on first use.
//
// Returns:
//   - *gate.Gate: The session's gates
//   - error: Session open error
func (h *Harness) Gate() (*gate.Gate, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := h.sessionLocked(); err != nil {
		return nil, err
	}

	return h.gates, nil
}

// Spark returns the harness's Spark Connect session, opening it on first
// use with the Cassandra connection conf derived from the cluster config.
//
// Parameters:
//   - ctx: Context for the connection attempt (first call only)
//
// Returns:
//   - *spark.Session: The cached Spark session
//   - error: Connection error, or types.ErrSessionClosed after Close
func (h *Harness) Spark(ctx context.Context) (*spark.Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, types.ErrSessionClosed
	}

	if h.sparkSession != nil {
		return h.sparkSession, nil
	}

	cfg := h.config.Spark
	if cfg.CassandraHost == "" && len(h.cluster.Hosts) > 0 {
		cfg.CassandraHost = h.cluster.Hosts[0]
	}
	if cfg.CassandraPort == 0 && h.cluster.Port != 0 {
		cfg.CassandraPort = h.cluster.Port
	}

	session, err := spark.Open(ctx, cfg, spark.WithLogger(h.logger))
	if err != nil {
		return nil, err
	}

	h.sparkSession = session

	return session, nil
}

// CreateKeyspace drops and recreates a test keyspace with single-node
// replication and durable writes disabled.
//
// The two DDL statements go through the bounded async executor, each
// awaited to completion before the next is submitted, so the drop-create
// order is deterministic despite the executor's internal concurrency. The
// operation is idempotent: calling it twice leaves exactly one keyspace
// with the name and no tables carried over from a prior run.
//
// Parameters:
//   - ctx: Context for the DDL statements
//   - name: The keyspace name (see KeyspaceName)
//
// Returns:
//   - error: Validation or execution error
func (h *Harness) CreateKeyspace(ctx context.Context, name string) error {
	if err := ValidateKeyspaceName(name); err != nil {
		return err
	}

	exec, err := h.Executor()
	if err != nil {
		return err
	}

	if err := exec.Execute(ctx, fmt.Sprintf(dropKeyspaceDDL, name)); err != nil {
		return fmt.Errorf("casspark: drop keyspace %s: %w", name, err)
	}

	if err := exec.Execute(ctx, fmt.Sprintf(createKeyspaceDDL, name)); err != nil {
		return fmt.Errorf("casspark: create keyspace %s: %w", name, err)
	}

	h.metrics.IncKeyspaceCreated()
	h.logger.Info("keyspace recreated", "keyspace", name)

	return nil
}

// AwaitTables polls the driver's schema metadata until every named table
// exists in the keyspace, or the bounded window elapses.
//
// The driver's metadata cache is eventually consistent with the cluster;
// this compensates for that propagation delay after DDL.
//
// Parameters:
//   - ctx: Context for cancellation
//   - keyspace: The keyspace to inspect
//   - tables: Table names that must all be present
//
// Returns:
//   - error: nil once all tables are visible; types.ErrAwaitTimeout
//     (wrapped, naming the missing tables) when the window elapses
func (h *Harness) AwaitTables(ctx context.Context, keyspace string, tables ...string) error {
	session, err := h.Session()
	if err != nil {
		return err
	}

	start := time.Now()
	deadline := start.Add(h.config.AwaitTablesWindow)

	var missing []string
	for {
		missing = missing[:0]

		meta, metaErr := session.KeyspaceMetadata(keyspace)
		if metaErr != nil {
			// The keyspace itself may not have propagated yet.
			missing = append(missing, tables...)
		} else {
			for _, table := range tables {
				if _, ok := meta.Tables[table]; !ok {
					missing = append(missing, table)
				}
			}
		}

		if len(missing) == 0 {
			h.metrics.ObserveAwaitDuration(time.Since(start).Seconds())

			return nil
		}

		if time.Now().After(deadline) {
			break
		}

		select {
		case <-time.After(h.config.AwaitTablesInterval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	h.metrics.IncAwaitTimeout()

	return fmt.Errorf("%w: tables %v not found in keyspace %s after %s",
		types.ErrAwaitTimeout, missing, keyspace, h.config.AwaitTablesWindow)
}

// BootstrapMetastore ensures the reserved metastore keyspace and its
// backing table exist, for cluster-backed catalog persistence.
//
// On an authenticated cluster the session open is retried within a bounded
// window first: cluster startup and credential propagation are asynchronous
// relative to test start, so the default credentials may not work
// immediately on a freshly started cluster.
//
// Parameters:
//   - ctx: Context for the session wait and DDL statements
//
// Returns:
//   - error: Session open or execution error
func (h *Harness) BootstrapMetastore(ctx context.Context) error {
	if h.cluster.Authenticator != nil {
		if err := h.awaitAuthReady(ctx); err != nil {
			return err
		}
	}

	exec, err := h.Executor()
	if err != nil {
		return err
	}

	if err := exec.Execute(ctx, createMetastoreKeyspaceDDL); err != nil {
		return fmt.Errorf("casspark: create metastore keyspace: %w", err)
	}

	if err := exec.Execute(ctx, createMetastoreTableDDL); err != nil {
		return fmt.Errorf("casspark: create metastore table: %w", err)
	}

	h.logger.Info("metastore bootstrapped", "keyspace", metastoreKeyspace, "table", metastoreTable)

	return nil
}

// awaitAuthReady retries session opens until one succeeds or the bounded
// window elapses. The successful session is cached as the harness session.
func (h *Harness) awaitAuthReady(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return types.ErrSessionClosed
	}

	if h.session != nil {
		return nil
	}

	deadline := time.Now().Add(h.config.AuthReadyWindow)

	var lastErr error
	for attempt := 1; ; attempt++ {
		session, err := h.cluster.CreateSession()
		if err == nil {
			if err := h.attachSessionLocked(session); err != nil {
				session.Close()

				return err
			}

			return nil
		}

		lastErr = err
		if time.Now().After(deadline) {
			break
		}

		h.logger.Debug("waiting for authenticated session", "attempt", attempt, "error", err)

		select {
		case <-time.After(h.config.AuthReadyInterval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return fmt.Errorf("casspark: authenticated session not ready within %s: %w",
		h.config.AuthReadyWindow, lastErr)
}

// Guarded runs a lifecycle hook (before-all, after-all, per-test fixture)
// and converts any escaping failure into an always-reportable
// failure.Summary, logging the full original first.
//
// Parameters:
//   - name: Hook name used in logs and the summary message
//   - fn: The hook body
//
// Returns:
//   - error: nil on success, otherwise a *failure.Summary
func (h *Harness) Guarded(name string, fn func() error) error {
	err := failure.Guard(h.logger, name, fn)
	if err != nil {
		h.metrics.IncFailureCaptured()
	}

	return err
}

// ReportOutcome delivers a test outcome to the configured reporter.
//
// Failures are flattened through failure.Capture so the record always
// crosses process boundaries. With no reporter configured this is a no-op.
//
// Parameters:
//   - ctx: Context for the delivery
//   - test: Fully qualified test name
//   - status: The outcome
//   - reason: Skip reason (StatusSkipped only)
//   - testErr: The failure (StatusFailed only; may be nil)
//   - duration: Wall-clock duration of the test body
//
// Returns:
//   - error: Delivery error
func (h *Harness) ReportOutcome(ctx context.Context, test string, status types.TestStatus, reason string, testErr error, duration time.Duration) error {
	if h.config.Reporter == nil {
		return nil
	}

	return h.config.Reporter.Report(ctx, report.Record{
		RunID:           h.runID,
		Test:            test,
		Status:          status,
		Reason:          reason,
		Failure:         failure.Capture(testErr),
		DurationSeconds: duration.Seconds(),
		At:              time.Now().UTC(),
	})
}

// Close tears the harness down: the executor drains, the sessions close,
// and the process environment is restored to its construction-time
// snapshot.
//
// This method is safe to call multiple times.
//
// Returns:
//   - error: Environment restore error, if any
func (h *Harness) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	if h.exec != nil {
		h.exec.Close()
	}
	if h.session != nil {
		h.session.Close()
		h.session = nil
	}
	if h.sparkSession != nil {
		if err := h.sparkSession.Stop(); err != nil {
			h.logger.Warn("failed to stop spark session", "error", err)
		}
		h.sparkSession = nil
	}

	return RestoreEnv(h.envSnapshot)
}
