// Package casspark provides a reusable integration-test harness for
// exercising a Spark-to-Cassandra connector against a live test cluster.
//
// The harness owns the fixtures every connector test suite needs: a lazily
// opened Cassandra session, a bounded async statement executor for schema
// setup, a Spark Connect session preconfigured with the connector's
// connection conf, and version-aware capability gates for skipping tests
// the cluster under test cannot run.
//
// # Key Features
//
//   - Lazy Fixtures: Session, executor, gates and Spark session open on
//     first use and are cached for the life of the harness
//   - Bounded Async DDL: Schema statements run through an executor capped
//     by the driver's connection capacity, never unbounded goroutines
//   - Deterministic Keyspaces: KeyspaceName derives a stable per-suite
//     keyspace name, so suites isolate from each other on a shared cluster
//   - Capability Gates: Protocol, release and DSE version checks that skip
//     rather than fail on clusters lacking a feature
//   - Portable Failures: Lifecycle hook failures are flattened into a
//     serializable summary that survives process boundaries
//   - Clean Teardown: The process environment is snapshotted at
//     construction and restored at Close
//
// # Basic Usage
//
//	cluster := gocql.NewCluster("127.0.0.1")
//	h, err := casspark.New(cluster,
//	    casspark.WithSpark(spark.Config{Remote: "sc://localhost:15002"}),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer h.Close()
//
//	ks := casspark.KeyspaceName("UserJoinSpec") // "test_user_join_spec"
//	if err := h.CreateKeyspace(ctx, ks); err != nil {
//	    log.Fatal(err)
//	}
//
//	exec, _ := h.Executor()
//	res, _ := exec.Submit(ctx, "CREATE TABLE "+ks+".users (id uuid PRIMARY KEY, name text)")
//	if err := res.Await(); err != nil {
//	    log.Fatal(err)
//	}
//	if err := h.AwaitTables(ctx, ks, "users"); err != nil {
//	    log.Fatal(err)
//	}
//
//	sess, err := h.Spark(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	df, err := sess.Sql(ctx, "SELECT * FROM casscatalog."+ks+".users")
//
// # Version Gating
//
// Tests that depend on cluster capabilities register the requirement up
// front and let the gate decide:
//
//	g, _ := h.Gate()
//	g.From(t, semver.MustParse("4.0.0"), func() {
//	    // Runs only on Cassandra 4.0 or newer, skips otherwise.
//	})
//
// # Sentinel Errors
//
// The harness defines sentinel errors for specific scenarios:
//
//   - types.ErrNoContactPoints: Harness created without cluster hosts
//   - types.ErrSessionClosed: Fixture requested after Close
//   - types.ErrExecutorClosed: Statement submitted to a closed executor
//   - types.ErrAwaitTimeout: AwaitTables window elapsed with tables missing
//   - types.ErrInvalidKeyspaceName: Keyspace name unsafe for DDL
//
// Check for sentinel errors using errors.Is:
//
//	if errors.Is(err, types.ErrAwaitTimeout) {
//	    // Schema did not propagate in time.
//	}
//
// # Outcome Reporting
//
// With a reporter configured (report.NewLocal, report.NewNATS, or a
// recorder.Recorder), per-test outcomes are delivered as structured
// records keyed by a run identifier:
//
//	h.ReportOutcome(ctx, "TestUserJoin", types.StatusFailed, "", err, elapsed)
package casspark
