package gate

import (
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/arloliu/casspark/internal/logging"
	"github.com/arloliu/casspark/internal/metrics"
	"github.com/arloliu/casspark/types"
)

// T is the subset of *testing.T the gates need.
//
// Keeping this minimal lets the predicates be unit-tested with a fake
// without a live cluster.
type T interface {
	// Helper marks the calling function as a test helper.
	Helper()

	// Skipf marks the test as skipped with a formatted reason.
	Skipf(format string, args ...any)

	// Fatalf fails the test immediately with a formatted reason.
	Fatalf(format string, args ...any)
}

// Inspector reports the capabilities of the cluster under test.
type Inspector interface {
	// ProtocolVersion returns the negotiated native protocol version code.
	ProtocolVersion() (int, error)

	// ReleaseVersion returns the cluster's release version.
	ReleaseVersion() (*semver.Version, error)

	// DSEVersion returns the DSE version when the cluster is a DSE
	// distribution. The bool is false for non-DSE clusters; that is not an
	// error. Detection relies on a vendor-specific metadata property
	// (the dse_version column on system.local); its absence means "not DSE".
	DSEVersion() (*semver.Version, bool, error)
}

// Option configures a Gate.
type Option func(*Gate)

// WithLogger sets the structured logger.
//
// Parameters:
//   - logger: The logger implementation
//
// Returns:
//   - Option: A configuration option
func WithLogger(logger types.Logger) Option {
	return func(g *Gate) {
		g.logger = logger
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
	return func(g *Gate) {
		g.metrics = collector
	}
}

// Gate provides version- and capability-gated test execution.
//
// Each gate method wraps a test body: the body runs only when the cluster
// capability predicate holds, otherwise the test is marked skipped with a
// human-readable reason. A capability mismatch is never a failure.
//
// Gates hold no state across invocations; every call queries the inspector
// fresh.
type Gate struct {
	inspector Inspector
	logger    types.Logger
	metrics   types.MetricsCollector
}

// New creates a Gate over the given cluster inspector.
//
// Parameters:
//   - inspector: The capability source (e.g. NewSessionInspector)
//   - opts: Configuration options
//
// Returns:
//   - *Gate: A new gate
func New(inspector Inspector, opts ...Option) *Gate {
	g := &Gate{
		inspector: inspector,
		logger:    logging.NewNopLogger(),
		metrics:   metrics.NewNopMetrics(),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// SkipIfProtocolVersionGTE runs body only when the cluster's protocol
// version code is strictly less than v; otherwise the test is skipped.
//
// This is the exact complement of SkipIfProtocolVersionLT for any fixed
// cluster version.
//
// Parameters:
//   - t: The test handle
//   - v: The protocol version code that triggers the skip
//   - body: The test body to run when the gate passes
func (g *Gate) SkipIfProtocolVersionGTE(t T, v int, body func()) {
	t.Helper()

	current, err := g.inspector.ProtocolVersion()
	if err != nil {
		t.Fatalf("failed to determine protocol version: %v", err)

		return
	}

	if current >= v {
		g.skip(t, fmt.Sprintf("protocol version %d is >= %d", current, v))

		return
	}

	body()
}

// SkipIfProtocolVersionLT runs body only when the cluster's protocol
// version code is greater than or equal to v; otherwise the test is skipped.
//
// Parameters:
//   - t: The test handle
//   - v: The minimum protocol version code required
//   - body: The test body to run when the gate passes
func (g *Gate) SkipIfProtocolVersionLT(t T, v int, body func()) {
	t.Helper()

	current, err := g.inspector.ProtocolVersion()
	if err != nil {
		t.Fatalf("failed to determine protocol version: %v", err)

		return
	}

	if current < v {
		g.skip(t, fmt.Sprintf("protocol version %d is < %d", current, v))

		return
	}

	body()
}

// From runs body only when the cluster release version is at least min
// (non-strict comparison using database version ordering).
//
// Parameters:
//   - t: The test handle
//   - min: The minimum release version, e.g. "4.1.0"
//   - body: The test body to run when the gate passes
func (g *Gate) From(t T, min string, body func()) {
	t.Helper()

	required, err := semver.NewVersion(min)
	if err != nil {
		t.Fatalf("invalid minimum version %q: %v", min, err)

		return
	}

	current, err := g.inspector.ReleaseVersion()
	if err != nil {
		t.Fatalf("failed to determine release version: %v", err)

		return
	}

	if current.LessThan(required) {
		g.skip(t, fmt.Sprintf("cluster version %s is < %s", current, required))

		return
	}

	body()
}

// DSEOnly runs body only when the cluster is a DSE distribution.
//
// Parameters:
//   - t: The test handle
//   - body: The test body to run when the gate passes
func (g *Gate) DSEOnly(t T, body func()) {
	t.Helper()

	_, isDSE, err := g.inspector.DSEVersion()
	if err != nil {
		t.Fatalf("failed to determine DSE version: %v", err)

		return
	}

	if !isDSE {
		g.skip(t, "cluster is not a DSE distribution")

		return
	}

	body()
}

// DSEFrom runs body only when the cluster is a DSE distribution of at least
// the given version.
//
// Parameters:
//   - t: The test handle
//   - min: The minimum DSE version, e.g. "6.8.0"
//   - body: The test body to run when the gate passes
func (g *Gate) DSEFrom(t T, min string, body func()) {
	t.Helper()

	required, err := semver.NewVersion(min)
	if err != nil {
		t.Fatalf("invalid minimum version %q: %v", min, err)

		return
	}

	version, isDSE, err := g.inspector.DSEVersion()
	if err != nil {
		t.Fatalf("failed to determine DSE version: %v", err)

		return
	}

	if !isDSE {
		g.skip(t, "cluster is not a DSE distribution")

		return
	}

	if version.LessThan(required) {
		g.skip(t, fmt.Sprintf("DSE version %s is < %s", version, required))

		return
	}

	body()
}

// skip records the skip and marks the test skipped with the reason.
func (g *Gate) skip(t T, reason string) {
	t.Helper()

	g.metrics.IncSkipTotal()
	g.logger.Info("test skipped by capability gate", "reason", reason)
	t.Skipf("skipping: %s", reason)
}
