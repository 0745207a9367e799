package casspark

import (
	"time"

	"github.com/arloliu/casspark/internal/logging"
	"github.com/arloliu/casspark/internal/metrics"
	"github.com/arloliu/casspark/report"
	"github.com/arloliu/casspark/spark"
	"github.com/arloliu/casspark/types"
)

// Defaults for the harness's bounded polling helpers.
const (
	// DefaultAwaitTablesWindow bounds how long AwaitTables polls schema
	// metadata before giving up. Schema metadata propagation is eventually
	// consistent ("schema debouncing"), but on a single-node test cluster a
	// couple of seconds is plenty.
	DefaultAwaitTablesWindow = 2 * time.Second

	// DefaultAwaitTablesInterval is the poll interval for AwaitTables.
	DefaultAwaitTablesInterval = 100 * time.Millisecond

	// DefaultAuthReadyWindow bounds how long BootstrapMetastore waits for a
	// session open to succeed on an authenticated cluster. Freshly started
	// clusters provision their default credentials asynchronously.
	DefaultAuthReadyWindow = 60 * time.Second

	// DefaultAuthReadyInterval is the poll interval for the auth-ready wait.
	DefaultAuthReadyInterval = time.Second
)

// Config holds configuration for a Harness.
type Config struct {
	Logger  types.Logger
	Metrics types.MetricsCollector

	// Reporter receives test outcome records when ReportOutcome is used.
	// Optional; nil disables outcome reporting.
	Reporter report.Reporter

	// Spark configures the lazily opened Spark Connect session. The Remote
	// field must be set before Spark() is called.
	Spark spark.Config

	// RunID identifies this harness run in reports. Defaults to a random
	// UUID.
	RunID string

	// MaxInFlight overrides the executor's derived in-flight ceiling when
	// greater than zero.
	MaxInFlight int

	// AwaitTablesWindow and AwaitTablesInterval tune the AwaitTables
	// polling loop.
	AwaitTablesWindow   time.Duration
	AwaitTablesInterval time.Duration

	// AuthReadyWindow and AuthReadyInterval tune the authenticated-cluster
	// session-open wait in BootstrapMetastore.
	AuthReadyWindow   time.Duration
	AuthReadyInterval time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
//
// Returns:
//   - *Config: Configuration with default settings
func DefaultConfig() *Config {
	return &Config{
		Logger:              logging.NewNopLogger(),
		Metrics:             metrics.NewNopMetrics(),
		AwaitTablesWindow:   DefaultAwaitTablesWindow,
		AwaitTablesInterval: DefaultAwaitTablesInterval,
		AuthReadyWindow:     DefaultAuthReadyWindow,
		AuthReadyInterval:   DefaultAuthReadyInterval,
	}
}

// Option configures a Config.
type Option func(*Config)

// WithLogger sets the structured logger.
//
// If not set, a no-op logger is used that discards all messages.
// The logger interface is compatible with zap.SugaredLogger.
//
// Parameters:
//   - logger: The logger implementation
//
// Returns:
//   - Option: Configuration option
func WithLogger(logger types.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithMetrics sets the metrics collector.
//
// If not set, a no-op collector is used that discards all metrics.
// Use contrib/metrics/vm.New() for VictoriaMetrics integration.
//
// Parameters:
//   - collector: The metrics collector implementation
//
// Returns:
//   - Option: Configuration option
func WithMetrics(collector types.MetricsCollector) Option {
	return func(c *Config) {
		c.Metrics = collector
	}
}

// WithReporter sets the outcome reporter.
//
// Parameters:
//   - reporter: The reporter implementation (e.g. report.NewLocal(),
//     report.NewNATS(), recorder.Open())
//
// Returns:
//   - Option: Configuration option
func WithReporter(reporter report.Reporter) Option {
	return func(c *Config) {
		c.Reporter = reporter
	}
}

// WithSpark sets the Spark Connect session configuration.
//
// Parameters:
//   - config: The Spark session configuration
//
// Returns:
//   - Option: Configuration option
func WithSpark(config spark.Config) Option {
	return func(c *Config) {
		c.Spark = config
	}
}

// WithRunID sets the run identifier used in outcome reports.
//
// Parameters:
//   - runID: The run identifier
//
// Returns:
//   - Option: Configuration option
func WithRunID(runID string) Option {
	return func(c *Config) {
		c.RunID = runID
	}
}

// WithMaxInFlight overrides the executor's derived in-flight ceiling.
//
// Parameters:
//   - n: Maximum number of concurrently executing statements
//
// Returns:
//   - Option: Configuration option
func WithMaxInFlight(n int) Option {
	return func(c *Config) {
		c.MaxInFlight = n
	}
}

// WithAwaitTablesWindow tunes the AwaitTables polling loop.
//
// Parameters:
//   - window: Total time to poll before giving up
//   - interval: Delay between polls
//
// Returns:
//   - Option: Configuration option
func WithAwaitTablesWindow(window, interval time.Duration) Option {
	return func(c *Config) {
		if window > 0 {
			c.AwaitTablesWindow = window
		}
		if interval > 0 {
			c.AwaitTablesInterval = interval
		}
	}
}

// WithAuthReadyWindow tunes the authenticated-cluster session-open wait.
//
// Parameters:
//   - window: Total time to retry session opens before giving up
//   - interval: Delay between attempts
//
// Returns:
//   - Option: Configuration option
func WithAuthReadyWindow(window, interval time.Duration) Option {
	return func(c *Config) {
		if window > 0 {
			c.AuthReadyWindow = window
		}
		if interval > 0 {
			c.AuthReadyInterval = interval
		}
	}
}
