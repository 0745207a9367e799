package spark

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	sparksql "github.com/apache/spark-connect-go/v35/spark/sql"

	"github.com/arloliu/casspark/internal/logging"
	"github.com/arloliu/casspark/types"
)

// Conf keys for the Spark-Cassandra connector. Every session opened by this
// package carries the cluster connection parameters under these keys.
const (
	confConnectionHost = "spark.cassandra.connection.host"
	confConnectionPort = "spark.cassandra.connection.port"
	confAuthUsername   = "spark.cassandra.auth.username"
	confAuthPassword   = "spark.cassandra.auth.password"
)

// Config describes the Spark Connect session to open and the Cassandra
// cluster it should be pointed at.
type Config struct {
	// Remote is the Spark Connect endpoint, e.g. "sc://localhost:15002".
	Remote string

	// CassandraHost is the contact point handed to the connector.
	CassandraHost string

	// CassandraPort is the native transport port. Defaults to 9042.
	CassandraPort int

	// Username and Password enable password authentication when non-empty.
	Username string
	Password string

	// Extra holds additional Spark conf entries applied verbatim.
	Extra map[string]string
}

// validate checks the mandatory connection parameters.
func (c *Config) validate() error {
	if c.Remote == "" {
		return WithType(errors.New("remote address is empty"), ErrInvalidConfiguration)
	}
	if !strings.HasPrefix(c.Remote, "sc://") {
		return WithType(fmt.Errorf("remote address %q must use the sc:// scheme", c.Remote), ErrInvalidConfiguration)
	}
	if c.CassandraHost == "" {
		return WithType(errors.New("cassandra host is empty"), ErrInvalidConfiguration)
	}

	return nil
}

// confPairs returns the full conf map for this config, sorted-key iteration
// friendly for deterministic application order.
func (c *Config) confPairs() map[string]string {
	port := c.CassandraPort
	if port == 0 {
		port = 9042
	}

	pairs := map[string]string{
		confConnectionHost: c.CassandraHost,
		confConnectionPort: fmt.Sprintf("%d", port),
	}

	if c.Username != "" {
		pairs[confAuthUsername] = c.Username
		pairs[confAuthPassword] = c.Password
	}

	for k, v := range c.Extra {
		pairs[k] = v
	}

	return pairs
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the structured logger.
//
// Parameters:
//   - logger: The logger implementation
//
// Returns:
//   - Option: A configuration option
func WithLogger(logger types.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// Session wraps a Spark Connect session configured against a test Cassandra
// cluster.
type Session struct {
	spark  sparksql.SparkSession
	config Config
	logger types.Logger
}

// Open builds a Spark Connect session for the given config and applies the
// Cassandra connection conf.
//
// Conf entries are applied through SET statements after the session is
// established, so they take effect for every subsequent query on the
// session.
//
// Parameters:
//   - ctx: Context for the connection attempt
//   - config: Session configuration
//   - opts: Configuration options
//
// Returns:
//   - *Session: An open Spark session
//   - error: ErrInvalidConfiguration or ErrConnection typed errors
func Open(ctx context.Context, config Config, opts ...Option) (*Session, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}

	s := &Session{
		config: config,
		logger: logging.NewNopLogger(),
	}

	for _, opt := range opts {
		opt(s)
	}

	spark, err := sparksql.NewSessionBuilder().Remote(config.Remote).Build(ctx)
	if err != nil {
		return nil, WithType(fmt.Errorf("failed to connect to %s: %w", config.Remote, err), ErrConnection)
	}
	s.spark = spark

	if err := s.applyConf(ctx); err != nil {
		_ = spark.Stop()

		return nil, err
	}

	s.logger.Info("spark session ready",
		"remote", config.Remote,
		"cassandra_host", config.CassandraHost,
	)

	return s, nil
}

// applyConf pushes the conf pairs into the session in deterministic order.
func (s *Session) applyConf(ctx context.Context) error {
	pairs := s.config.confPairs()

	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		stmt := fmt.Sprintf("SET %s=%s", k, pairs[k])
		if _, err := s.spark.Sql(ctx, stmt); err != nil {
			return WithType(fmt.Errorf("failed to apply conf %s: %w", k, err), ErrConnection)
		}
	}

	return nil
}

// Sql executes a Spark SQL statement on the session.
//
// Parameters:
//   - ctx: Context for the query
//   - query: The SQL text
//
// Returns:
//   - sparksql.DataFrame: The result frame
//   - error: Execution error
func (s *Session) Sql(ctx context.Context, query string) (sparksql.DataFrame, error) {
	return s.spark.Sql(ctx, query)
}

// Underlying returns the wrapped Spark Connect session for operations not
// covered by this facade.
func (s *Session) Underlying() sparksql.SparkSession {
	return s.spark
}

// Stop terminates the Spark session.
func (s *Session) Stop() error {
	if s.spark == nil {
		return nil
	}

	return s.spark.Stop()
}
