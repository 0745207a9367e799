package integration_test

import (
	"context"
	"flag"
	"fmt"
	"os"
	"testing"

	"github.com/gocql/gocql"

	"github.com/arloliu/casspark/test/testutil"
)

// sharedCluster holds the shared CQL cluster for all integration tests.
var sharedCluster *testutil.CQLCluster

// TestMain sets up shared test infrastructure for all integration tests.
// This avoids the overhead of starting a container for each individual test.
// Prefers ScyllaDB for faster startup, falls back to Cassandra if AIO is
// unavailable.
func TestMain(m *testing.M) {
	flag.Parse()

	if testing.Short() {
		return
	}

	// Check if we should skip container setup (for unit tests or CI without Docker)
	if os.Getenv("SKIP_INTEGRATION_TESTS") == "1" {
		fmt.Println("Skipping integration tests (SKIP_INTEGRATION_TESTS=1)")

		return
	}

	ctx := context.Background()

	fmt.Println("Starting shared CQL cluster for integration tests...")

	cluster, err := testutil.StartCQLCluster(ctx, testutil.DefaultCQLClusterOptions())
	if err != nil {
		fmt.Printf("Failed to start shared cluster: %v\n", err)

		return
	}
	sharedCluster = cluster

	fmt.Printf("Shared cluster ready! (using %s)\n", cluster.Type)

	_ = m.Run()

	fmt.Println("Cleaning up shared CQL cluster...")
	_ = sharedCluster.Terminate(ctx)
}

// sharedClusterConfig returns a fresh cluster config for the shared node.
// Each test builds its own harness over it; the container itself is shared.
func sharedClusterConfig(t *testing.T) *gocql.ClusterConfig {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	if sharedCluster == nil {
		t.Skip("shared cluster not available (run with -short=false and Docker)")
	}

	return sharedCluster.ClusterConfig()
}
