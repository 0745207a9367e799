package casspark

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSnapshotEnv(t *testing.T) {
	t.Setenv("CASSPARK_TEST_SNAP", "original")

	snapshot := SnapshotEnv()
	require.Equal(t, "original", snapshot["CASSPARK_TEST_SNAP"])

	// The snapshot is a copy, not a live view.
	os.Setenv("CASSPARK_TEST_SNAP", "mutated")
	require.Equal(t, "original", snapshot["CASSPARK_TEST_SNAP"])
}

func TestRestoreEnv_RemovesAdded(t *testing.T) {
	snapshot := SnapshotEnv()

	os.Setenv("CASSPARK_TEST_ADDED", "value")
	t.Cleanup(func() { os.Unsetenv("CASSPARK_TEST_ADDED") })

	require.NoError(t, RestoreEnv(snapshot))

	_, ok := os.LookupEnv("CASSPARK_TEST_ADDED")
	require.False(t, ok)
}

func TestRestoreEnv_RestoresRemoved(t *testing.T) {
	t.Setenv("CASSPARK_TEST_REMOVED", "keep-me")
	snapshot := SnapshotEnv()

	os.Unsetenv("CASSPARK_TEST_REMOVED")
	require.NoError(t, RestoreEnv(snapshot))

	require.Equal(t, "keep-me", os.Getenv("CASSPARK_TEST_REMOVED"))
}

func TestRestoreEnv_RestoresMutated(t *testing.T) {
	t.Setenv("CASSPARK_TEST_MUTATED", "before")
	snapshot := SnapshotEnv()

	os.Setenv("CASSPARK_TEST_MUTATED", "after")
	require.NoError(t, RestoreEnv(snapshot))

	require.Equal(t, "before", os.Getenv("CASSPARK_TEST_MUTATED"))
}

func TestRestoreEnv_RestoresRemovedEmptyValue(t *testing.T) {
	t.Setenv("CASSPARK_TEST_EMPTY", "")
	snapshot := SnapshotEnv()

	os.Unsetenv("CASSPARK_TEST_EMPTY")
	require.NoError(t, RestoreEnv(snapshot))

	// Empty value and unset are distinct states.
	_, ok := os.LookupEnv("CASSPARK_TEST_EMPTY")
	require.True(t, ok)
}

func TestRestoreEnv_Idempotent(t *testing.T) {
	t.Setenv("CASSPARK_TEST_IDEM", "stable")
	snapshot := SnapshotEnv()

	require.NoError(t, RestoreEnv(snapshot))
	require.NoError(t, RestoreEnv(snapshot))
	require.Equal(t, "stable", os.Getenv("CASSPARK_TEST_IDEM"))
}
