package casspark

import (
	"os"
	"strings"
)

// SnapshotEnv captures the current process environment.
//
// The harness snapshots the environment at construction and restores it at
// teardown, so one suite's environment mutations never leak into the next.
// This guards sequential suite lifecycles only; it is not safe against
// concurrent suites mutating the environment simultaneously.
//
// Returns:
//   - map[string]string: The captured environment
func SnapshotEnv() map[string]string {
	env := os.Environ()
	snapshot := make(map[string]string, len(env))
	for _, kv := range env {
		if k, v, ok := strings.Cut(kv, "="); ok {
			snapshot[k] = v
		}
	}

	return snapshot
}

// RestoreEnv restores the process environment to a snapshot.
//
// Variables added since the snapshot are removed, removed ones re-added,
// and mutated ones reverted.
//
// Parameters:
//   - snapshot: The environment captured by SnapshotEnv
//
// Returns:
//   - error: The first Setenv/Unsetenv error encountered
func RestoreEnv(snapshot map[string]string) error {
	current := SnapshotEnv()

	for k := range current {
		if _, ok := snapshot[k]; !ok {
			if err := os.Unsetenv(k); err != nil {
				return err
			}
		}
	}

	for k, v := range snapshot {
		if cur, ok := current[k]; !ok || cur != v {
			if err := os.Setenv(k, v); err != nil {
				return err
			}
		}
	}

	return nil
}
