package recorder

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	// Register the sqlite3 driver.
	_ "github.com/mattn/go-sqlite3"

	"github.com/arloliu/casspark/failure"
	"github.com/arloliu/casspark/report"
	"github.com/arloliu/casspark/types"
)

// schema is applied on open; the journal is append-only.
const schema = `
CREATE TABLE IF NOT EXISTS test_outcomes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	test TEXT NOT NULL,
	status TEXT NOT NULL,
	reason TEXT NOT NULL DEFAULT '',
	failure_json TEXT NOT NULL DEFAULT '',
	duration_seconds REAL NOT NULL DEFAULT 0,
	recorded_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_test_outcomes_run ON test_outcomes (run_id);
CREATE INDEX IF NOT EXISTS idx_test_outcomes_test ON test_outcomes (test, status);
`

// Recorder persists test outcomes to a local SQLite journal for post-run
// flake analysis.
//
// It implements report.Reporter, so it can be used anywhere a reporter is
// expected, including chained behind a NATS reporter on a coordinator.
type Recorder struct {
	db *sql.DB
}

// Compile-time assertion that Recorder implements report.Reporter.
var _ report.Reporter = (*Recorder)(nil)

// Open opens (creating if necessary) the journal at the given path and
// applies the schema.
//
// Parameters:
//   - path: SQLite database file path (":memory:" for an ephemeral journal)
//
// Returns:
//   - *Recorder: An open recorder
//   - error: Error if the database cannot be opened or migrated
func Open(path string) (*Recorder, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("casspark/recorder: open %s: %w", path, err)
	}

	// SQLite serializes writers; a single connection avoids SQLITE_BUSY
	// churn from concurrent test goroutines.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("casspark/recorder: apply schema: %w", err)
	}

	return &Recorder{db: db}, nil
}

// Report appends a single outcome row to the journal.
func (r *Recorder) Report(ctx context.Context, rec report.Record) error {
	failureJSON := ""
	if rec.Failure != nil {
		data, err := json.Marshal(rec.Failure)
		if err != nil {
			return fmt.Errorf("casspark/recorder: encode failure: %w", err)
		}
		failureJSON = string(data)
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO test_outcomes (run_id, test, status, reason, failure_json, duration_seconds, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Test, string(rec.Status), rec.Reason, failureJSON, rec.DurationSeconds, rec.At,
	)
	if err != nil {
		return fmt.Errorf("casspark/recorder: insert outcome: %w", err)
	}

	return nil
}

// Outcomes returns all outcomes recorded for a run, in insertion order.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - runID: The run to query
//
// Returns:
//   - []report.Record: The recorded outcomes
//   - error: Query error
func (r *Recorder) Outcomes(ctx context.Context, runID string) ([]report.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT run_id, test, status, reason, failure_json, duration_seconds, recorded_at
		 FROM test_outcomes WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("casspark/recorder: query outcomes: %w", err)
	}
	defer rows.Close()

	var records []report.Record
	for rows.Next() {
		var (
			rec         report.Record
			status      string
			failureJSON string
		)
		if err := rows.Scan(&rec.RunID, &rec.Test, &status, &rec.Reason, &failureJSON, &rec.DurationSeconds, &rec.At); err != nil {
			return nil, fmt.Errorf("casspark/recorder: scan outcome: %w", err)
		}
		rec.Status = types.TestStatus(status)

		if failureJSON != "" {
			summary, err := failure.UnmarshalSummary([]byte(failureJSON))
			if err != nil {
				return nil, err
			}
			rec.Failure = summary
		}

		records = append(records, rec)
	}

	return records, rows.Err()
}

// FlakeCandidates returns the names of tests that have both passed and
// failed across all recorded runs.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//
// Returns:
//   - []string: Test names with mixed outcomes, sorted by name
//   - error: Query error
func (r *Recorder) FlakeCandidates(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT test FROM test_outcomes
		 WHERE status IN (?, ?)
		 GROUP BY test
		 HAVING COUNT(DISTINCT status) > 1
		 ORDER BY test`,
		string(types.StatusPassed), string(types.StatusFailed),
	)
	if err != nil {
		return nil, fmt.Errorf("casspark/recorder: query flake candidates: %w", err)
	}
	defer rows.Close()

	var tests []string
	for rows.Next() {
		var test string
		if err := rows.Scan(&test); err != nil {
			return nil, fmt.Errorf("casspark/recorder: scan flake candidate: %w", err)
		}
		tests = append(tests, test)
	}

	return tests, rows.Err()
}

// Close closes the underlying database.
//
// This method is safe to call multiple times.
func (r *Recorder) Close() error {
	return r.db.Close()
}
