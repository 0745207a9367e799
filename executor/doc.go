// Package executor provides a bounded-concurrency asynchronous CQL statement
// executor for integration tests.
//
// The executor caps simultaneous in-flight statements at a ceiling derived
// from the cluster configuration (per-node connections × per-connection
// request limit) and bridges asynchronous completions back to blocking test
// code through Result futures:
//
//	exec, _ := executor.New(session, clusterCfg)
//	defer exec.Close()
//
//	resA := exec.Submit(ctx, "INSERT INTO t (id) VALUES (?)", 1)
//	resB := exec.Submit(ctx, "INSERT INTO t (id) VALUES (?)", 2)
//	if err := executor.AwaitAll(resA, resB); err != nil {
//	    t.Fatal(err)
//	}
//
// The ceiling is a concurrency limit, not an ordering guarantee. Sequential
// semantics (e.g. drop-then-create DDL) are obtained by awaiting each result
// before submitting the next, which Execute does in one call.
package executor
