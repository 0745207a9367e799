// Package gate provides version- and capability-gated test skipping for
// cluster-backed integration tests.
//
// A Gate wraps test bodies and runs them only when the live cluster satisfies
// a capability predicate such as a protocol version bound, a minimum release
// version, or DSE vendor detection. When the predicate fails, the test is reported as
// skipped with a readable reason rather than failing:
//
//	g := gate.New(inspector)
//	g.From(t, "4.0.0", func() {
//	    // runs only against Cassandra >= 4.0
//	})
//	g.SkipIfProtocolVersionGTE(t, 5, func() {
//	    // runs only when the negotiated protocol version is < 5
//	})
package gate
