// Package vm provides a VictoriaMetrics-based implementation of the
// types.MetricsCollector interface.
//
// Use this package to expose harness metrics (statement throughput, schema
// await latency, gated skips) in Prometheus format during long integration
// runs:
//
//	collector := vm.New(vm.WithPrefix("connector_it"))
//	h := casspark.New(cluster, casspark.WithMetrics(collector))
//	http.HandleFunc("/metrics", collector.Handler)
package vm
