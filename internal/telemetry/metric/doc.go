// Package metric provides Prometheus metrics for replikv.
//
//   - prometheus.go: Registry with command, connection, and replication metrics
//   - collector.go: Collector sampling the store and replication state at scrape time
//
// Metrics are exposed at /metrics by internal/server/httpserver.
package metric
