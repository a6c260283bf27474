// Package httpserver serves the admin HTTP endpoints of replikv:
//
//   - /health: liveness, version and key count
//   - /ready: readiness (a replica is ready after its handshake)
//   - /replication: role, replication ID and offset as JSON
//   - /metrics: Prometheus exposition
//
// The listener is optional and binds to loopback by default. Every request
// passes through Recover, RequestID and AccessLog.
package httpserver
