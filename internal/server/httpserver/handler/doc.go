// Package handler provides the admin HTTP handlers of replikv.
//
//   - health.go: liveness, readiness and replication status
//   - types.go: response envelope and payloads
//
// Handlers never touch the key space beyond counting keys.
package handler
