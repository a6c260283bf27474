// Package output formats CLI results.
//
//   - reply.go: redis-cli style rendering of RESP replies
//   - table.go: aligned key/value and tabular text
//   - json.go, yaml.go: machine readable output
package output
