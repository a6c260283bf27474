// Package connection provides the network clients of replikv-cli.
//
//   - client.go: RESP client for the command port
//   - http.go: JSON client for the admin HTTP endpoints
package connection
