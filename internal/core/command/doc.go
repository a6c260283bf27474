// Package command implements the replikv command model.
//
// A decoded RESP array is turned into a typed Command by Parse, executed by
// an Executor against the key-value store and the replication state, and
// answered with one or more RESP messages.
//
// Supported commands (names are case-sensitive, upper-case):
//
//   - PING
//   - ECHO <message>
//   - GET <key>
//   - SET <key> <value> [px <milliseconds>]
//   - INFO [replication]
//   - REPLCONF listening-port <port> | REPLCONF capa <capability>
//   - PSYNC <replid> <offset>
//
// Parse and Execute return *domain.DomainError values; ErrorReply turns them
// into the "-ERR ..." frame sent to the client.
package command
