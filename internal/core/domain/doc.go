// Package domain defines the core domain models for replikv.
//
// Domain models are plain values without IO dependencies:
//
//   - ReplicationState: the node role (primary or replica) and replication
//     identity, shared by INFO, PSYNC and the replica handshake
//   - Errors: protocol, command and handshake error definitions
package domain
