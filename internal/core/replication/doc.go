// Package replication implements the replica side of the primary/replica
// handshake.
//
// A replica connects to its primary and sends, in order:
//
//  1. PING
//  2. REPLCONF listening-port <port>
//  3. REPLCONF capa psync2
//  4. PSYNC ? -1
//
// Each of the first three steps waits for one reply. The fourth step only
// sends; the FULLRESYNC reply and snapshot that follow are left unread on
// the link, which Run hands back to the caller.
package replication
