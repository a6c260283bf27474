// Package main provides the entry point for replikv-server.
//
// replikv-server is an in-memory key-value server speaking the Redis
// protocol. Started with --replicaof it runs as a replica and performs the
// replication handshake with its primary before serving.
package main
