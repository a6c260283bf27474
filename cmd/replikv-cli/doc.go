// Package main provides the entry point for replikv-cli.
//
// replikv-cli talks to a replikv server over RESP, and to its admin HTTP
// API for health and replication status. Without a command it starts an
// interactive shell.
package main
