// Package logger provides structured logging for replikv.
//
//   - logger.go: slog setup, runtime level changes, and a handler that
//     stamps each record with the connection ID of its context
//   - context.go: connection IDs and context-carried loggers
//   - redact.go: credential redaction and value truncation
package logger
