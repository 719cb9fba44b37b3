// Package logger provides structured logging for the KVS engine and its
// driver CLI.
//
// This package wraps log/slog for structured logging:
//
//   - logger.go: Logger interface, slog-backed implementation, level control
//   - context.go: Context-aware logging with a scenario run correlation id
//
// Features:
//
//   - JSON and text output formats
//   - Log level filtering
//   - Context propagation for a single run id across a scenario's steps
package logger
