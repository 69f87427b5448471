// Package logger provides structured logging for deckshare.
//
// This package wraps log/slog:
//
//   - logger.go: handler construction, level control, rotating file output
//   - context.go: context-aware logging with request IDs
//
// The file output mirrors the host plugin's convention of a log file under
// /tmp and is rotated with lumberjack so a long-lived share cannot fill the disk.
package logger
