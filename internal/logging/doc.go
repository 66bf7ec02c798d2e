// Package logging wraps log/slog with the repository's handler setup (console
// and JSON formats, multi-writer output), attribute helper aliases,
// standardized field keys, context-derived fields, and log file retention.
package logging
