// Package logging assembles structured slog loggers used across autoshow.
//
// It owns the console and JSON handlers, level and output plumbing, and
// context-aware helpers that tag log lines with the item being processed, the
// pipeline stage, and the per-item correlation ID. A no-op logger is provided
// for tests and for components constructed without one.
package logging
