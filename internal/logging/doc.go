// Package logging assembles structured slog loggers and formatting helpers used
// across discsplit.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code can tag log
// lines with run identifiers and stage names. Console output is colorized only
// when every destination is a terminal. The package also provides a no-op
// logger for tests and wiring code that cannot fail.
package logging
