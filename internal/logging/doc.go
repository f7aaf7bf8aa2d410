// Package logging assembles structured slog loggers and formatting helpers used
// across phrasebook commands and the web server.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so request handlers can tag log
// lines with request IDs and user names. A run identifier can be stamped onto
// every record so one CLI invocation is easy to follow in the JSON log file.
// The package also provides a no-op logger for tests.
package logging
