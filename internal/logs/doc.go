// Package logs reads the JSON log file written beside console output: the
// last N lines, a polling follow mode, and a compact human rendering of each
// record.
package logs
