// Package api defines transport types and shared workflows for the HTTP API
// and the CLI's --json output. It translates dictionary, search, and activity
// models into DTOs so neither surface depends on internal types.
//
// # Key Types
//
// Phrase: transport representation of a stored translation.
//
// Candidate: a scored search hit wrapping a Phrase.
//
// AlignResult/ImportResult/MergeResult: outcomes of the file workflows.
//
// # Workflows
//
// AlignFiles loads two SRT tracks, checks ordering, aligns them, and writes
// the pairs CSV. ImportSheet and ImportFile push a dictionary CSV into the
// store, skipping rows still waiting for review. Both surfaces call these so
// the CLI and web server count and report rows identically.
//
// # Design Notes
//
// DTOs use camelCase JSON tags. Timestamps use RFC3339 with milliseconds.
// Durations are reported in milliseconds.
package api
