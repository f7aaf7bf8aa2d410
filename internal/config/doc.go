// Package config loads, normalizes, and validates phrasebook configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// PHRASEBOOK_USERS and PHRASEBOOK_SECRET. The Config type centralizes every
// knob the CLI and web server need: data locations, aligner thresholds,
// search limits, and server credentials.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, canonical log formats, and clear validation errors.
package config
