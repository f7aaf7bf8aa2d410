// Package main hosts the phrasebook CLI entrypoint and command graph.
//
// The Cobra command tree covers the whole workflow: aligning subtitle pairs
// into CSV, merging and importing dictionaries, searching and curating stored
// phrases, reviewing unmatched rows in a terminal UI, and serving the shared
// web dictionary. Configuration resolution, logging setup, and activity
// recording live here so subcommands stay small; the real work belongs in the
// internal packages.
package main
