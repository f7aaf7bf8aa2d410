// Package preflight provides readiness checks for the filesystem paths,
// database, and credentials phrasebook depends on.
//
// These checks run in two contexts:
//   - The CLI "phrasebook status" command renders every result as a status line.
//   - The web server's health endpoint reports the same results to API clients.
package preflight
