// Package services defines shared utilities consumed by the CLI commands and
// the web server.
//
// Key responsibilities:
//   - Context helpers that stamp request IDs and user names for logging.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures (bad input, missing record, busy database) without string
//     matching. HTTPStatus turns those classes into response codes.
package services
