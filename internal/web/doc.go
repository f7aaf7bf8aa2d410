// Package web serves the phrase dictionary over HTTP: a small HTML UI for
// uploading, searching, adopting, and editing translations, a JSON API with
// the same operations, and a websocket feed of the activity log.
//
// Pages authenticate with a signed session cookie; API calls accept the same
// cookie or an Authorization bearer token from POST /api/login. Only one
// server may run per data directory; Run takes a file lock before listening.
package web
