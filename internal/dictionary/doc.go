// Package dictionary persists bilingual phrases in SQLite.
//
// Each source phrase appears once. Upsert replaces the translation, context,
// and tags of an existing source while keeping its creation time and usage
// counter. The database runs in WAL mode with a busy timeout, and writes retry
// with backoff when another process (the web server, a CLI import) holds the
// write lock.
package dictionary
