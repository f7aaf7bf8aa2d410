// Package subtitles reads SRT subtitle files into ordered Caption values.
//
// Files are decoded from UTF-8 (with or without a byte order mark), UTF-16
// with a byte order mark, or Shift-JIS, then split into blocks of an optional
// numeric index, a timing line, and zero or more text lines. A block with a
// malformed timing line fails the whole parse with a *ParseError so callers
// never align a partially read track.
package subtitles
