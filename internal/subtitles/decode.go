package subtitles

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding names the character set a subtitle file was decoded from.
type Encoding string

const (
	EncodingUTF8     Encoding = "utf-8"
	EncodingUTF8BOM  Encoding = "utf-8-sig"
	EncodingUTF16    Encoding = "utf-16"
	EncodingShiftJIS Encoding = "shift_jis"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// ErrUndecodable reports bytes that are neither UTF-8 nor Shift-JIS.
var ErrUndecodable = errors.New("not valid utf-8 or shift_jis")

// Decode converts raw subtitle bytes to text. Byte order marks select UTF-8 or
// UTF-16; otherwise valid UTF-8 is used as is and anything else must decode
// cleanly as Shift-JIS (Windows-31J extensions included).
func Decode(data []byte) (string, Encoding, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return string(data[len(bomUTF8):]), EncodingUTF8BOM, nil
	case bytes.HasPrefix(data, bomUTF16LE), bytes.HasPrefix(data, bomUTF16BE):
		decoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		out, _, err := transform.Bytes(decoder, data)
		if err != nil {
			return "", "", fmt.Errorf("decode utf-16: %w", err)
		}
		return string(out), EncodingUTF16, nil
	case utf8.Valid(data):
		return string(data), EncodingUTF8, nil
	}

	out, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), data)
	if err != nil {
		return "", "", fmt.Errorf("decode shift_jis: %w", err)
	}
	// The decoder substitutes U+FFFD for invalid sequences and Shift-JIS has
	// no encoding for U+FFFD itself, so any replacement rune marks bad input.
	if i := bytes.IndexRune(out, utf8.RuneError); i >= 0 {
		return "", "", fmt.Errorf("decode shift_jis: invalid byte sequence near output offset %d: %w", i, ErrUndecodable)
	}
	return string(out), EncodingShiftJIS, nil
}
