package subtitles

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"

	"phrasebook/internal/services"
)

const japaneseSRT = "1\n00:00:01,050 --> 00:00:01,900\nこんにちは\n"

func TestDecodeDetectsEncodings(t *testing.T) {
	sjis, err := japanese.ShiftJIS.NewEncoder().Bytes([]byte(japaneseSRT))
	if err != nil {
		t.Fatalf("encode shift_jis: %v", err)
	}
	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(japaneseSRT))
	if err != nil {
		t.Fatalf("encode utf-16: %v", err)
	}

	tests := []struct {
		name string
		data []byte
		want Encoding
	}{
		{"utf-8", []byte(japaneseSRT), EncodingUTF8},
		{"utf-8 bom", append([]byte{0xEF, 0xBB, 0xBF}, japaneseSRT...), EncodingUTF8BOM},
		{"utf-16 bom", utf16, EncodingUTF16},
		{"shift_jis", sjis, EncodingShiftJIS},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, enc, err := Decode(tt.data)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if enc != tt.want {
				t.Fatalf("encoding = %q, want %q", enc, tt.want)
			}
			if text != japaneseSRT {
				t.Fatalf("decoded text = %q", text)
			}
		})
	}
}

func TestDecodeRejectsUndecodableBytes(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"bad trail byte", []byte("1\n00:00:01,000 --> 00:00:02,000\n\x81\x20\xff\xfe\xa0\n")},
		{"truncated lead byte", []byte("1\n00:00:01,000 --> 00:00:02,000\n\x82")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, enc, err := Decode(tt.data)
			if !errors.Is(err, ErrUndecodable) {
				t.Fatalf("expected ErrUndecodable, got text=%q enc=%q err=%v", text, enc, err)
			}
		})
	}
}

func TestLoadFileClassifiesErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "missing.srt"))
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	bad := filepath.Join(dir, "bad.srt")
	if err := os.WriteFile(bad, []byte("1\nnot a timing line\ntext\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err = LoadFile(bad)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected wrapped *ParseError, got %v", err)
	}

	garbled := filepath.Join(dir, "garbled.srt")
	if err := os.WriteFile(garbled, []byte("1\n00:00:01,000 --> 00:00:02,000\n\xff\xfe\xa0\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFile(garbled); !errors.Is(err, services.ErrValidation) || !errors.Is(err, ErrUndecodable) {
		t.Fatalf("expected undecodable validation error, got %v", err)
	}

	good := filepath.Join(dir, "good.srt")
	if err := os.WriteFile(good, []byte(japaneseSRT), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	track, err := LoadFile(good)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if track.Path != good || track.Encoding != EncodingUTF8 || len(track.Captions) != 1 {
		t.Fatalf("unexpected track: %+v", track)
	}
}
