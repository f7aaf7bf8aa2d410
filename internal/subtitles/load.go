package subtitles

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"phrasebook/internal/services"
)

// LoadFile reads, decodes, and parses an SRT file. A missing file is tagged
// services.ErrNotFound; undecodable or malformed content is tagged
// services.ErrValidation.
func LoadFile(path string) (*Track, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "subtitles", "read", path, err)
		}
		return nil, fmt.Errorf("read srt %s: %w", path, err)
	}

	text, encoding, err := Decode(data)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "subtitles", "decode", path, err)
	}

	captions, err := Parse(text)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "subtitles", "parse", path, err)
	}

	return &Track{Path: path, Encoding: encoding, Captions: captions}, nil
}
