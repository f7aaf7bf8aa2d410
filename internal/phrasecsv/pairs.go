package phrasecsv

import (
	"encoding/csv"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"phrasebook/internal/alignment"
	"phrasebook/internal/config"
	"phrasebook/internal/fileutil"
)

// Tag applied to rows the aligner could not match.
const UnmatchedTag = "unmatched"

var (
	dictionaryHeader = []string{"source", "target", "context", "tags", "eng_start", "eng_end", "jpn_start", "jpn_end"}
	pairsHeader      = []string{"source", "target", "eng_start", "eng_end", "jpn_start", "jpn_end"}
)

// PairsOptions selects the output layout.
type PairsOptions struct {
	Layout string
	Marker string
}

func (o PairsOptions) layout() string {
	if o.Layout == "" {
		return config.LayoutDictionary
	}
	return o.Layout
}

func (o PairsOptions) marker() string {
	if o.Marker == "" {
		return config.Default().Align.UnmatchedMarker
	}
	return o.Marker
}

// WritePairs writes one row per pair in the requested layout.
func WritePairs(w io.Writer, pairs []alignment.Pair, opts PairsOptions) error {
	layout := opts.layout()
	var bom *transform.Writer
	switch layout {
	case config.LayoutDictionary:
		bom = withBOM(w)
		w = bom
	case config.LayoutPairs:
	default:
		return fmt.Errorf("unknown layout %q", layout)
	}

	cw := csv.NewWriter(w)
	header := pairsHeader
	if layout == config.LayoutDictionary {
		header = dictionaryHeader
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, pair := range pairs {
		var record []string
		if layout == config.LayoutDictionary {
			record = dictionaryRecord(pair, opts.marker())
		} else {
			record = pairsRecord(pair)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", pair.SourceIndex, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	if bom != nil {
		return bom.Close()
	}
	return nil
}

// WritePairsFile writes pairs to path atomically.
func WritePairsFile(path string, pairs []alignment.Pair, opts PairsOptions) error {
	return fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return WritePairs(w, pairs, opts)
	})
}

func dictionaryRecord(pair alignment.Pair, marker string) []string {
	start := FormatOffset(pair.SourceStart)
	if !pair.Matched {
		return []string{
			pair.SourceText,
			marker,
			fmt.Sprintf("Time: %s (マッチなし)", start),
			UnmatchedTag,
			start,
			FormatOffset(pair.SourceEnd),
			"",
			"",
		}
	}
	return []string{
		pair.SourceText,
		pair.TargetText,
		"Time: " + start,
		"",
		start,
		FormatOffset(pair.SourceEnd),
		FormatOffset(pair.TargetStart),
		FormatOffset(pair.TargetEnd),
	}
}

func pairsRecord(pair alignment.Pair) []string {
	record := []string{
		pair.SourceText,
		pair.TargetText,
		FormatOffset(pair.SourceStart),
		FormatOffset(pair.SourceEnd),
		"",
		"",
	}
	if pair.Matched {
		record[4] = FormatOffset(pair.TargetStart)
		record[5] = FormatOffset(pair.TargetEnd)
	}
	return record
}

// withBOM prefixes everything written to w with a UTF-8 byte order mark.
// Close flushes the transformer without closing w.
func withBOM(w io.Writer) *transform.Writer {
	return transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
}
