package phrasecsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"phrasebook/internal/dictionary"
	"phrasebook/internal/services"
)

// ErrMissingColumns is returned when a sheet lacks the source or target column.
var ErrMissingColumns = errors.New("csv must contain source and target columns")

// Row is one data line of a dictionary CSV. Err is set when the line could
// not be turned into a phrase; Phrase is still filled as far as possible.
type Row struct {
	Line   int
	Phrase dictionary.Input
	Err    error
}

// Skippable reports whether the row should not be imported: its target is
// empty or still carries the review marker.
func (r Row) Skippable(marker string) bool {
	target := strings.TrimSpace(r.Phrase.Target)
	return target == "" || (marker != "" && target == marker)
}

// Sheet is a parsed dictionary CSV.
type Sheet struct {
	Header     []string
	HasContext bool
	HasTags    bool
	Rows       []Row
}

// Valid returns rows without errors.
func (s *Sheet) Valid() []Row {
	out := make([]Row, 0, len(s.Rows))
	for _, row := range s.Rows {
		if row.Err == nil {
			out = append(out, row)
		}
	}
	return out
}

type columns struct {
	source, target, context, tags int
}

func (c columns) field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// Read parses a dictionary or pairs CSV. A leading UTF-8 or UTF-16 byte order
// mark is honored. Only header problems fail the whole read; per-line
// problems land in Row.Err.
func Read(r io.Reader) (*Sheet, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, services.Wrap(services.ErrValidation, "phrasecsv", "read header", "file is empty", ErrMissingColumns)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := columns{source: -1, target: -1, context: -1, tags: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "source":
			cols.source = i
		case "target":
			cols.target = i
		case "context":
			cols.context = i
		case "tags":
			cols.tags = i
		}
	}
	if cols.source < 0 || cols.target < 0 {
		return nil, services.Wrap(services.ErrValidation, "phrasecsv", "read header",
			fmt.Sprintf("found %s", strings.Join(header, ",")), ErrMissingColumns)
	}

	sheet := &Sheet{
		Header:     header,
		HasContext: cols.context >= 0,
		HasTags:    cols.tags >= 0,
	}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return nil, fmt.Errorf("read csv: %w", err)
			}
			sheet.Rows = append(sheet.Rows, Row{Line: parseErr.StartLine, Err: err})
			continue
		}
		line, _ := cr.FieldPos(0)
		row := Row{
			Line: line,
			Phrase: dictionary.Input{
				Source:  cols.field(record, cols.source),
				Target:  cols.field(record, cols.target),
				Context: cols.field(record, cols.context),
				Tags:    cols.field(record, cols.tags),
			},
		}
		if row.Phrase.Source == "" {
			row.Err = services.Wrap(services.ErrValidation, "phrasecsv", "read row",
				fmt.Sprintf("line %d: source is empty", line), nil)
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet, nil
}

// ReadFile opens path and parses it with Read.
func ReadFile(path string) (*Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "phrasecsv", "open", path, err)
		}
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	sheet, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sheet, nil
}
