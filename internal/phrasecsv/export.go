package phrasecsv

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"time"

	"phrasebook/internal/dictionary"
	"phrasebook/internal/fileutil"
)

// DefaultExportName is the file name used when no export path is given.
const DefaultExportName = "phrases_export.csv"

var exportHeader = []string{"id", "source", "target", "context", "tags", "created_at", "usage_count"}

// WriteExport writes phrases in the order given, UTF-8 with a byte order mark.
func WriteExport(w io.Writer, phrases []*dictionary.Phrase) error {
	bom := withBOM(w)
	cw := csv.NewWriter(bom)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, p := range phrases {
		created := ""
		if !p.CreatedAt.IsZero() {
			created = p.CreatedAt.UTC().Format(time.RFC3339)
		}
		record := []string{
			strconv.FormatInt(p.ID, 10),
			p.Source,
			p.Target,
			p.Context,
			p.Tags,
			created,
			strconv.FormatInt(p.UsageCount, 10),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return errors.Join(cw.Error(), bom.Close())
}

// WriteExportFile writes phrases to path atomically.
func WriteExportFile(path string, phrases []*dictionary.Phrase) error {
	return fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return WriteExport(w, phrases)
	})
}
