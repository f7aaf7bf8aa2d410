package phrasecsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"phrasebook/internal/fileutil"
	"phrasebook/internal/logging"
	"phrasebook/internal/services"
)

// MergeOptions configures Merge.
type MergeOptions struct {
	Logger *slog.Logger
}

// MergeResult summarizes a merge run.
type MergeResult struct {
	Files      int // files read successfully
	Skipped    int // files that could not be read
	Rows       int // rows read across all files
	Unique     int // rows written
	Duplicates int // rows dropped because their source was already seen
	Invalid    int // rows dropped because they could not be parsed
}

type mergedRow struct {
	source, target, context, tags string
}

// Merge concatenates the given CSVs into out, keeping the first row for each
// source. Context and tags columns are written when any input carries them.
func Merge(inputs []string, out string, opts MergeOptions) (MergeResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	var (
		result     MergeResult
		rows       []mergedRow
		seen       = make(map[string]struct{})
		hasContext bool
		hasTags    bool
	)
	for _, path := range inputs {
		sheet, err := ReadFile(path)
		if err != nil {
			result.Skipped++
			logging.WarnWithContext(logger, "skipping unreadable csv",
				"merge_input_skipped",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the file has source and target columns"),
				logging.String(logging.FieldImpact, "rows from this file are not merged"),
			)
			continue
		}
		result.Files++
		hasContext = hasContext || sheet.HasContext
		hasTags = hasTags || sheet.HasTags

		for _, row := range sheet.Rows {
			result.Rows++
			if row.Err != nil {
				result.Invalid++
				continue
			}
			if _, dup := seen[row.Phrase.Source]; dup {
				result.Duplicates++
				continue
			}
			seen[row.Phrase.Source] = struct{}{}
			rows = append(rows, mergedRow{
				source:  row.Phrase.Source,
				target:  row.Phrase.Target,
				context: row.Phrase.Context,
				tags:    row.Phrase.Tags,
			})
		}
		logger.Debug("merged csv", logging.String("path", path), logging.Int("rows", len(sheet.Rows)))
	}
	if result.Files == 0 {
		return result, services.Wrap(services.ErrValidation, "phrasecsv", "merge", "no readable input files", nil)
	}
	result.Unique = len(rows)

	header := []string{"source", "target"}
	if hasContext {
		header = append(header, "context")
	}
	if hasTags {
		header = append(header, "tags")
	}
	err := fileutil.WriteAtomic(out, 0o644, func(w io.Writer) error {
		bom := withBOM(w)
		cw := csv.NewWriter(bom)
		if err := cw.Write(header); err != nil {
			return err
		}
		for _, row := range rows {
			record := []string{row.source, row.target}
			if hasContext {
				record = append(record, row.context)
			}
			if hasTags {
				record = append(record, row.tags)
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
		cw.Flush()
		return errors.Join(cw.Error(), bom.Close())
	})
	if err != nil {
		return result, fmt.Errorf("write merged csv: %w", err)
	}
	return result, nil
}
