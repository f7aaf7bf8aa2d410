package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"phrasebook/internal/alignment"
	"phrasebook/internal/config"
	"phrasebook/internal/dictionary"
	"phrasebook/internal/logging"
	"phrasebook/internal/phrasecsv"
	"phrasebook/internal/services"
	"phrasebook/internal/subtitles"
)

// DefaultAlignOutput is the pairs CSV written when no output path is given.
const DefaultAlignOutput = "pairs.csv"

type AlignRequest struct {
	Config     *config.Config
	SourcePath string
	TargetPath string
	OutputPath string
	// Layout, MinOverlap, and Slack override the config when set.
	Layout     string
	MinOverlap time.Duration
	Slack      time.Duration
	// Sort reorders out-of-order captions instead of rejecting the file.
	Sort   bool
	Logger *slog.Logger
}

type AlignResult struct {
	OutputPath     string
	Layout         string
	SourceEncoding subtitles.Encoding
	TargetEncoding subtitles.Encoding
	Sorted         bool
	Pairs          []alignment.Pair
	Summary        alignment.Summary
}

// AlignFiles loads both SRT files, aligns them, and writes the pairs CSV.
func AlignFiles(ctx context.Context, req AlignRequest) (AlignResult, error) {
	cfg := req.Config
	if cfg == nil {
		return AlignResult{}, fmt.Errorf("configuration is required")
	}
	logger := req.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "aligner")

	layout := strings.ToLower(strings.TrimSpace(req.Layout))
	if layout == "" {
		layout = cfg.Align.Layout
	}
	if layout != config.LayoutDictionary && layout != config.LayoutPairs {
		return AlignResult{}, services.Wrap(services.ErrValidation, "aligner", "layout",
			fmt.Sprintf("unknown layout %q (use %s or %s)", layout, config.LayoutDictionary, config.LayoutPairs), nil)
	}
	out := strings.TrimSpace(req.OutputPath)
	if out == "" {
		out = DefaultAlignOutput
	}
	sortInput := req.Sort || cfg.Align.SortInput

	source, err := loadTrack(req.SourcePath, sortInput, logger)
	if err != nil {
		return AlignResult{}, err
	}
	target, err := loadTrack(req.TargetPath, sortInput, logger)
	if err != nil {
		return AlignResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return AlignResult{}, err
	}

	opts := alignment.Options{
		MinOverlap: cfg.MinOverlap(),
		Slack:      cfg.Slack(),
		Progress: func(done, total int) {
			logger.Debug("alignment progress", logging.Int("done", done), logging.Int("total", total))
		},
	}
	if req.MinOverlap > 0 {
		opts.MinOverlap = req.MinOverlap
	}
	if req.Slack > 0 {
		opts.Slack = req.Slack
	}

	pairs := alignment.Align(source.track.Captions, target.track.Captions, opts)
	summary := alignment.Summarize(pairs)

	if err := phrasecsv.WritePairsFile(out, pairs, phrasecsv.PairsOptions{
		Layout: layout,
		Marker: cfg.Align.UnmatchedMarker,
	}); err != nil {
		return AlignResult{}, fmt.Errorf("write pairs csv: %w", err)
	}

	logger.Info("alignment complete",
		logging.String("output", out),
		logging.String("layout", layout),
		logging.Int("total", summary.Total),
		logging.Int("matched", summary.Matched),
		logging.Int("unmatched", summary.Unmatched),
		logging.Duration("min_overlap", opts.MinOverlap),
		logging.Duration("slack", opts.Slack),
	)
	return AlignResult{
		OutputPath:     out,
		Layout:         layout,
		SourceEncoding: source.track.Encoding,
		TargetEncoding: target.track.Encoding,
		Sorted:         source.sorted || target.sorted,
		Pairs:          pairs,
		Summary:        summary,
	}, nil
}

type loadedTrack struct {
	track  *subtitles.Track
	sorted bool
}

func loadTrack(path string, sortInput bool, logger *slog.Logger) (loadedTrack, error) {
	track, err := subtitles.LoadFile(path)
	if err != nil {
		return loadedTrack{}, err
	}
	logger.Debug("subtitle track loaded",
		logging.String("path", path),
		logging.String("encoding", string(track.Encoding)),
		logging.Int("captions", len(track.Captions)),
	)

	orderErr := subtitles.CheckOrder(track.Captions)
	if orderErr == nil {
		return loadedTrack{track: track}, nil
	}
	if !sortInput {
		return loadedTrack{}, services.Wrap(services.ErrValidation, "aligner", "check order",
			fmt.Sprintf("%s is not sorted by start time (rerun with --sort)", path), orderErr)
	}
	logging.WarnWithContext(logger, "captions out of order; sorting by start time",
		"captions_sorted",
		logging.String("path", path),
		logging.String("detail", orderErr.Error()),
		logging.String(logging.FieldErrorHint, "check the subtitle file was exported correctly"),
		logging.String(logging.FieldImpact, "captions are aligned in start-time order"),
	)
	track.Captions = subtitles.SortByStart(track.Captions)
	return loadedTrack{track: track, sorted: true}, nil
}

// ImportStore is the subset of the dictionary used by imports.
type ImportStore interface {
	ImportBatch(ctx context.Context, inputs []dictionary.Input) (dictionary.ImportStats, error)
}

// ImportSheet writes every importable row of sheet. Rows whose target is
// empty or still the unmatched marker are skipped; rows that failed to parse
// are counted as invalid.
func ImportSheet(ctx context.Context, store ImportStore, sheet *phrasecsv.Sheet, marker string, logger *slog.Logger) (ImportSummary, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	var (
		summary ImportSummary
		inputs  []dictionary.Input
	)
	for _, row := range sheet.Rows {
		switch {
		case row.Err != nil:
			summary.Invalid++
			logger.Debug("skipping invalid row", logging.Int("line", row.Line), logging.Error(row.Err))
		case row.Skippable(marker):
			summary.Skipped++
		default:
			inputs = append(inputs, row.Phrase)
		}
	}
	if len(inputs) == 0 {
		return summary, nil
	}
	stats, err := store.ImportBatch(ctx, inputs)
	if err != nil {
		return ImportSummary{}, err
	}
	summary.Imported = stats.Imported
	summary.Updated = stats.Updated
	logger.Info("import complete",
		logging.Int("imported", summary.Imported),
		logging.Int("updated", summary.Updated),
		logging.Int("skipped", summary.Skipped),
		logging.Int("invalid", summary.Invalid),
	)
	return summary, nil
}

// ImportFile reads path and imports it with ImportSheet.
func ImportFile(ctx context.Context, store ImportStore, path, marker string, logger *slog.Logger) (ImportSummary, error) {
	sheet, err := phrasecsv.ReadFile(path)
	if err != nil {
		return ImportSummary{}, err
	}
	return ImportSheet(ctx, store, sheet, marker, logger)
}

// FromMergeResult converts a merge result.
func FromMergeResult(out string, r phrasecsv.MergeResult) MergeSummary {
	return MergeSummary{
		Output:     out,
		Files:      r.Files,
		Skipped:    r.Skipped,
		Rows:       r.Rows,
		Unique:     r.Unique,
		Duplicates: r.Duplicates,
		Invalid:    r.Invalid,
	}
}

// ErrorMessage renders err for API clients, dropping classification prefixes.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, marker := range []error{services.ErrValidation, services.ErrNotFound, services.ErrUnauthorized, services.ErrConfiguration, services.ErrTransient} {
		if errors.Is(err, marker) {
			msg = strings.TrimPrefix(msg, marker.Error()+": ")
		}
	}
	return msg
}
