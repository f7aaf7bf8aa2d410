package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"phrasebook/internal/activity"
	"phrasebook/internal/api"
)

func newAlignCommand(ctx *commandContext) *cobra.Command {
	var (
		output     string
		layout     string
		sortInput  bool
		minOverlap time.Duration
		slack      time.Duration
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "align <source.srt> <target.srt>",
		Short: "Pair captions from two subtitle files into a dictionary CSV",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if output == "" {
				output = api.DefaultAlignOutput
			}

			result, err := api.AlignFiles(cmd.Context(), api.AlignRequest{
				Config:     cfg,
				SourcePath: args[0],
				TargetPath: args[1],
				OutputPath: output,
				Layout:     layout,
				MinOverlap: minOverlap,
				Slack:      slack,
				Sort:       sortInput || cfg.Align.SortInput,
				Logger:     logger,
			})
			if err != nil {
				return err
			}
			summary := api.FromSummary(result.Summary)
			ctx.record(cmd.Context(), activity.ActionAlign, fmt.Sprintf("src=%s,tgt=%s,matched=%d/%d",
				filepath.Base(args[0]), filepath.Base(args[1]), summary.Matched, summary.Total))

			if jsonOutput {
				return writeJSON(cmd, struct {
					Output         string           `json:"output"`
					Layout         string           `json:"layout"`
					SourceEncoding string           `json:"sourceEncoding"`
					TargetEncoding string           `json:"targetEncoding"`
					Sorted         bool             `json:"sorted"`
					Summary        api.AlignSummary `json:"summary"`
				}{
					Output:         result.OutputPath,
					Layout:         result.Layout,
					SourceEncoding: string(result.SourceEncoding),
					TargetEncoding: string(result.TargetEncoding),
					Sorted:         result.Sorted,
					Summary:        summary,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Source: %s (%s)\n", args[0], result.SourceEncoding)
			fmt.Fprintf(out, "Target: %s (%s)\n", args[1], result.TargetEncoding)
			fmt.Fprintf(out, "Total:     %d\n", summary.Total)
			fmt.Fprintf(out, "Matched:   %d\n", summary.Matched)
			fmt.Fprintf(out, "Unmatched: %d\n", summary.Unmatched)
			fmt.Fprintf(out, "Match rate: %.1f%%\n", summary.MatchRate)
			fmt.Fprintf(out, "Wrote %s (%s layout)\n", result.OutputPath, result.Layout)
			if summary.Unmatched > 0 {
				fmt.Fprintf(out, "Hint: %d rows are marked %q; fill them in with `phrasebook review %s`, then import the file.\n",
					summary.Unmatched, cfg.Align.UnmatchedMarker, result.OutputPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output CSV path (default pairs.csv)")
	cmd.Flags().StringVar(&layout, "layout", "", "Output layout: dictionary or pairs (default from config)")
	cmd.Flags().BoolVar(&sortInput, "sort", false, "Sort captions by start time instead of rejecting out-of-order files")
	cmd.Flags().DurationVar(&minOverlap, "min-overlap", 0, "Minimum overlap for a match (default from config)")
	cmd.Flags().DurationVar(&slack, "slack", 0, "How far a target may start after the source ends (default from config)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the summary as JSON")
	return cmd
}
