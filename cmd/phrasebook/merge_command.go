package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"phrasebook/internal/activity"
	"phrasebook/internal/api"
	"phrasebook/internal/phrasecsv"
)

const defaultMergeOutput = "complete_dictionary.csv"

func newMergeCommand(ctx *commandContext) *cobra.Command {
	var output string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "merge <in.csv>...",
		Short: "Combine dictionary CSVs, keeping the first row for each source",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			result, err := phrasecsv.Merge(args, output, phrasecsv.MergeOptions{Logger: logger})
			if err != nil {
				return err
			}
			summary := api.FromMergeResult(output, result)
			ctx.record(cmd.Context(), activity.ActionMerge, fmt.Sprintf("files=%d,rows=%d", summary.Files, summary.Unique))

			if jsonOutput {
				return writeJSON(cmd, summary)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Files read:        %d\n", summary.Files)
			if summary.Skipped > 0 {
				fmt.Fprintf(out, "Files skipped:     %d\n", summary.Skipped)
			}
			fmt.Fprintf(out, "Rows before merge: %d\n", summary.Rows)
			fmt.Fprintf(out, "Duplicates removed: %d\n", summary.Duplicates)
			if summary.Invalid > 0 {
				fmt.Fprintf(out, "Invalid rows:      %d\n", summary.Invalid)
			}
			fmt.Fprintf(out, "Final phrases:     %d\n", summary.Unique)
			fmt.Fprintf(out, "Wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", defaultMergeOutput, "Merged CSV path")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the summary as JSON")
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(output) == "" {
			return fmt.Errorf("--output must not be empty")
		}
		return nil
	}
	return cmd
}
