package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"phrasebook/internal/activity"
	"phrasebook/internal/api"
	"phrasebook/internal/dictionary"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Load a dictionary CSV into the phrase store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			var summary api.ImportSummary
			err = ctx.withStore(func(store *dictionary.Store) error {
				var err error
				summary, err = api.ImportFile(cmd.Context(), store, args[0], cfg.Align.UnmatchedMarker, logger)
				return err
			})
			if err != nil {
				return err
			}
			ctx.record(cmd.Context(), activity.ActionImport, fmt.Sprintf("rows=%d", summary.Imported+summary.Updated))

			if jsonOutput {
				return writeJSON(cmd, summary)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported: %d\n", summary.Imported)
			fmt.Fprintf(out, "Updated:  %d\n", summary.Updated)
			fmt.Fprintf(out, "Skipped:  %d\n", summary.Skipped)
			if summary.Invalid > 0 {
				fmt.Fprintf(out, "Invalid:  %d\n", summary.Invalid)
			}
			fmt.Fprintf(out, "%d phrases are now in the dictionary from %s\n", summary.Imported+summary.Updated, args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the summary as JSON")
	return cmd
}
