package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"phrasebook/internal/activity"
	"phrasebook/internal/dictionary"
	"phrasebook/internal/phrasecsv"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every stored phrase to a CSV file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *dictionary.Store) error {
				phrases, err := store.List(cmd.Context(), dictionary.ListOptions{})
				if err != nil {
					return err
				}
				if err := phrasecsv.WriteExportFile(output, phrases); err != nil {
					return err
				}
				ctx.record(cmd.Context(), activity.ActionExportCSV, fmt.Sprintf("rows=%d", len(phrases)))
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d phrases to %s\n", len(phrases), output)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", phrasecsv.DefaultExportName, "Destination CSV")
	return cmd
}
