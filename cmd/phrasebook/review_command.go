package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"phrasebook/internal/activity"
	"phrasebook/internal/dictionary"
	"phrasebook/internal/phrasecsv"
	"phrasebook/internal/review"
	"phrasebook/internal/textutil"
)

func newReviewCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "review <pairs.csv>",
		Short: "Translate the unmatched rows of an aligned CSV interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			sheet, err := phrasecsv.ReadFile(args[0])
			if err != nil {
				return err
			}
			rows := review.Pending(sheet, cfg.Align.UnmatchedMarker)
			if len(rows) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Nothing to review in %s\n", args[0])
				return nil
			}

			return ctx.withStore(func(store *dictionary.Store) error {
				save := func(c context.Context, in dictionary.Input) error {
					if _, err := store.Upsert(c, in); err != nil {
						return err
					}
					ctx.record(c, activity.ActionReviewSave, fmt.Sprintf("%s -> %s",
						textutil.Truncate(in.Source, detailLimit), textutil.Truncate(in.Target, detailLimit)))
					return nil
				}
				result, err := review.Run(cmd.Context(), rows, save, review.Options{
					Input:  cmd.InOrStdin(),
					Output: cmd.OutOrStdout(),
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %d, skipped %d, remaining %d\n", result.Saved, result.Skipped, result.Remaining)
				return nil
			})
		},
	}
}
