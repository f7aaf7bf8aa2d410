package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"phrasebook/internal/activity"
	"phrasebook/internal/api"
	"phrasebook/internal/fileutil"
)

func newActivityCommand(ctx *commandContext) *cobra.Command {
	var tail int
	var jsonOutput bool
	var output string

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show or download the activity log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := ctx.activityLog()
			if err != nil {
				return err
			}

			if output != "" {
				if _, err := os.Stat(log.Path()); err != nil {
					if os.IsNotExist(err) {
						return fmt.Errorf("no activity has been logged yet (%s)", log.Path())
					}
					return fmt.Errorf("inspect activity log: %w", err)
				}
				if err := fileutil.CopyFile(log.Path(), output); err != nil {
					return fmt.Errorf("copy activity log: %w", err)
				}
				ctx.record(cmd.Context(), activity.ActionDownloadLog, "")
				fmt.Fprintf(cmd.OutOrStdout(), "Copied activity log to %s\n", output)
				return nil
			}

			entries, err := log.Tail(cmd.Context(), tail)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, api.ActivityResponse{Entries: api.FromEntries(entries)})
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No activity recorded")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{e.Timestamp.Local().Format(time.DateTime), e.User, e.Action, e.Details})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Time", "User", "Action", "Details"}, rows, nil))
			return nil
		},
	}
	cmd.Flags().IntVarP(&tail, "tail", "n", 20, "Show only the last N entries (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print entries as JSON")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Copy the raw CSV log to this path instead of printing")
	return cmd
}
