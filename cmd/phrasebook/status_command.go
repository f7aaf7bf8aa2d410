package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"phrasebook/internal/api"
	"phrasebook/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check directories, database, users, and the web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg)
			results = append(results, preflight.CheckServerFromConfig(cmd.Context(), cfg))

			if jsonOutput {
				return writeJSON(cmd, struct {
					OK     bool              `json:"ok"`
					Checks []api.CheckResult `json:"checks"`
				}{OK: !preflight.Failed(results), Checks: api.FromChecks(results)})
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader("Phrasebook", colorize) {
				fmt.Fprintln(out, line)
			}
			// Missing users only block the web server.
			optional := map[string]bool{"Web users": true}
			for _, line := range checkLines(results, optional, colorize) {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print checks as JSON")
	return cmd
}
