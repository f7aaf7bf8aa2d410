package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"phrasebook/internal/guide"
)

func newGuideCommand() *cobra.Command {
	var width int
	var raw bool

	cmd := &cobra.Command{
		Use:         "guide",
		Short:       "Show the user guide",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if raw {
				_, err := fmt.Fprint(out, guide.Markdown())
				return err
			}
			rendered, err := guide.Terminal(width, shouldColorize(out))
			if err != nil {
				return fmt.Errorf("render guide: %w", err)
			}
			_, err = fmt.Fprint(out, rendered)
			return err
		},
	}
	cmd.Flags().IntVar(&width, "width", 80, "Wrap width")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the Markdown source")
	return cmd
}
