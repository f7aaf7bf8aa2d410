package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"phrasebook/internal/dictionary"
	"phrasebook/internal/web"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the shared web dictionary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if bind != "" {
				cfg.Server.Bind = bind
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			log, err := ctx.activityLog()
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return ctx.withStore(func(store *dictionary.Store) error {
				srv, err := web.New(cfg, web.Options{Store: store, Activity: log, Logger: logger})
				if err != nil {
					return err
				}
				return srv.Run(runCtx, func(addr string) {
					fmt.Fprintf(cmd.OutOrStdout(), "Serving phrasebook on http://%s (Ctrl+C to stop)\n", addr)
				})
			})
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (default from server.bind)")
	return cmd
}

