package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"medledger/api/server"
)

func newServeCmd(a *app) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the ledger over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listen != "" {
				a.cfg.API.Listen = listen
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if a.cfg.API.JWTSecret == "" {
				a.log.Warn("api.jwt_secret is empty, /api/ routes are unauthenticated")
			}
			return server.NewServer(a.ledger, a.cfg, a.log).Start(ctx)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address, overrides api.listen")
	return cmd
}
