package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/parkhaus/parking-cli/internal/api"
	"github.com/parkhaus/parking-cli/internal/model"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the parking HTTP API and expiration sweeper",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		e.Manager.Subscribe(func(t model.Ticket) {
			zap.L().Info("session expired",
				zap.String("ticket", t.ID),
				zap.String("plate", t.Plate),
				zap.String("zone", t.ZoneCode),
			)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := api.New(port, e.Catalog, e.Resolver, e.Manager)

		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			return srv.Run()
		})

		g.Go(func() error {
			e.Manager.Run(gctx)
			return nil
		})

		g.Go(func() error {
			<-gctx.Done()
			zap.L().Info("shutting down server")
			return srv.Shutdown(context.Background())
		})

		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
