package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/user-admin/user-admin/internal/config"
	httpapp "github.com/user-admin/user-admin/internal/http"
	"github.com/user-admin/user-admin/internal/http/handlers"
	"github.com/user-admin/user-admin/internal/logging"
	"github.com/user-admin/user-admin/internal/metrics"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:         "serve",
	Short:       "Run the admin console and the metrics listener.",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationStructuredLog: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func runServe(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := logging.Bootstrap(os.Stderr, cmd.CommandPath())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := newAPIClient(cfg, logger)
	if err != nil {
		return err
	}
	srv, err := httpapp.NewEchoServer(cfg, handlers.ClientFactory(client), logger)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Serve()
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return metrics.Serve(gctx, cfg.MetricsAddr, logger)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
