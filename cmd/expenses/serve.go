package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/caaosorio/expenses/pkg/config"
	"github.com/caaosorio/expenses/pkg/server"
)

func newServeCommand(envFile *string, logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the reporting API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, *envFile, logger)
		},
	}
}

func runServe(ctx context.Context, envFile string, logger *slog.Logger) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}

	c, store, err := buildCollector(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	var merchants server.MerchantSource
	if store != nil {
		merchants = store
	}

	srv := server.New(c, merchants, server.Config{
		Addr:  cfg.APIAddr,
		Token: cfg.APIToken,
	}, logger.With("component", "server"))

	if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	logger.Info("server stopped")
	return nil
}
