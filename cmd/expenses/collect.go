package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	gmailapi "google.golang.org/api/gmail/v1"

	"github.com/caaosorio/expenses/pkg/api"
	"github.com/caaosorio/expenses/pkg/client"
	"github.com/caaosorio/expenses/pkg/collector"
	"github.com/caaosorio/expenses/pkg/config"
	"github.com/caaosorio/expenses/pkg/mail/gmail"
	"github.com/caaosorio/expenses/pkg/store/postgres"
)

func newCollectCommand(envFile *string, logger *slog.Logger) *cobra.Command {
	var period string

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Run one collection batch and print the per-kind summary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runCollect(ctx, *envFile, api.Period(period), logger)
		},
	}

	cmd.Flags().StringVar(&period, "period", string(api.PeriodDaily),
		"daily, weekly, partial_weekly, monthly or from_origin")

	return cmd
}

func runCollect(ctx context.Context, envFile string, period api.Period, logger *slog.Logger) error {
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

	summary, err := c.Summary(ctx, period)
	if err != nil {
		return fmt.Errorf("collecting %s: %w", period, err)
	}

	for _, k := range api.Kinds {
		b := summary.Buckets[k]
		fmt.Printf("%-24s %12.2f (%d)\n", b.Name, b.Amount, b.Count)
	}

	return nil
}

// buildCollector wires the mail source, optional store and collector
// from the configuration.
func buildCollector(ctx context.Context, cfg config.Config, logger *slog.Logger) (*collector.Collector, *postgres.Store, error) {
	httpClient, err := client.New(ctx, cfg.SecretsFile, gmailapi.GmailReadonlyScope)
	if err != nil {
		return nil, nil, fmt.Errorf("creating oauth client: %w", err)
	}

	source, err := gmail.New(httpClient, logger.With("component", "gmail"))
	if err != nil {
		return nil, nil, fmt.Errorf("creating gmail source: %w", err)
	}

	var store *postgres.Store
	if cfg.Postgres.Host != "" {
		store, err = postgres.New(ctx, postgres.Config{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
		}, logger.With("component", "store"))
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to store: %w", err)
		}
	}

	collectorCfg := collector.Config{
		Senders:     cfg.SenderList(),
		FetchLimit:  cfg.FetchLimit,
		ForeignRate: cfg.ForeignRate,
	}

	var storeIface api.Store
	if store != nil {
		storeIface = store
	}

	return collector.New(source, storeIface, collectorCfg, logger.With("component", "collector")), store, nil
}
