package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	cmsadapter "github.com/medtravel/hospitaldirectory/internal/adapters/cms"
	"github.com/medtravel/hospitaldirectory/internal/adapters/search"
	"github.com/medtravel/hospitaldirectory/internal/application/services"
	"github.com/medtravel/hospitaldirectory/internal/domain/providers"
	"github.com/medtravel/hospitaldirectory/internal/infrastructure/clients/cms"
	"github.com/medtravel/hospitaldirectory/internal/infrastructure/clients/typesense"
	"github.com/medtravel/hospitaldirectory/internal/infrastructure/observability"
	"github.com/medtravel/hospitaldirectory/internal/query/directory"
	"github.com/medtravel/hospitaldirectory/pkg/config"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		reset    bool
		interval string
	)

	cmd := &cobra.Command{
		Use:          "indexer",
		Short:        "Rebuild the directory search index from the CMS",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			every, err := parseInterval(interval)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			observability.InitLogger("directory-indexer", cfg.Server.Env)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, reset, every)
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "drop the existing collection before indexing")
	cmd.Flags().StringVar(&interval, "interval", "", "repeat every interval (e.g. 6h, 30m); falls back to REINDEX_INTERVAL")
	return cmd
}

func parseInterval(flagValue string) (time.Duration, error) {
	value := strings.TrimSpace(flagValue)
	if value == "" {
		value = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}
	if value == "" {
		return 0, nil
	}

	interval, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid interval %q: %w", value, err)
	}
	if interval <= 0 {
		return 0, fmt.Errorf("interval must be greater than zero")
	}
	return interval, nil
}

func run(ctx context.Context, cfg *config.Config, reset bool, interval time.Duration) error {
	if !cfg.Typesense.Enabled() {
		return fmt.Errorf("TYPESENSE_URL must be set")
	}

	source, err := contentSource(cfg)
	if err != nil {
		return err
	}
	tsClient, err := typesense.NewClient(ctx, &cfg.Typesense)
	if err != nil {
		return err
	}

	hospitals := services.NewHospitalService(source, cfg.Directory.MaxPageSize)
	indexer := services.NewIndexingService(search.NewTypesenseAdapter(tsClient))

	for {
		if err := indexOnce(ctx, hospitals, indexer, reset); err != nil {
			log.Error().Err(err).Msg("Reindex failed")
			if interval <= 0 {
				return err
			}
		}
		if interval <= 0 {
			return nil
		}

		reset = false
		log.Info().Dur("next_in", interval).Msg("Reindex complete")

		select {
		case <-ctx.Done():
			log.Info().Msg("Indexer shutting down")
			return nil
		case <-time.After(interval):
		}
	}
}

func indexOnce(ctx context.Context, hospitals *services.HospitalService, indexer *services.IndexingService, reset bool) error {
	start := time.Now()
	list, err := hospitals.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("load hospitals: %w", err)
	}

	count, err := indexer.Rebuild(ctx, directory.NewDataset(list), reset)
	if err != nil {
		return err
	}
	log.Info().
		Int("hospitals", len(list)).
		Int("documents", count).
		Dur("took", time.Since(start)).
		Msg("Directory index rebuilt")
	return nil
}

func contentSource(cfg *config.Config) (providers.CMSProvider, error) {
	if cfg.CMS.BaseURL != "" {
		client, err := cms.NewClient(&cfg.CMS, nil)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
	fixture, err := cmsadapter.LoadFixture(cfg.CMS.FixturePath)
	if err != nil {
		return nil, err
	}
	return fixture, nil
}
