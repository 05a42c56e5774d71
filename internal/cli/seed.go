package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jerusalem-quest/internal/catalog"
	"jerusalem-quest/internal/config"
	"jerusalem-quest/internal/infra/postgres"
	"jerusalem-quest/internal/logger"
)

// NewSeedCmd loads the bundled question bank into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the bundled question bank into the questions table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log, err := logger.New(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			return runSeed(cmd.Context(), cfg, log)
		},
	}
}

func runSeed(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}
	if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
		return err
	}

	questions, err := catalog.Bundled()
	if err != nil {
		return err
	}

	pool, err := postgres.NewPool(ctx, cfg.Postgres.URL, postgres.PoolConfig{})
	if err != nil {
		return err
	}
	defer pool.Close()

	inserted, err := postgres.SeedQuestions(ctx, postgres.NewTransactor(pool), questions)
	if err != nil {
		return err
	}
	log.Info("question bank seeded",
		zap.Int("inserted", inserted),
		zap.Int("skipped", len(questions)-inserted),
	)
	return nil
}
