package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mentora-inc/mentora/internal/infrastructure/config"
	"github.com/mentora-inc/mentora/internal/infrastructure/database"
	"github.com/mentora-inc/mentora/internal/infrastructure/migration"
	"github.com/mentora-inc/mentora/internal/shared/logger"
)

var env string

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Run schema migrations and seed the default plan catalog.`,
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")

	cmd.AddCommand(
		newUpCommand(),
		newSeedCommand(),
	)

	return cmd
}

func newUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Run all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := setup(); err != nil {
				return err
			}
			defer database.Close()

			if err := migration.Run(database.Get()); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			logger.Info("migrations applied")
			return nil
		},
	}
}

func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the default plan catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := setup(); err != nil {
				return err
			}
			defer database.Close()

			if err := migration.SeedPlans(database.Get()); err != nil {
				return fmt.Errorf("plan seeding failed: %w", err)
			}
			logger.Info("plan catalog seeded")
			return nil
		},
	}
}

func setup() error {
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	return nil
}
