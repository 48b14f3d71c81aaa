package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/mentora-inc/mentora/internal/application/billing/usecases"
	"github.com/mentora-inc/mentora/internal/infrastructure/cache"
	"github.com/mentora-inc/mentora/internal/infrastructure/config"
	"github.com/mentora-inc/mentora/internal/infrastructure/database"
	"github.com/mentora-inc/mentora/internal/infrastructure/migration"
	"github.com/mentora-inc/mentora/internal/infrastructure/scheduler"
	httpRouter "github.com/mentora-inc/mentora/internal/interfaces/http"
	"github.com/mentora-inc/mentora/internal/shared/logger"
)

var (
	env         string
	autoMigrate bool
	seedPlans   bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Long:  `Start the Mentora billing HTTP server with the expiry sweeper.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Run database migrations on startup (not recommended for production)")
	cmd.Flags().BoolVar(&seedPlans, "seed-plans", false, "Seed the default plan catalog on startup")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cfg.Server.Mode = mapEnvToGinMode(env)

	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("starting server",
		"environment", env,
		"auto_migrate", autoMigrate,
		"seed_plans", seedPlans)

	gin.SetMode(cfg.Server.Mode)
	gin.DefaultWriter = io.Discard
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {
	}

	if err := database.Init(&cfg.Database); err != nil {
		logger.Fatal("failed to initialize database", "error", err)
	}
	defer database.Close()

	if autoMigrate {
		if env == "production" {
			logger.Warn("auto-migration is enabled in production environment")
		}
		if err := migration.Run(database.Get()); err != nil {
			logger.Fatal("auto-migration failed", "error", err)
		}
		logger.Info("auto-migration completed")
	}

	if seedPlans {
		if err := migration.SeedPlans(database.Get()); err != nil {
			logger.Fatal("plan seeding failed", "error", err)
		}
		logger.Info("plan catalog seeded")
	}

	planCache, redisClient := buildPlanCache(cfg)
	if redisClient != nil {
		defer redisClient.Close()
	}

	log := logger.NewLogger()
	router := httpRouter.NewRouter(database.Get(), planCache, cfg, log)
	router.SetupRoutes()

	sweepInterval := time.Duration(cfg.Billing.SweepIntervalMinutes) * time.Minute
	sweeper := scheduler.NewSweepScheduler(router.SweepUseCase(), sweepInterval, log.Named("sweeper"))
	sweeper.Start(context.Background())
	defer sweeper.Stop()

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      router.GetEngine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			"address", cfg.Server.GetAddr(),
			"mode", cfg.Server.Mode)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		return err
	}

	logger.Info("server exited gracefully")
	return nil
}

// buildPlanCache returns the Redis-backed catalog cache when Redis is
// enabled, otherwise a no-op cache.
func buildPlanCache(cfg *config.Config) (usecases.PlanCatalogCache, *redis.Client) {
	if !cfg.Redis.Enabled {
		logger.Info("redis disabled, plan catalog cache is a no-op")
		return cache.NoopPlanCatalogCache{}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, falling back to no-op plan cache", "error", err)
		client.Close()
		return cache.NoopPlanCatalogCache{}, nil
	}

	ttl := time.Duration(cfg.Billing.PlanCacheTTLMinutes) * time.Minute
	return cache.NewPlanCatalogCache(client, ttl, logger.NewLogger().Named("plan_cache")), client
}

func mapEnvToGinMode(environment string) string {
	switch environment {
	case "production", "prod", "release":
		return "release"
	case "test", "testing":
		return "test"
	default:
		return "debug"
	}
}
