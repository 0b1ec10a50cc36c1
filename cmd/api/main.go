package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/campaign-economics/internal/amount"
	"github.com/fairyhunter13/campaign-economics/internal/config"
	"github.com/fairyhunter13/campaign-economics/internal/handler"
	"github.com/fairyhunter13/campaign-economics/internal/repository"
	"github.com/fairyhunter13/campaign-economics/internal/scheduler"
	"github.com/fairyhunter13/campaign-economics/internal/service"
	"github.com/fairyhunter13/campaign-economics/internal/validator"
	"github.com/fairyhunter13/campaign-economics/migrations"
	"github.com/fairyhunter13/campaign-economics/pkg/database"
)

func main() {
	// Load configuration first
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize zerolog based on configuration
	initLogger(cfg)

	// Create context for startup
	ctx := context.Background()

	if cfg.DB.AutoMigrate {
		if err := database.RunMigrations(cfg.DB.URL(), migrations.FS); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	// Initialize database pool with retry
	pool, err := database.NewPool(ctx, cfg.DB.DSN(), 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	rate, err := amount.NewRate(cfg.Economics.CentsPerGem)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid gem price")
	}

	// Initialize Fiber with production-ready configuration
	app := fiber.New(fiber.Config{
		AppName:      "Campaign Economics",
		ReadTimeout:  30 * time.Second,  // Max time to read request
		WriteTimeout: 30 * time.Second,  // Max time to write response
		IdleTimeout:  120 * time.Second, // Max time for keep-alive connections
		BodyLimit:    1 * 1024 * 1024,   // 1MB body limit (explicit, prevents large payloads)
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New()) // Adds X-Request-ID header to all requests
	app.Use(logger.New())

	validate := validator.New()

	// Repositories
	repos := service.Repositories{
		Campaigns: repository.NewCampaignRepository(pool),
		Drops:     repository.NewDropRepository(pool),
		Coupons:   repository.NewCouponRepository(pool),
		Content:   repository.NewContentRepository(pool),
		Fundings:  repository.NewFundingRepository(pool),
	}

	// Services
	campaignService := service.NewCampaignService(pool, repos, rate)
	dropService := service.NewDropService(pool, repos.Drops, repos.Campaigns)
	couponService := service.NewCouponService(pool, repos.Coupons, repos.Campaigns)
	contentService := service.NewContentService(pool, repos.Content, repos.Campaigns)

	// Operational routes
	healthHandler := handler.NewHealthHandler(pool)
	app.Get("/health", healthHandler.Check)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// API routes
	handler.RegisterRoutes(app, handler.Handlers{
		Campaigns: handler.NewCampaignHandler(campaignService, validate),
		Drops:     handler.NewDropHandler(dropService, validate),
		Coupons:   handler.NewCouponHandler(couponService),
		Content:   handler.NewContentHandler(contentService, validate),
	})

	// Lifecycle sweeper expires drops and completes campaigns on schedule
	var sweeper *scheduler.LifecycleSweeper
	if cfg.Scheduler.Enabled {
		sweeper, err = scheduler.NewLifecycleSweeper(cfg.Scheduler.Spec, dropService, campaignService)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create lifecycle sweeper")
		}
		sweeper.Start()
	}

	// Start server with graceful shutdown
	go func() {
		log.Info().
			Str("port", cfg.Server.Port).
			Int64("cents_per_gem", rate.CentsPerGem()).
			Msg("starting server")
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	log.Info().Int("timeout_seconds", cfg.Server.ShutdownTimeout).Msg("shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer shutdownCancel()

	// Stop the sweeper first so no new sweep starts during drain
	if sweeper != nil {
		if err := sweeper.Stop(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("lifecycle sweeper did not stop in time")
		}
	}

	// Shutdown server (waits for in-flight requests)
	log.Info().Msg("waiting for in-flight requests to complete...")
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	// Close database pool AFTER server shutdown (even if shutdown timed out)
	log.Info().Msg("closing database connections...")
	pool.Close()
	log.Info().Msg("database connections closed")
	log.Info().Msg("server stopped")
}

// initLogger configures zerolog based on the application configuration.
func initLogger(cfg *config.Config) {
	// Set log level
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Log.Pretty {
		// Human-readable output for development
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			With().Timestamp().Logger()
	} else {
		// JSON output for production
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}
