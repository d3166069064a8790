package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/info-beamer/package-scheduled-player/internal/api"
	"github.com/info-beamer/package-scheduled-player/internal/assets"
	"github.com/info-beamer/package-scheduled-player/internal/config"
	"github.com/info-beamer/package-scheduled-player/internal/logger"
	"github.com/info-beamer/package-scheduled-player/internal/publish"
	"github.com/info-beamer/package-scheduled-player/internal/schedule"
	"github.com/info-beamer/package-scheduled-player/internal/storage"
	"github.com/info-beamer/package-scheduled-player/internal/timeline"
)

func main() {
	// Load and validate configuration
	cfg := config.Load()

	// Initialize logger
	output := "stdout"
	if cfg.LogFile != "" {
		output = cfg.LogFile
	}
	if err := logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Output: output,
		Pretty: cfg.Env == "development",
	}); err != nil {
		panic(err)
	}

	log := logger.Get()
	log.Info().Msg("Starting application...")

	store, err := storage.NewStorage(cfg.TimelinePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize storage")
	}

	cache, err := assets.New(cfg.CacheDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize asset cache")
	}

	blocked, err := timeline.LoadBlocklist(cfg.BlocklistPath)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.BlocklistPath).Msg("No block-list loaded")
	}
	classifier := timeline.NewClassifier(blocked)

	var publisher *publish.Publisher
	if cfg.S3Endpoint != "" {
		publisher, err = publish.NewPublisher(context.Background(),
			cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3Key)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize digest publisher")
		}
	}

	pipeline := timeline.NewPipeline(cfg.TimelineURL, classifier, cache, store, publisher)
	importer := schedule.NewImporter()

	// Create Fiber app with custom config
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
		IdleTimeout:  120 * time.Second,
		ErrorHandler: api.ErrorHandler,
	})

	handlers := api.NewHandlers(cfg, store, pipeline, importer)
	api.SetupRoutes(app, handlers, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.TimelineURL != "" {
		go refreshLoop(ctx, cfg, pipeline)
	} else {
		log.Warn().Msg("No timeline feed configured, periodic import disabled")
	}
	go maintenanceLoop(ctx, cfg, cache, pipeline)

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

// refreshLoop runs the timeline import on startup and on every refresh
// interval until the context is cancelled.
func refreshLoop(ctx context.Context, cfg *config.Config, pipeline *timeline.Pipeline) {
	log := logger.Get()
	ticker := time.NewTicker(cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		opts := timeline.RunOptions{
			NotBefore:     time.Now().UTC().AddDate(0, 0, -cfg.NotBeforeDays),
			Count:         cfg.MaxPosts,
			FilterGarbage: cfg.FilterGarbage,
		}
		if _, err := pipeline.Run(ctx, opts); err != nil {
			log.Error().Err(err).Msg("Timeline import failed")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// maintenanceLoop reloads the block-list and sweeps expired cache files.
func maintenanceLoop(ctx context.Context, cfg *config.Config, cache *assets.Cache, pipeline *timeline.Pipeline) {
	log := logger.Get()
	ticker := time.NewTicker(cfg.MaintenanceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		blocked, err := timeline.LoadBlocklist(cfg.BlocklistPath)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.BlocklistPath).Msg("Keeping previous block-list")
		} else {
			pipeline.SetClassifier(timeline.NewClassifier(blocked))
		}

		cache.Sweep(cfg.SweepMaxAge)
	}
}
