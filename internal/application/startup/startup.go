// Package startup prepares the application server
package startup

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brightframe/rotator-go/internal/application/container"
	"github.com/brightframe/rotator-go/internal/infrastructure/caching/cleanup"
	"github.com/brightframe/rotator-go/internal/infrastructure/caching/manager"
	"github.com/brightframe/rotator-go/internal/infrastructure/observability/logging"
	"github.com/brightframe/rotator-go/internal/infrastructure/observability/performance"
	"github.com/brightframe/rotator-go/internal/infrastructure/persistence/database"
	"github.com/brightframe/rotator-go/internal/presentation/http/server"
	"github.com/brightframe/rotator-go/pkg/config"
	"github.com/gin-gonic/gin"
)

// Initialize performs the complete startup sequence: config is loaded by
// package init, then logger, database, schema, cache, container, workers,
// and the HTTP server, in that order. It blocks until a shutdown signal
// arrives and then tears everything down in reverse.
func Initialize() error {
	setupLogging()

	start := time.Now().UTC()

	ctx, cancelBackgroundTasks := context.WithCancel(context.Background())
	defer cancelBackgroundTasks()

	log.Println("Initializing rotator engine...")

	// Step 1: Channeled logging
	logger, err := logging.NewChanneledLogger(logging.DefaultLoggerConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logger.Close()
	logger.Startup().Info("Channeled logging initialized")

	// Step 2: Database connection
	logger.Startup().Info("Connecting to database",
		"driver", config.DBDriver, "path", config.DBPath)
	db, err := database.NewConnectionWithLogger(config.DBDriver, config.DBPath, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Step 3: Schema bootstrap and seed
	logger.Startup().Info("Ensuring database schema")
	tableCreator := database.NewTableCreator()
	if err := tableCreator.CreateSchema(db.DB); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if config.SeedHeroGroup {
		if err := tableCreator.SeedInitialContent(db.DB); err != nil {
			return fmt.Errorf("failed to seed initial content: %w", err)
		}
		logger.Startup().Info("Initial content verified")
	}

	// Step 4: Cache system
	logger.Startup().Info("Initializing cache system")
	cacheManager := manager.NewManager(logger)

	// Step 5: Performance tracking
	perfTracker := performance.NewTracker(performance.DefaultTrackerConfig())

	// Step 6: Dependency injection container
	logger.Startup().Info("Initializing dependency injection container")
	appContainer := container.NewContainer(db, cacheManager, logger, perfTracker)
	logger.Startup().Info("Container created with singleton services")

	// Step 7: Background workers
	logger.Startup().Info("Starting background workers")
	cleanupWorker := cleanup.NewWorker(cacheManager, logger, &cleanup.Config{
		CleanupInterval:  config.CleanupInterval,
		VerboseReporting: config.CleanupVerbose,
	})
	go cleanupWorker.Start(ctx)
	go perfTracker.Run(ctx, config.CleanupInterval)
	appContainer.StatsService.Start(ctx)

	// Step 8: HTTP server
	port := config.Port
	httpServer := server.New(port, appContainer)

	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.System().Info("Starting HTTP server", "address", ":"+port)
		if err := httpServer.Start(); err != nil {
			logger.System().Error("HTTP server failed", "error", err.Error())
		}
	}()

	logger.Startup().Info("Application startup complete",
		"totalDuration", time.Since(start),
		"port", port)

	// Wait for shutdown signal
	<-gracefulShutdown
	logger.Shutdown().Info("Shutdown signal received, starting graceful shutdown...")

	shutdownStart := time.Now()

	// Stop workers first; events still buffered in the stats recorder are
	// dropped, never flushed against a closing database.
	cancelBackgroundTasks()
	appContainer.StatsService.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Shutdown().Info("Stopping HTTP server...")
	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Shutdown().Error("Error during server shutdown", "error", err.Error())
	} else {
		logger.Shutdown().Info("HTTP server stopped successfully")
	}

	logger.Shutdown().Info("Application shutdown complete",
		"totalUptime", time.Since(start),
		"shutdownDuration", time.Since(shutdownStart))

	return nil
}

// setupLogging configures application logging
func setupLogging() {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
