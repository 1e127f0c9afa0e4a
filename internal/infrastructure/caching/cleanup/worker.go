// Package cleanup provides the background cache eviction worker
package cleanup

import (
	"context"
	"time"

	"github.com/brightframe/rotator-go/internal/infrastructure/caching/interfaces"
	"github.com/brightframe/rotator-go/internal/infrastructure/observability/logging"
)

// Config controls the cleanup worker cadence and verbosity.
type Config struct {
	CleanupInterval  time.Duration
	VerboseReporting bool
}

// Worker handles background cache cleanup operations
type Worker struct {
	cache  interfaces.DisplayCache
	logger *logging.ChanneledLogger
	config *Config
}

// NewWorker creates a new cleanup worker with injected configuration
func NewWorker(cache interfaces.DisplayCache, logger *logging.ChanneledLogger, config *Config) *Worker {
	return &Worker{
		cache:  cache,
		logger: logger,
		config: config,
	}
}

// Start begins the cleanup worker routine, using the configured interval.
// It blocks until the context is cancelled; run it on its own goroutine.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.config.CleanupInterval)
	defer ticker.Stop()

	w.logger.Cache().Info("Cache cleanup worker started",
		"interval", w.config.CleanupInterval,
		"verbose", w.config.VerboseReporting,
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Cache().Info("Cache cleanup worker stopping")
			return
		case <-ticker.C:
			w.performCleanup()
		}
	}
}

func (w *Worker) performCleanup() {
	start := time.Now()
	purged := w.cache.PurgeExpired()

	if w.config.VerboseReporting || purged > 0 {
		stats := w.cache.GetStats()
		w.logger.Cache().Info("Periodic cache cleanup completed",
			"purged", purged,
			"groups", stats.Groups,
			"slots", stats.Slots,
			"resolutions", stats.Resolutions,
			"duration", time.Since(start),
		)
	}
}
