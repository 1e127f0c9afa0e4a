package handlers

import (
	"net/http"

	"github.com/brightframe/rotator-go/internal/infrastructure/caching/manager"
	"github.com/brightframe/rotator-go/internal/infrastructure/observability/performance"
	"github.com/brightframe/rotator-go/internal/infrastructure/persistence/database"
	"github.com/gin-gonic/gin"
)

// HealthHandlers reports store, cache, and tracker health
type HealthHandlers struct {
	db          *database.DB
	cache       *manager.Manager
	perfTracker *performance.Tracker
}

// NewHealthHandlers creates health handlers with injected dependencies
func NewHealthHandlers(db *database.DB, cache *manager.Manager, perfTracker *performance.Tracker) *HealthHandlers {
	return &HealthHandlers{
		db:          db,
		cache:       cache,
		perfTracker: perfTracker,
	}
}

// Health pings the store and reports cache occupancy. A failing store
// ping returns 503 so load balancers rotate the instance out.
func (h *HealthHandlers) Health(c *gin.Context) {
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "degraded",
			"store":  err.Error(),
			"cache":  h.cache.Health(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"connection": h.db.GetConnectionInfo(),
		"cache":      h.cache.Health(),
		"operations": h.perfTracker.GetOverallStats(),
	})
}
