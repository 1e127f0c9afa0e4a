package handlers

import (
	"net/http"

	"github.com/brightframe/rotator-go/internal/application/services"
	"github.com/brightframe/rotator-go/internal/infrastructure/observability/logging"
	"github.com/brightframe/rotator-go/internal/infrastructure/observability/performance"
	"github.com/gin-gonic/gin"
)

// StatsEventRequest is a single fire-and-forget telemetry event.
type StatsEventRequest struct {
	ItemID string `json:"itemId" binding:"required"`
	Type   string `json:"type" binding:"required,oneof=view click"`
}

// StatsHandlers contains the telemetry ingestion HTTP handler
type StatsHandlers struct {
	statsService *services.StatsService
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker
}

// NewStatsHandlers creates stats handlers with injected dependencies
func NewStatsHandlers(statsService *services.StatsService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *StatsHandlers {
	return &StatsHandlers{
		statsService: statsService,
		logger:       logger,
		perfTracker:  perfTracker,
	}
}

// RecordEvent accepts a view or click event. Accepted events return 202
// immediately; whether the increment lands is never this request's
// problem. Only a malformed body is rejected.
func (h *StatsHandlers) RecordEvent(c *gin.Context) {
	marker := h.perfTracker.StartOperation("record_stats_event")
	defer marker.Complete()

	var req StatsEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	switch req.Type {
	case "click":
		h.statsService.RecordClick(req.ItemID)
	default:
		h.statsService.RecordView(req.ItemID)
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusAccepted, gin.H{"accepted": true})
}
