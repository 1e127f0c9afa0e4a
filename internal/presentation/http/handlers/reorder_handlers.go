package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/brightframe/rotator-go/internal/application/services"
	"github.com/brightframe/rotator-go/internal/domain/entities/display"
	"github.com/brightframe/rotator-go/internal/domain/ordering"
	"github.com/brightframe/rotator-go/internal/infrastructure/observability/logging"
	"github.com/brightframe/rotator-go/internal/infrastructure/observability/performance"
	"github.com/gin-gonic/gin"
)

// ReorderRequest carries a batch of item order rewrites for one group.
type ReorderRequest struct {
	Items []ordering.Pair `json:"items" binding:"required"`
}

// ReorderHandlers contains the batch reorder HTTP handler
type ReorderHandlers struct {
	reorderService *services.ReorderService
	logger         *logging.ChanneledLogger
	perfTracker    *performance.Tracker
}

// NewReorderHandlers creates reorder handlers with injected dependencies
func NewReorderHandlers(reorderService *services.ReorderService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *ReorderHandlers {
	return &ReorderHandlers{
		reorderService: reorderService,
		logger:         logger,
		perfTracker:    perfTracker,
	}
}

// Reorder applies an all-or-nothing order batch to one group. A rejected
// batch returns 400 with the violation and leaves every order untouched.
func (h *ReorderHandlers) Reorder(c *gin.Context) {
	start := time.Now()
	scopeID := c.Param("scopeId")
	h.logger.Content().Debug("Received reorder request", "method", c.Request.Method, "path", c.Request.URL.Path, "scopeId", scopeID)

	marker := h.perfTracker.StartOperation("reorder_request")
	defer marker.Complete()

	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if len(req.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "items array cannot be empty"})
		return
	}

	updated, err := h.reorderService.Reorder(c.Request.Context(), scopeID, req.Items)
	if err != nil {
		marker.SetSuccess(false)
		switch {
		case errors.Is(err, ordering.ErrScopeMismatch), errors.Is(err, ordering.ErrDuplicateItem):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, display.ErrGroupNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	h.logger.Content().Info("Reorder request completed", "scopeId", scopeID, "updated", updated, "duration", time.Since(start))
	marker.SetSuccess(true)
	h.logger.Perf().Info("Performance for Reorder request", "duration", marker.Duration, "scopeId", scopeID, "success", true)
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}
