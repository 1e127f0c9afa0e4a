package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/brightframe/rotator-go/internal/application/services"
	"github.com/brightframe/rotator-go/internal/domain/entities/display"
	"github.com/brightframe/rotator-go/internal/infrastructure/observability/logging"
	"github.com/brightframe/rotator-go/internal/infrastructure/observability/performance"
	"github.com/gin-gonic/gin"
)

// CreateItemRequest defines the structure for adding an item to a group.
// Order is a pointer so an explicit zero is distinguishable from the
// field being omitted; omitted means append after the group's highest.
type CreateItemRequest struct {
	Payload  json.RawMessage `json:"payload" binding:"required"`
	IsActive *bool           `json:"isActive"`
	Order    *int            `json:"order"`
}

// UpdateItemRequest defines the structure for updating an existing item.
// Order is deliberately absent; ordering changes go through reorder. An
// omitted isActive leaves the stored visibility untouched.
type UpdateItemRequest struct {
	Payload  json.RawMessage `json:"payload" binding:"required"`
	IsActive *bool           `json:"isActive"`
}

// ItemHandlers contains all content-item HTTP handlers
type ItemHandlers struct {
	itemService *services.ItemService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewItemHandlers creates item handlers with injected dependencies
func NewItemHandlers(itemService *services.ItemService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *ItemHandlers {
	return &ItemHandlers{
		itemService: itemService,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// CreateItem adds an item to a group
func (h *ItemHandlers) CreateItem(c *gin.Context) {
	start := time.Now()
	scopeID := c.Param("scopeId")
	marker := h.perfTracker.StartOperation("create_item_request")
	defer marker.Complete()

	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	item := &display.ContentItem{
		IsActive: isActive,
		Payload:  req.Payload,
	}

	if err := h.itemService.Create(c.Request.Context(), scopeID, item, req.Order); err != nil {
		marker.SetSuccess(false)
		if errors.Is(err, display.ErrGroupNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.logger.Content().Info("Item created", "itemId", item.ID, "groupId", scopeID, "duration", time.Since(start))
	marker.SetSuccess(true)
	c.JSON(http.StatusCreated, item)
}

// UpdateItem modifies an item's payload and visibility
func (h *ItemHandlers) UpdateItem(c *gin.Context) {
	start := time.Now()
	id := c.Param("id")
	marker := h.perfTracker.StartOperation("update_item_request")
	defer marker.Complete()

	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	item, err := h.itemService.Update(c.Request.Context(), id, req.Payload, req.IsActive)
	if err != nil {
		marker.SetSuccess(false)
		if errors.Is(err, display.ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.logger.Content().Info("Item updated", "itemId", id, "duration", time.Since(start))
	marker.SetSuccess(true)
	c.JSON(http.StatusOK, item)
}

// DeleteItem soft-deactivates an item; ?purge=true removes the row.
func (h *ItemHandlers) DeleteItem(c *gin.Context) {
	id := c.Param("id")
	purge := c.Query("purge") == "true"
	marker := h.perfTracker.StartOperation("delete_item_request")
	defer marker.Complete()

	if err := h.itemService.Delete(c.Request.Context(), id, purge); err != nil {
		marker.SetSuccess(false)
		if errors.Is(err, display.ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.logger.Content().Info("Item deleted", "itemId", id, "purged", purge)
	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"deleted": id, "purged": purge})
}
