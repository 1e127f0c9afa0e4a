// Package handlers provides HTTP handlers for slot resolution and
// administrative endpoints
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/brightframe/rotator-go/internal/application/services"
	"github.com/brightframe/rotator-go/internal/domain/entities/display"
	"github.com/brightframe/rotator-go/internal/infrastructure/observability/logging"
	"github.com/brightframe/rotator-go/internal/infrastructure/observability/performance"
	"github.com/gin-gonic/gin"
)

// UpsertSlotRequest defines the structure for creating or updating a slot.
type UpsertSlotRequest struct {
	PositionToken   string  `json:"positionToken"`
	PrimaryGroupID  string  `json:"primaryGroupId" binding:"required"`
	FallbackGroupID *string `json:"fallbackGroupId"`
	Priority        int     `json:"priority"`
}

// SlotHandlers contains the public resolution handler and the slot
// registry admin handlers
type SlotHandlers struct {
	slotService     *services.SlotService
	resolverService *services.ResolverService
	logger          *logging.ChanneledLogger
	perfTracker     *performance.Tracker
}

// NewSlotHandlers creates slot handlers with injected dependencies
func NewSlotHandlers(
	slotService *services.SlotService,
	resolverService *services.ResolverService,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *SlotHandlers {
	return &SlotHandlers{
		slotService:     slotService,
		resolverService: resolverService,
		logger:          logger,
		perfTracker:     perfTracker,
	}
}

// ResolveSlot answers the public "what renders here" query. An empty
// resolution returns 200 with a null group; only an unknown token is 404.
func (h *SlotHandlers) ResolveSlot(c *gin.Context) {
	start := time.Now()
	token := c.Param("token")
	h.logger.Resolver().Debug("Received resolve request", "method", c.Request.Method, "path", c.Request.URL.Path, "token", token)

	marker := h.perfTracker.StartOperation("resolve_slot_request")
	marker.AddMetadata("token", token)
	defer marker.Complete()

	resolution, err := h.resolverService.Resolve(c.Request.Context(), token)
	if err != nil {
		marker.SetError(err)
		if errors.Is(err, display.ErrSlotNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "slot not found", "token": token})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.logger.Resolver().Info("Resolve request completed", "token", token, "empty", resolution.Empty(), "duration", time.Since(start))
	marker.SetSuccess(true)
	h.logger.Perf().Info("Performance for ResolveSlot request", "duration", marker.Duration, "token", token, "success", true)
	c.JSON(http.StatusOK, resolution)
}

// GetAllSlots returns every registered slot
func (h *SlotHandlers) GetAllSlots(c *gin.Context) {
	marker := h.perfTracker.StartOperation("get_all_slots_request")
	defer marker.Complete()

	slots, err := h.slotService.GetAll(c.Request.Context())
	if err != nil {
		marker.SetSuccess(false)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{
		"slots": slots,
		"count": len(slots),
	})
}

// CreateSlot registers a new slot, cycle-validated
func (h *SlotHandlers) CreateSlot(c *gin.Context) {
	start := time.Now()
	marker := h.perfTracker.StartOperation("create_slot_request")
	defer marker.Complete()

	var req UpsertSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if req.PositionToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "positionToken is required"})
		return
	}

	slot := &display.Slot{
		PositionToken:   req.PositionToken,
		PrimaryGroupID:  req.PrimaryGroupID,
		FallbackGroupID: req.FallbackGroupID,
		Priority:        req.Priority,
	}

	if err := h.slotService.Create(c.Request.Context(), slot); err != nil {
		marker.SetSuccess(false)
		h.respondSlotWriteError(c, err)
		return
	}

	h.logger.Content().Info("Slot created", "token", slot.PositionToken, "duration", time.Since(start))
	marker.SetSuccess(true)
	c.JSON(http.StatusCreated, slot)
}

// UpdateSlot rewrites a slot's group links, cycle-validated
func (h *SlotHandlers) UpdateSlot(c *gin.Context) {
	start := time.Now()
	token := c.Param("token")
	marker := h.perfTracker.StartOperation("update_slot_request")
	defer marker.Complete()

	var req UpsertSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	slot := &display.Slot{
		PositionToken:   token,
		PrimaryGroupID:  req.PrimaryGroupID,
		FallbackGroupID: req.FallbackGroupID,
		Priority:        req.Priority,
	}

	if err := h.slotService.Update(c.Request.Context(), slot); err != nil {
		marker.SetSuccess(false)
		h.respondSlotWriteError(c, err)
		return
	}

	h.logger.Content().Info("Slot updated", "token", token, "duration", time.Since(start))
	marker.SetSuccess(true)
	c.JSON(http.StatusOK, slot)
}

// DeleteSlot removes a slot registration
func (h *SlotHandlers) DeleteSlot(c *gin.Context) {
	token := c.Param("token")
	marker := h.perfTracker.StartOperation("delete_slot_request")
	defer marker.Complete()

	if err := h.slotService.Delete(c.Request.Context(), token); err != nil {
		marker.SetSuccess(false)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.logger.Content().Info("Slot deleted", "token", token)
	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"deleted": token})
}

func (h *SlotHandlers) respondSlotWriteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, display.ErrCyclicFallback):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, display.ErrGroupNotFound), errors.Is(err, display.ErrSlotNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
