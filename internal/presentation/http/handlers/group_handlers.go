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

// UpsertGroupRequest defines the structure for creating or updating a group.
type UpsertGroupRequest struct {
	Name           string                 `json:"name" binding:"required"`
	IsActive       *bool                  `json:"isActive"`
	Deletable      *bool                  `json:"deletable"`
	UsageType      string                 `json:"usageType"`
	RotationPolicy display.RotationPolicy `json:"rotationPolicy"`
}

// GroupHandlers contains all content-group HTTP handlers
type GroupHandlers struct {
	groupService *services.GroupService
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker
}

// NewGroupHandlers creates group handlers with injected dependencies
func NewGroupHandlers(groupService *services.GroupService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *GroupHandlers {
	return &GroupHandlers{
		groupService: groupService,
		logger:       logger,
		perfTracker:  perfTracker,
	}
}

// GetAllGroups returns every group with its items
func (h *GroupHandlers) GetAllGroups(c *gin.Context) {
	start := time.Now()
	marker := h.perfTracker.StartOperation("get_all_groups_request")
	defer marker.Complete()

	groups, err := h.groupService.GetAll(c.Request.Context())
	if err != nil {
		marker.SetSuccess(false)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.logger.Content().Info("Get all groups request completed", "count", len(groups), "duration", time.Since(start))
	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{
		"groups": groups,
		"count":  len(groups),
	})
}

// GetGroupByID returns a specific group by ID
func (h *GroupHandlers) GetGroupByID(c *gin.Context) {
	id := c.Param("scopeId")
	marker := h.perfTracker.StartOperation("get_group_by_id_request")
	defer marker.Complete()

	group, err := h.groupService.GetByID(c.Request.Context(), id)
	if err != nil {
		marker.SetSuccess(false)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if group == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "group not found", "groupId": id})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, group)
}

// CreateGroup creates a new content group
func (h *GroupHandlers) CreateGroup(c *gin.Context) {
	start := time.Now()
	marker := h.perfTracker.StartOperation("create_group_request")
	defer marker.Complete()

	var req UpsertGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	group := groupFromRequest(&req)
	if err := h.groupService.Create(c.Request.Context(), group); err != nil {
		marker.SetSuccess(false)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.logger.Content().Info("Group created", "groupId", group.ID, "duration", time.Since(start))
	marker.SetSuccess(true)
	c.JSON(http.StatusCreated, group)
}

// UpdateGroup modifies an existing group
func (h *GroupHandlers) UpdateGroup(c *gin.Context) {
	start := time.Now()
	id := c.Param("scopeId")
	marker := h.perfTracker.StartOperation("update_group_request")
	defer marker.Complete()

	var req UpsertGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	group := groupFromRequest(&req)
	group.ID = id

	if err := h.groupService.Update(c.Request.Context(), group); err != nil {
		marker.SetSuccess(false)
		if errors.Is(err, display.ErrGroupNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.logger.Content().Info("Group updated", "groupId", id, "duration", time.Since(start))
	marker.SetSuccess(true)
	c.JSON(http.StatusOK, group)
}

// DeleteGroup removes a group and its items. Protected groups return 403
// no matter who asks.
func (h *GroupHandlers) DeleteGroup(c *gin.Context) {
	id := c.Param("scopeId")
	marker := h.perfTracker.StartOperation("delete_group_request")
	defer marker.Complete()

	if err := h.groupService.Delete(c.Request.Context(), id); err != nil {
		marker.SetSuccess(false)
		switch {
		case errors.Is(err, display.ErrGroupProtected):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, display.ErrGroupNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	h.logger.Content().Info("Group deleted", "groupId", id)
	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func groupFromRequest(req *UpsertGroupRequest) *display.ContentGroup {
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	deletable := true
	if req.Deletable != nil {
		deletable = *req.Deletable
	}
	return &display.ContentGroup{
		Name:           req.Name,
		IsActive:       isActive,
		Deletable:      deletable,
		UsageType:      req.UsageType,
		RotationPolicy: req.RotationPolicy,
	}
}
