// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"github.com/brightframe/rotator-go/internal/application/container"
	"github.com/brightframe/rotator-go/internal/presentation/http/handlers"
	"github.com/brightframe/rotator-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(container *container.Container) *gin.Engine {
	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	// Initialize handlers
	slotHandlers := handlers.NewSlotHandlers(container.SlotService, container.ResolverService, container.Logger, container.PerfTracker)
	groupHandlers := handlers.NewGroupHandlers(container.GroupService, container.Logger, container.PerfTracker)
	itemHandlers := handlers.NewItemHandlers(container.ItemService, container.Logger, container.PerfTracker)
	reorderHandlers := handlers.NewReorderHandlers(container.ReorderService, container.Logger, container.PerfTracker)
	statsHandlers := handlers.NewStatsHandlers(container.StatsService, container.Logger, container.PerfTracker)
	healthHandlers := handlers.NewHealthHandlers(container.DB, container.CacheManager, container.PerfTracker)

	api := r.Group("/api/v1")
	{
		// Public display surface
		api.GET("/slots/:token", slotHandlers.ResolveSlot)
		api.POST("/statistics", statsHandlers.RecordEvent)
		api.POST("/groups/:scopeId/reorder", reorderHandlers.Reorder)

		// Group administration
		api.GET("/groups", groupHandlers.GetAllGroups)
		api.POST("/groups", groupHandlers.CreateGroup)
		api.GET("/groups/:scopeId", groupHandlers.GetGroupByID)
		api.PUT("/groups/:scopeId", groupHandlers.UpdateGroup)
		api.DELETE("/groups/:scopeId", groupHandlers.DeleteGroup)

		// Item administration
		api.POST("/groups/:scopeId/items", itemHandlers.CreateItem)
		api.PUT("/items/:id", itemHandlers.UpdateItem)
		api.DELETE("/items/:id", itemHandlers.DeleteItem)

		// Slot administration
		api.GET("/slots", slotHandlers.GetAllSlots)
		api.POST("/slots", slotHandlers.CreateSlot)
		api.PUT("/slots/:token", slotHandlers.UpdateSlot)
		api.DELETE("/slots/:token", slotHandlers.DeleteSlot)

		api.GET("/health", healthHandlers.Health)
	}

	return r
}
