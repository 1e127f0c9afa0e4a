// Package container provides dependency injection for all singleton services
package container

import (
	"github.com/brightframe/rotator-go/internal/application/services"
	"github.com/brightframe/rotator-go/internal/infrastructure/caching/manager"
	"github.com/brightframe/rotator-go/internal/infrastructure/email"
	"github.com/brightframe/rotator-go/internal/infrastructure/observability/logging"
	"github.com/brightframe/rotator-go/internal/infrastructure/observability/performance"
	"github.com/brightframe/rotator-go/internal/infrastructure/persistence/database"
	persistence "github.com/brightframe/rotator-go/internal/infrastructure/persistence/display"
)

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	// Application services (stateless singletons)
	GroupService    *services.GroupService
	ItemService     *services.ItemService
	SlotService     *services.SlotService
	ResolverService *services.ResolverService
	ReorderService  *services.ReorderService
	StatsService    *services.StatsService

	// Infrastructure
	DB           *database.DB
	CacheManager *manager.Manager
	Logger       *logging.ChanneledLogger
	PerfTracker  *performance.Tracker
	AlertService email.AlertService
}

// NewContainer creates and wires all singleton services
func NewContainer(
	db *database.DB,
	cacheManager *manager.Manager,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *Container {
	alerts := email.NewService(logger)

	groupRepo := persistence.NewGroupRepository(db.DB, cacheManager, logger)
	itemRepo := persistence.NewItemRepository(db.DB, cacheManager, logger)
	slotRepo := persistence.NewSlotRepository(db.DB, cacheManager, logger)
	statsRepo := persistence.NewStatsRepository(db.DB, logger)
	reorderRepo := persistence.NewReorderRepository(db.DB, cacheManager, logger)

	return &Container{
		GroupService:    services.NewGroupService(groupRepo),
		ItemService:     services.NewItemService(itemRepo, groupRepo),
		SlotService:     services.NewSlotService(slotRepo, groupRepo),
		ResolverService: services.NewResolverService(slotRepo, groupRepo, cacheManager, logger, alerts),
		ReorderService:  services.NewReorderService(reorderRepo, groupRepo, logger),
		StatsService:    services.NewStatsService(statsRepo, logger),

		DB:           db,
		CacheManager: cacheManager,
		Logger:       logger,
		PerfTracker:  perfTracker,
		AlertService: alerts,
	}
}
