// Package manager provides the cache manager facade over the display store.
package manager

import (
	"time"

	"github.com/brightframe/rotator-go/internal/domain/entities/display"
	"github.com/brightframe/rotator-go/internal/infrastructure/caching/interfaces"
	"github.com/brightframe/rotator-go/internal/infrastructure/caching/stores"
	"github.com/brightframe/rotator-go/internal/infrastructure/observability/logging"
	"github.com/brightframe/rotator-go/pkg/config"
)

// Manager coordinates cache access for the application. It satisfies
// interfaces.DisplayCache and adds logging and health reporting.
type Manager struct {
	displayStore *stores.DisplayStore
	logger       *logging.ChanneledLogger
	started      time.Time
}

// NewManager creates a cache manager with TTLs from configuration.
func NewManager(logger *logging.ChanneledLogger) *Manager {
	return &Manager{
		displayStore: stores.NewDisplayStore(
			config.GroupCacheTTL,
			config.SlotCacheTTL,
			config.ResolutionCacheTTL,
		),
		logger:  logger,
		started: time.Now().UTC(),
	}
}

// NewManagerWithTTLs creates a cache manager with explicit TTLs; used by tests.
func NewManagerWithTTLs(logger *logging.ChanneledLogger, groupTTL, slotTTL, resolutionTTL time.Duration) *Manager {
	return &Manager{
		displayStore: stores.NewDisplayStore(groupTTL, slotTTL, resolutionTTL),
		logger:       logger,
		started:      time.Now().UTC(),
	}
}

func (m *Manager) GetGroup(id string) (*display.ContentGroup, bool) {
	start := time.Now()
	group, found := m.displayStore.GetGroup(id)
	m.logger.LogCacheOperation("get_group", id, found, time.Since(start))
	return group, found
}

func (m *Manager) SetGroup(group *display.ContentGroup) {
	m.displayStore.SetGroup(group)
}

func (m *Manager) GetSlot(token string) (*display.Slot, bool) {
	start := time.Now()
	slot, found := m.displayStore.GetSlot(token)
	m.logger.LogCacheOperation("get_slot", token, found, time.Since(start))
	return slot, found
}

func (m *Manager) SetSlot(slot *display.Slot) {
	m.displayStore.SetSlot(slot)
}

func (m *Manager) GetResolution(token string) (*display.Resolution, bool) {
	start := time.Now()
	resolution, found := m.displayStore.GetResolution(token)
	m.logger.LogCacheOperation("get_resolution", token, found, time.Since(start))
	return resolution, found
}

func (m *Manager) SetResolution(token string, resolution *display.Resolution, groupIDs []string) {
	m.displayStore.SetResolution(token, resolution, groupIDs)
}

func (m *Manager) InvalidateGroup(id string) {
	m.displayStore.InvalidateGroup(id)
	m.logger.Cache().Debug("Invalidated group", "groupId", id)
}

func (m *Manager) InvalidateSlot(token string) {
	m.displayStore.InvalidateSlot(token)
	m.logger.Cache().Debug("Invalidated slot", "token", token)
}

func (m *Manager) InvalidateAll() {
	m.displayStore.InvalidateAll()
	m.logger.Cache().Info("Invalidated entire cache")
}

func (m *Manager) PurgeExpired() int {
	return m.displayStore.PurgeExpired()
}

func (m *Manager) GetStats() interfaces.CacheStats {
	return m.displayStore.GetStats()
}

// Health reports cache state for the health endpoint.
func (m *Manager) Health() map[string]any {
	stats := m.displayStore.GetStats()
	return map[string]any{
		"uptime":      time.Since(m.started).String(),
		"hits":        stats.Hits,
		"misses":      stats.Misses,
		"groups":      stats.Groups,
		"slots":       stats.Slots,
		"resolutions": stats.Resolutions,
	}
}
