// Package stores provides concrete cache store implementations
package stores

import (
	"sync/atomic"
	"time"

	"github.com/brightframe/rotator-go/internal/domain/entities/display"
	"github.com/brightframe/rotator-go/internal/infrastructure/caching/interfaces"
	"github.com/brightframe/rotator-go/internal/infrastructure/caching/types"
)

// DisplayStore implements display caching with per-entry TTLs.
type DisplayStore struct {
	state         *types.DisplayCacheState
	groupTTL      time.Duration
	slotTTL       time.Duration
	resolutionTTL time.Duration
	hits          atomic.Int64
	misses        atomic.Int64
}

// NewDisplayStore creates a new display cache store.
func NewDisplayStore(groupTTL, slotTTL, resolutionTTL time.Duration) *DisplayStore {
	return &DisplayStore{
		state: &types.DisplayCacheState{
			Groups:      make(map[string]*types.CachedGroup),
			Slots:       make(map[string]*types.CachedSlot),
			Resolutions: make(map[string]*types.CachedResolution),
			LastUpdated: time.Now().UTC(),
		},
		groupTTL:      groupTTL,
		slotTTL:       slotTTL,
		resolutionTTL: resolutionTTL,
	}
}

// GetGroup retrieves a cached group, honoring its TTL.
func (ds *DisplayStore) GetGroup(id string) (*display.ContentGroup, bool) {
	ds.state.Mu.RLock()
	entry, exists := ds.state.Groups[id]
	ds.state.Mu.RUnlock()

	if !exists || time.Now().After(entry.ExpiresAt) {
		ds.misses.Add(1)
		return nil, false
	}
	ds.hits.Add(1)
	return entry.Group, true
}

// SetGroup caches a group and drops any resolutions that depend on it.
func (ds *DisplayStore) SetGroup(group *display.ContentGroup) {
	ds.state.Mu.Lock()
	defer ds.state.Mu.Unlock()

	ds.state.Groups[group.ID] = &types.CachedGroup{
		Group:     group,
		ExpiresAt: time.Now().Add(ds.groupTTL),
	}
	ds.dropResolutionsForGroupLocked(group.ID)
	ds.state.LastUpdated = time.Now().UTC()
}

// GetSlot retrieves a cached slot, honoring its TTL.
func (ds *DisplayStore) GetSlot(token string) (*display.Slot, bool) {
	ds.state.Mu.RLock()
	entry, exists := ds.state.Slots[token]
	ds.state.Mu.RUnlock()

	if !exists || time.Now().After(entry.ExpiresAt) {
		ds.misses.Add(1)
		return nil, false
	}
	ds.hits.Add(1)
	return entry.Slot, true
}

// SetSlot caches a slot and drops its resolution entry.
func (ds *DisplayStore) SetSlot(slot *display.Slot) {
	ds.state.Mu.Lock()
	defer ds.state.Mu.Unlock()

	ds.state.Slots[slot.PositionToken] = &types.CachedSlot{
		Slot:      slot,
		ExpiresAt: time.Now().Add(ds.slotTTL),
	}
	delete(ds.state.Resolutions, slot.PositionToken)
	ds.state.LastUpdated = time.Now().UTC()
}

// GetResolution retrieves a cached resolution outcome by position token.
func (ds *DisplayStore) GetResolution(token string) (*display.Resolution, bool) {
	ds.state.Mu.RLock()
	entry, exists := ds.state.Resolutions[token]
	ds.state.Mu.RUnlock()

	if !exists || time.Now().After(entry.ExpiresAt) {
		ds.misses.Add(1)
		return nil, false
	}
	ds.hits.Add(1)
	return entry.Resolution, true
}

// SetResolution caches a resolution outcome with its group dependencies.
func (ds *DisplayStore) SetResolution(token string, resolution *display.Resolution, groupIDs []string) {
	ds.state.Mu.Lock()
	defer ds.state.Mu.Unlock()

	ds.state.Resolutions[token] = &types.CachedResolution{
		Resolution: resolution,
		GroupIDs:   groupIDs,
		ExpiresAt:  time.Now().Add(ds.resolutionTTL),
	}
	ds.state.LastUpdated = time.Now().UTC()
}

// InvalidateGroup drops a group and every resolution that touched it.
func (ds *DisplayStore) InvalidateGroup(id string) {
	ds.state.Mu.Lock()
	defer ds.state.Mu.Unlock()

	delete(ds.state.Groups, id)
	ds.dropResolutionsForGroupLocked(id)
	ds.state.LastUpdated = time.Now().UTC()
}

// InvalidateSlot drops a slot and its resolution entry.
func (ds *DisplayStore) InvalidateSlot(token string) {
	ds.state.Mu.Lock()
	defer ds.state.Mu.Unlock()

	delete(ds.state.Slots, token)
	delete(ds.state.Resolutions, token)
	ds.state.LastUpdated = time.Now().UTC()
}

// InvalidateAll clears every cached entry.
func (ds *DisplayStore) InvalidateAll() {
	ds.state.Mu.Lock()
	defer ds.state.Mu.Unlock()

	ds.state.Groups = make(map[string]*types.CachedGroup)
	ds.state.Slots = make(map[string]*types.CachedSlot)
	ds.state.Resolutions = make(map[string]*types.CachedResolution)
	ds.state.LastUpdated = time.Now().UTC()
}

// PurgeExpired removes entries past their deadline and reports how many.
func (ds *DisplayStore) PurgeExpired() int {
	ds.state.Mu.Lock()
	defer ds.state.Mu.Unlock()

	now := time.Now()
	purged := 0

	for id, entry := range ds.state.Groups {
		if now.After(entry.ExpiresAt) {
			delete(ds.state.Groups, id)
			purged++
		}
	}
	for token, entry := range ds.state.Slots {
		if now.After(entry.ExpiresAt) {
			delete(ds.state.Slots, token)
			purged++
		}
	}
	for token, entry := range ds.state.Resolutions {
		if now.After(entry.ExpiresAt) {
			delete(ds.state.Resolutions, token)
			purged++
		}
	}

	return purged
}

// GetStats returns cache effectiveness and occupancy counters.
func (ds *DisplayStore) GetStats() interfaces.CacheStats {
	ds.state.Mu.RLock()
	defer ds.state.Mu.RUnlock()

	return interfaces.CacheStats{
		Hits:        ds.hits.Load(),
		Misses:      ds.misses.Load(),
		Groups:      len(ds.state.Groups),
		Slots:       len(ds.state.Slots),
		Resolutions: len(ds.state.Resolutions),
	}
}

// dropResolutionsForGroupLocked removes every resolution whose fallback
// walk touched the group. Caller must hold the write lock.
func (ds *DisplayStore) dropResolutionsForGroupLocked(groupID string) {
	for token, entry := range ds.state.Resolutions {
		for _, id := range entry.GroupIDs {
			if id == groupID {
				delete(ds.state.Resolutions, token)
				break
			}
		}
	}
}
