// Package types defines the cache entry structures for display content.
package types

import (
	"sync"
	"time"

	"github.com/brightframe/rotator-go/internal/domain/entities/display"
)

// CachedGroup wraps a content group with its expiry deadline.
type CachedGroup struct {
	Group     *display.ContentGroup
	ExpiresAt time.Time
}

// CachedSlot wraps a slot with its expiry deadline.
type CachedSlot struct {
	Slot      *display.Slot
	ExpiresAt time.Time
}

// CachedResolution wraps a resolution outcome with the group IDs the
// fallback walk visited, so writes to any of those groups can invalidate
// the entry, plus its expiry deadline. Empty resolutions are cached too;
// "nothing to show" is a legitimate, cacheable outcome.
type CachedResolution struct {
	Resolution *display.Resolution
	GroupIDs   []string
	ExpiresAt  time.Time
}

// DisplayCacheState holds all cached display data behind one lock.
type DisplayCacheState struct {
	Mu          sync.RWMutex
	Groups      map[string]*CachedGroup
	Slots       map[string]*CachedSlot
	Resolutions map[string]*CachedResolution
	LastUpdated time.Time
}
