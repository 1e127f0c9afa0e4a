// Package interfaces defines cache operation contracts for display content.
package interfaces

import (
	"github.com/brightframe/rotator-go/internal/domain/entities/display"
)

// DisplayCache defines operations for caching groups, slots, and
// resolution outcomes. The cache is an optimization layer only: no
// correctness property may depend on it being present, warm, or
// consistent beyond its TTL-and-invalidate contract.
type DisplayCache interface {
	GetGroup(id string) (*display.ContentGroup, bool)
	SetGroup(group *display.ContentGroup)
	GetSlot(token string) (*display.Slot, bool)
	SetSlot(slot *display.Slot)
	GetResolution(token string) (*display.Resolution, bool)
	// SetResolution records a resolution outcome keyed by position token.
	// groupIDs lists every group the fallback walk touched; a later write
	// to any of them drops the entry.
	SetResolution(token string, resolution *display.Resolution, groupIDs []string)
	InvalidateGroup(id string)
	InvalidateSlot(token string)
	InvalidateAll()
	PurgeExpired() int
	GetStats() CacheStats
}

// CacheStats reports cache effectiveness and occupancy.
type CacheStats struct {
	Hits        int64 `json:"hits"`
	Misses      int64 `json:"misses"`
	Groups      int   `json:"groups"`
	Slots       int   `json:"slots"`
	Resolutions int   `json:"resolutions"`
}
