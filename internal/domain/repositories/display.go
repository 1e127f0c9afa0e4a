// Package repositories defines the repository interfaces for display
// entities. These abstract the persistence details so the resolution and
// reorder logic stays decoupled from the database.
package repositories

import (
	"context"

	"github.com/brightframe/rotator-go/internal/domain/entities/display"
	"github.com/brightframe/rotator-go/internal/domain/ordering"
)

type GroupRepository interface {
	// FindByID returns the group with its items loaded, or nil when the
	// group does not exist.
	FindByID(ctx context.Context, id string) (*display.ContentGroup, error)
	FindAll(ctx context.Context) ([]*display.ContentGroup, error)
	Store(ctx context.Context, group *display.ContentGroup) error
	Update(ctx context.Context, group *display.ContentGroup) error
	Delete(ctx context.Context, id string) error
}

type ItemRepository interface {
	FindByID(ctx context.Context, id string) (*display.ContentItem, error)
	FindByGroup(ctx context.Context, groupID string) ([]*display.ContentItem, error)
	Store(ctx context.Context, item *display.ContentItem) error
	Update(ctx context.Context, item *display.ContentItem) error
	// Deactivate soft-deletes an item; Purge removes the row entirely.
	Deactivate(ctx context.Context, id string) error
	Purge(ctx context.Context, id string) error
}

type SlotRepository interface {
	FindByToken(ctx context.Context, token string) (*display.Slot, error)
	FindAll(ctx context.Context) ([]*display.Slot, error)
	// FindByPrimaryGroup returns the slot whose primary group is groupID,
	// or nil when no slot points at it. Used to walk fallback chains.
	FindByPrimaryGroup(ctx context.Context, groupID string) (*display.Slot, error)
	Store(ctx context.Context, slot *display.Slot) error
	Update(ctx context.Context, slot *display.Slot) error
	Delete(ctx context.Context, token string) error
}

// StatsRepository applies counter increments in place. Implementations
// must use an atomic increment (count = count + 1), never
// read-modify-write. The bool result reports whether the item existed.
type StatsRepository interface {
	IncrementView(ctx context.Context, itemID string) (bool, error)
	IncrementClick(ctx context.Context, itemID string) (bool, error)
}

// ReorderRepository applies validated order batches atomically.
type ReorderRepository interface {
	// OwnersByIDs maps each located item ID to its owning group ID.
	// Items that do not exist are simply absent from the result.
	OwnersByIDs(ctx context.Context, itemIDs []string) (map[string]string, error)
	// ApplyOrders writes every pair within one transaction. Either all
	// order values update or none do.
	ApplyOrders(ctx context.Context, scopeID string, pairs []ordering.Pair) error
}
