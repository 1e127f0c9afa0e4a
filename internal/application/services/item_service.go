package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/brightframe/rotator-go/internal/domain/entities/display"
	"github.com/brightframe/rotator-go/internal/domain/repositories"
	"github.com/brightframe/rotator-go/internal/infrastructure/security"
)

// ItemService orchestrates content item operations within their group scope.
type ItemService struct {
	itemRepo  repositories.ItemRepository
	groupRepo repositories.GroupRepository
}

// NewItemService creates a new item application service
func NewItemService(itemRepo repositories.ItemRepository, groupRepo repositories.GroupRepository) *ItemService {
	return &ItemService{
		itemRepo:  itemRepo,
		groupRepo: groupRepo,
	}
}

// GetByID returns an item or nil when it does not exist.
func (s *ItemService) GetByID(ctx context.Context, id string) (*display.ContentItem, error) {
	if id == "" {
		return nil, fmt.Errorf("item ID cannot be empty")
	}

	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get item %s: %w", id, err)
	}

	return item, nil
}

// Create adds an item to a group. A nil order appends the item after the
// current highest order value; an explicit order is stored as given,
// zero and negatives included. Gaps in order values are legal and
// preserved.
func (s *ItemService) Create(ctx context.Context, groupID string, item *display.ContentItem, order *int) error {
	if item == nil {
		return fmt.Errorf("item cannot be nil")
	}
	if groupID == "" {
		return fmt.Errorf("group ID cannot be empty")
	}

	group, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to load group %s: %w", groupID, err)
	}
	if group == nil {
		return fmt.Errorf("group %s: %w", groupID, display.ErrGroupNotFound)
	}

	if item.ID == "" {
		item.ID = security.GenerateULID()
	}
	item.GroupID = groupID

	if order != nil {
		item.Order = *order
	} else {
		maxOrder := 0
		for _, existing := range group.Items {
			if existing.Order > maxOrder {
				maxOrder = existing.Order
			}
		}
		item.Order = maxOrder + 1
	}

	if err := s.itemRepo.Store(ctx, item); err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}

	return nil
}

// Update modifies an item's payload and visibility and returns the stored
// result. A nil isActive keeps the current visibility, so payload edits
// never silently revive a deactivated item. Order changes are not
// accepted here; they go through the reorder transaction.
func (s *ItemService) Update(ctx context.Context, id string, payload json.RawMessage, isActive *bool) (*display.ContentItem, error) {
	if id == "" {
		return nil, fmt.Errorf("item ID cannot be empty")
	}

	existing, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load item %s: %w", id, err)
	}
	if existing == nil {
		return nil, fmt.Errorf("item %s: %w", id, display.ErrItemNotFound)
	}

	existing.Payload = payload
	if isActive != nil {
		existing.IsActive = *isActive
	}

	if err := s.itemRepo.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	return existing, nil
}

// Delete deactivates an item, or purges the row entirely when purge is
// set. Deactivated items keep their counters and order value.
func (s *ItemService) Delete(ctx context.Context, id string, purge bool) error {
	if id == "" {
		return fmt.Errorf("item ID cannot be empty")
	}

	if purge {
		if err := s.itemRepo.Purge(ctx, id); err != nil {
			return fmt.Errorf("failed to purge item: %w", err)
		}
		return nil
	}

	if err := s.itemRepo.Deactivate(ctx, id); err != nil {
		return fmt.Errorf("failed to deactivate item: %w", err)
	}

	return nil
}
