package services

import (
	"context"
	"fmt"

	"github.com/brightframe/rotator-go/internal/domain/entities/display"
	"github.com/brightframe/rotator-go/internal/domain/repositories"
	"github.com/brightframe/rotator-go/pkg/config"
)

// SlotService orchestrates slot registry operations. Every write that
// touches a fallback link is cycle-validated before it lands.
type SlotService struct {
	slotRepo  repositories.SlotRepository
	groupRepo repositories.GroupRepository
}

// NewSlotService creates a new slot application service
func NewSlotService(slotRepo repositories.SlotRepository, groupRepo repositories.GroupRepository) *SlotService {
	return &SlotService{
		slotRepo:  slotRepo,
		groupRepo: groupRepo,
	}
}

// GetByToken returns a slot or nil when the token is unknown.
func (s *SlotService) GetByToken(ctx context.Context, token string) (*display.Slot, error) {
	if token == "" {
		return nil, fmt.Errorf("position token cannot be empty")
	}

	slot, err := s.slotRepo.FindByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to get slot %s: %w", token, err)
	}

	return slot, nil
}

// GetAll returns every registered slot.
func (s *SlotService) GetAll(ctx context.Context) ([]*display.Slot, error) {
	slots, err := s.slotRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get all slots: %w", err)
	}

	return slots, nil
}

// Create registers a slot after verifying its groups exist and its
// fallback link introduces no cycle.
func (s *SlotService) Create(ctx context.Context, slot *display.Slot) error {
	if err := s.validateSlot(ctx, slot); err != nil {
		return err
	}
	if err := s.validateNoCycle(ctx, slot); err != nil {
		return err
	}

	if err := s.slotRepo.Store(ctx, slot); err != nil {
		return fmt.Errorf("failed to create slot: %w", err)
	}

	return nil
}

// Update rewrites a slot's group links, re-running cycle validation.
func (s *SlotService) Update(ctx context.Context, slot *display.Slot) error {
	if err := s.validateSlot(ctx, slot); err != nil {
		return err
	}

	existing, err := s.slotRepo.FindByToken(ctx, slot.PositionToken)
	if err != nil {
		return fmt.Errorf("failed to load slot %s: %w", slot.PositionToken, err)
	}
	if existing == nil {
		return fmt.Errorf("slot %s: %w", slot.PositionToken, display.ErrSlotNotFound)
	}

	if err := s.validateNoCycle(ctx, slot); err != nil {
		return err
	}

	if err := s.slotRepo.Update(ctx, slot); err != nil {
		return fmt.Errorf("failed to update slot: %w", err)
	}

	return nil
}

// Delete removes a slot registration. The groups it pointed at survive.
func (s *SlotService) Delete(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("position token cannot be empty")
	}

	if err := s.slotRepo.Delete(ctx, token); err != nil {
		return fmt.Errorf("failed to delete slot: %w", err)
	}

	return nil
}

func (s *SlotService) validateSlot(ctx context.Context, slot *display.Slot) error {
	if slot == nil {
		return fmt.Errorf("slot cannot be nil")
	}
	if slot.PositionToken == "" {
		return fmt.Errorf("position token cannot be empty")
	}
	if slot.PrimaryGroupID == "" {
		return fmt.Errorf("primary group ID cannot be empty")
	}

	primary, err := s.groupRepo.FindByID(ctx, slot.PrimaryGroupID)
	if err != nil {
		return fmt.Errorf("failed to load primary group: %w", err)
	}
	if primary == nil {
		return fmt.Errorf("primary group %s: %w", slot.PrimaryGroupID, display.ErrGroupNotFound)
	}

	if slot.FallbackGroupID != nil {
		fallback, err := s.groupRepo.FindByID(ctx, *slot.FallbackGroupID)
		if err != nil {
			return fmt.Errorf("failed to load fallback group: %w", err)
		}
		if fallback == nil {
			return fmt.Errorf("fallback group %s: %w", *slot.FallbackGroupID, display.ErrGroupNotFound)
		}
	}

	return nil
}

// validateNoCycle walks the fallback chain the resolver would walk if this
// write landed, and rejects the write when the chain revisits a group. The
// chain continues through other slots whose primary group is the current
// fallback target; for the slot being written the in-flight links are used
// instead of the stored row.
func (s *SlotService) validateNoCycle(ctx context.Context, candidate *display.Slot) error {
	if candidate.FallbackGroupID == nil {
		return nil
	}

	visited := map[string]bool{candidate.PrimaryGroupID: true}
	current := candidate.FallbackGroupID

	for depth := 0; current != nil && depth < config.MaxFallbackDepth; depth++ {
		if visited[*current] {
			return fmt.Errorf("fallback chain from slot %s revisits group %s: %w",
				candidate.PositionToken, *current, display.ErrCyclicFallback)
		}
		visited[*current] = true

		next, err := s.slotRepo.FindByPrimaryGroup(ctx, *current)
		if err != nil {
			return fmt.Errorf("failed to walk fallback chain: %w", err)
		}
		if next != nil && next.PositionToken == candidate.PositionToken {
			next = candidate
		}
		if next == nil {
			return nil
		}
		current = next.FallbackGroupID
	}

	return nil
}
