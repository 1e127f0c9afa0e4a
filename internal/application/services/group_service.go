// Package services provides application-level services that orchestrate
// business logic and coordinate between repositories and domain entities.
package services

import (
	"context"
	"fmt"

	"github.com/brightframe/rotator-go/internal/domain/entities/display"
	"github.com/brightframe/rotator-go/internal/domain/repositories"
	"github.com/brightframe/rotator-go/internal/infrastructure/security"
)

// GroupService orchestrates content group operations with the cache-first
// repository pattern.
type GroupService struct {
	groupRepo repositories.GroupRepository
}

// NewGroupService creates a new group application service
func NewGroupService(groupRepo repositories.GroupRepository) *GroupService {
	return &GroupService{
		groupRepo: groupRepo,
	}
}

// GetByID returns a group with its items, or nil when it does not exist.
func (s *GroupService) GetByID(ctx context.Context, id string) (*display.ContentGroup, error) {
	if id == "" {
		return nil, fmt.Errorf("group ID cannot be empty")
	}

	group, err := s.groupRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get group %s: %w", id, err)
	}

	return group, nil
}

// GetAll returns every group with items.
func (s *GroupService) GetAll(ctx context.Context) ([]*display.ContentGroup, error) {
	groups, err := s.groupRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get all groups: %w", err)
	}

	return groups, nil
}

// Create creates a new group, minting an ID when the caller did not
// provide one. New groups are deletable unless explicitly protected.
func (s *GroupService) Create(ctx context.Context, group *display.ContentGroup) error {
	if group == nil {
		return fmt.Errorf("group cannot be nil")
	}
	if group.Name == "" {
		return fmt.Errorf("group name cannot be empty")
	}
	if group.ID == "" {
		group.ID = security.GenerateULID()
	}

	if err := s.groupRepo.Store(ctx, group); err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}

	return nil
}

// Update modifies an existing group's metadata and rotation policy.
func (s *GroupService) Update(ctx context.Context, group *display.ContentGroup) error {
	if group == nil {
		return fmt.Errorf("group cannot be nil")
	}
	if group.ID == "" {
		return fmt.Errorf("group ID cannot be empty")
	}

	existing, err := s.groupRepo.FindByID(ctx, group.ID)
	if err != nil {
		return fmt.Errorf("failed to load group %s: %w", group.ID, err)
	}
	if existing == nil {
		return fmt.Errorf("group %s: %w", group.ID, display.ErrGroupNotFound)
	}

	if err := s.groupRepo.Update(ctx, group); err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}

	return nil
}

// Delete removes a group and its items. Protected groups refuse deletion
// for every caller; there is no administrative override.
func (s *GroupService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("group ID cannot be empty")
	}

	group, err := s.groupRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load group %s: %w", id, err)
	}
	if group == nil {
		return fmt.Errorf("group %s: %w", id, display.ErrGroupNotFound)
	}
	if !group.Deletable {
		return fmt.Errorf("group %s: %w", id, display.ErrGroupProtected)
	}

	if err := s.groupRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}

	return nil
}
