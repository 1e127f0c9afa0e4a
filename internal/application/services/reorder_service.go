package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/brightframe/rotator-go/internal/domain/entities/display"
	"github.com/brightframe/rotator-go/internal/domain/ordering"
	"github.com/brightframe/rotator-go/internal/domain/repositories"
	"github.com/brightframe/rotator-go/internal/infrastructure/observability/logging"
)

// ReorderService applies batch order rewrites. Concurrent reorders of the
// same group serialize on a per-scope mutex; different groups proceed
// independently.
type ReorderService struct {
	reorderRepo repositories.ReorderRepository
	groupRepo   repositories.GroupRepository
	logger      *logging.ChanneledLogger

	mu         sync.Mutex
	scopeLocks map[string]*sync.Mutex
}

// NewReorderService creates a new reorder application service
func NewReorderService(
	reorderRepo repositories.ReorderRepository,
	groupRepo repositories.GroupRepository,
	logger *logging.ChanneledLogger,
) *ReorderService {
	return &ReorderService{
		reorderRepo: reorderRepo,
		groupRepo:   groupRepo,
		logger:      logger,
		scopeLocks:  make(map[string]*sync.Mutex),
	}
}

// Reorder validates and applies a batch of order pairs against one group.
// Validation and apply happen under the scope lock so a concurrent batch
// cannot slip between them. Returns the number of items updated.
func (s *ReorderService) Reorder(ctx context.Context, scopeID string, pairs []ordering.Pair) (int, error) {
	if scopeID == "" {
		return 0, fmt.Errorf("scope ID cannot be empty")
	}
	if len(pairs) == 0 {
		return 0, nil
	}

	lock := s.lockForScope(scopeID)
	lock.Lock()
	defer lock.Unlock()

	start := time.Now()

	group, err := s.groupRepo.FindByID(ctx, scopeID)
	if err != nil {
		return 0, fmt.Errorf("failed to load scope group %s: %w", scopeID, err)
	}
	if group == nil {
		return 0, fmt.Errorf("group %s: %w", scopeID, display.ErrGroupNotFound)
	}

	ids := make([]string, len(pairs))
	for i, pair := range pairs {
		ids[i] = pair.ItemID
	}
	owners, err := s.reorderRepo.OwnersByIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve item owners: %w", err)
	}

	if err := ordering.ValidateBatch(scopeID, pairs, owners); err != nil {
		s.logger.Content().Warn("Reorder batch rejected",
			"scopeId", scopeID, "pairs", len(pairs), "error", err.Error())
		return 0, err
	}

	if err := s.reorderRepo.ApplyOrders(ctx, scopeID, pairs); err != nil {
		return 0, fmt.Errorf("failed to apply reorder batch: %w", err)
	}

	s.logger.Content().Info("Reorder batch committed",
		"scopeId", scopeID, "updated", len(pairs), "duration", time.Since(start))
	return len(pairs), nil
}

func (s *ReorderService) lockForScope(scopeID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, exists := s.scopeLocks[scopeID]
	if !exists {
		lock = &sync.Mutex{}
		s.scopeLocks[scopeID] = lock
	}
	return lock
}
