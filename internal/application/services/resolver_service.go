package services

import (
	"context"
	"fmt"
	"time"

	"github.com/brightframe/rotator-go/internal/domain/entities/display"
	"github.com/brightframe/rotator-go/internal/domain/repositories"
	"github.com/brightframe/rotator-go/internal/infrastructure/caching/interfaces"
	"github.com/brightframe/rotator-go/internal/infrastructure/email"
	"github.com/brightframe/rotator-go/internal/infrastructure/observability/logging"
	"github.com/brightframe/rotator-go/pkg/config"
)

// ResolverService answers "what should render at this position" by
// walking a slot's primary group and fallback chain until it finds an
// eligible group. Outcomes are cached by token, with the group IDs the
// walk touched recorded for precise invalidation.
type ResolverService struct {
	slotRepo    repositories.SlotRepository
	groupRepo   repositories.GroupRepository
	cache       interfaces.DisplayCache
	logger      *logging.ChanneledLogger
	alerts      email.AlertService
	maxDepth    int
	readTimeout time.Duration
}

// NewResolverService creates a new slot resolver service
func NewResolverService(
	slotRepo repositories.SlotRepository,
	groupRepo repositories.GroupRepository,
	cache interfaces.DisplayCache,
	logger *logging.ChanneledLogger,
	alerts email.AlertService,
) *ResolverService {
	return &ResolverService{
		slotRepo:    slotRepo,
		groupRepo:   groupRepo,
		cache:       cache,
		logger:      logger,
		alerts:      alerts,
		maxDepth:    config.MaxFallbackDepth,
		readTimeout: config.StoreReadTimeout,
	}
}

// Resolve maps a position token to its display outcome. An empty
// resolution (nil group) is a normal answer, returned when no group in
// the chain is eligible or when the store is unreachable; the caller
// renders nothing rather than an error page. Unknown tokens are the one
// hard failure, reported as ErrSlotNotFound.
func (s *ResolverService) Resolve(ctx context.Context, token string) (*display.Resolution, error) {
	if token == "" {
		return nil, fmt.Errorf("position token cannot be empty")
	}

	if resolution, found := s.cache.GetResolution(token); found {
		return resolution, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.readTimeout)
	defer cancel()

	slot, err := s.slotRepo.FindByToken(ctx, token)
	if err != nil {
		s.degrade(token, "slot lookup failed", err)
		return &display.Resolution{}, nil
	}
	if slot == nil {
		return nil, fmt.Errorf("slot %s: %w", token, display.ErrSlotNotFound)
	}

	start := time.Now()
	visited := make(map[string]bool)
	touched := make([]string, 0, 2)

	currentGroupID := slot.PrimaryGroupID
	fallbackID := slot.FallbackGroupID

	for depth := 0; depth < s.maxDepth; depth++ {
		if visited[currentGroupID] {
			s.reportCycle(token, currentGroupID, touched)
			// Cache the empty outcome like any other. Without this every
			// request for the token re-walks the cycle and re-pings the
			// ops mailer; with it the alert fires once per TTL window
			// until the links are repaired.
			resolution := &display.Resolution{}
			s.cache.SetResolution(token, resolution, touched)
			return resolution, nil
		}
		visited[currentGroupID] = true
		touched = append(touched, currentGroupID)

		group, err := s.groupRepo.FindByID(ctx, currentGroupID)
		if err != nil {
			s.degrade(token, "group lookup failed", err)
			return &display.Resolution{}, nil
		}

		if group != nil && group.IsEligible() {
			policy := group.RotationPolicy
			resolution := &display.Resolution{
				Group:          group,
				Items:          group.ActiveItems(),
				RotationPolicy: &policy,
			}
			s.cache.SetResolution(token, resolution, touched)
			s.logger.Resolver().Debug("Resolved slot",
				"token", token, "groupId", group.ID, "hops", depth, "duration", time.Since(start))
			return resolution, nil
		}

		if fallbackID == nil {
			break
		}
		currentGroupID = *fallbackID

		// The chain continues through whichever slot names the fallback
		// group as its primary.
		next, err := s.slotRepo.FindByPrimaryGroup(ctx, currentGroupID)
		if err != nil {
			s.degrade(token, "fallback chain lookup failed", err)
			return &display.Resolution{}, nil
		}
		if next == nil {
			fallbackID = nil
		} else {
			fallbackID = next.FallbackGroupID
		}
	}

	resolution := &display.Resolution{}
	s.cache.SetResolution(token, resolution, touched)
	s.logger.Resolver().Debug("No eligible group for slot",
		"token", token, "groupsChecked", len(touched), "duration", time.Since(start))
	return resolution, nil
}

// degrade logs a store failure on the resolver channel. The read path
// never surfaces store errors; the empty resolution stands in.
func (s *ResolverService) degrade(token, operation string, err error) {
	s.logger.LogError(logging.ChannelResolver, operation, err, map[string]any{
		"token":    token,
		"degraded": true,
	})
}

// reportCycle handles a cycle observed at read time. Write-time validation
// should make this unreachable, so seeing one means slot links were
// changed outside the service; it is logged as an integrity fault and the
// ops mailer is pinged.
func (s *ResolverService) reportCycle(token, groupID string, touched []string) {
	s.logger.Alert().Error("Cyclic fallback chain detected at read time",
		"token", token, "repeatedGroupId", groupID, "chain", touched)

	detail := fmt.Sprintf(
		"Resolving position token %q revisited group %q.\nChain walked: %v\n\nSlot fallback links need manual repair.",
		token, groupID, touched)
	if err := s.alerts.SendIntegrityAlert("cyclic fallback chain", detail); err != nil {
		s.logger.Alert().Error("Failed to send integrity alert", "error", err.Error())
	}
}
