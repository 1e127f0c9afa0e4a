package services

import (
	"context"
	"time"

	"github.com/brightframe/rotator-go/internal/domain/repositories"
	"github.com/brightframe/rotator-go/internal/infrastructure/observability/logging"
	"github.com/brightframe/rotator-go/pkg/config"
)

// StatEventType distinguishes view and click telemetry events.
type StatEventType string

const (
	StatEventView  StatEventType = "view"
	StatEventClick StatEventType = "click"
)

type statEvent struct {
	itemID    string
	eventType StatEventType
}

// StatsService is the fire-and-forget engagement recorder. Enqueue never
// blocks the read path: when the buffer is full the event is dropped and
// counted, not queued. Events still buffered at shutdown are dropped.
type StatsService struct {
	statsRepo repositories.StatsRepository
	logger    *logging.ChanneledLogger
	events    chan statEvent
	done      chan struct{}
}

// NewStatsService creates a statistics recorder with the configured
// buffer size. Call Start to begin draining events.
func NewStatsService(statsRepo repositories.StatsRepository, logger *logging.ChanneledLogger) *StatsService {
	return NewStatsServiceWithBuffer(statsRepo, logger, config.StatsBufferSize)
}

// NewStatsServiceWithBuffer creates a recorder with an explicit buffer
// size; used by tests.
func NewStatsServiceWithBuffer(statsRepo repositories.StatsRepository, logger *logging.ChanneledLogger, bufferSize int) *StatsService {
	return &StatsService{
		statsRepo: statsRepo,
		logger:    logger,
		events:    make(chan statEvent, bufferSize),
		done:      make(chan struct{}),
	}
}

// Start runs the recorder goroutine until the context is cancelled.
func (s *StatsService) Start(ctx context.Context) {
	go s.run(ctx)
}

// Wait blocks until the recorder goroutine has exited. Tests use it to
// drain the buffer deterministically after cancelling the context.
func (s *StatsService) Wait() {
	<-s.done
}

// RecordView enqueues a view event. Always returns immediately.
func (s *StatsService) RecordView(itemID string) {
	s.enqueue(statEvent{itemID: itemID, eventType: StatEventView})
}

// RecordClick enqueues a click event. Always returns immediately.
func (s *StatsService) RecordClick(itemID string) {
	s.enqueue(statEvent{itemID: itemID, eventType: StatEventClick})
}

func (s *StatsService) enqueue(event statEvent) {
	select {
	case s.events <- event:
	default:
		s.logger.Stats().Debug("Stats buffer full, event dropped",
			"itemId", event.itemID, "type", string(event.eventType))
	}
}

func (s *StatsService) run(ctx context.Context) {
	defer close(s.done)
	s.logger.Stats().Info("Statistics recorder started", "bufferSize", cap(s.events))

	for {
		select {
		case <-ctx.Done():
			s.logger.Stats().Info("Statistics recorder stopping",
				"droppedOnShutdown", len(s.events))
			return
		case event := <-s.events:
			s.apply(event)
		}
	}
}

// apply runs each increment with its own short deadline so one slow write
// cannot stall the drain loop behind it.
func (s *StatsService) apply(event statEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var found bool
	var err error
	switch event.eventType {
	case StatEventClick:
		found, err = s.statsRepo.IncrementClick(ctx, event.itemID)
	default:
		found, err = s.statsRepo.IncrementView(ctx, event.itemID)
	}

	if err != nil {
		s.logger.Stats().Error("Counter increment failed",
			"itemId", event.itemID, "type", string(event.eventType), "error", err.Error())
		return
	}
	if !found {
		s.logger.Stats().Warn("Stats event for unknown item",
			"itemId", event.itemID, "type", string(event.eventType))
	}
}
