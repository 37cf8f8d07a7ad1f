package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"teambudget/internal/amqp"
	"teambudget/internal/core"
	"teambudget/internal/log"
)

// SnapshotWriter is the storage side of LedgerService.
type SnapshotWriter interface {
	Save(ctx context.Context, storeVersion int64, s core.RosterState) (int64, error)
	Prune(ctx context.Context, keep int) (int64, error)
	Close() error
}

// EventPublisher announces saved snapshots. *amqp.Client implements it.
type EventPublisher interface {
	PublishSnapshotSaved(ctx context.Context, msg *amqp.SnapshotSavedMessage) error
	Close() error
}

// LedgerService persists roster snapshots and notifies the sync worker.
type LedgerService struct {
	storage   SnapshotWriter
	publisher EventPublisher
	retention int
	logger    *log.Logger

	mu      sync.Mutex
	prev    core.RosterState
	hasPrev bool
}

// NewLedgerService wires storage and an optional publisher. retention is the
// number of snapshots kept after each save; zero keeps everything.
func NewLedgerService(storage SnapshotWriter, publisher EventPublisher, retention int, logger *log.Logger) *LedgerService {
	if logger == nil {
		logger = log.Nop()
	}
	return &LedgerService{
		storage:   storage,
		publisher: publisher,
		retention: retention,
		logger:    logger.WithComponent(log.ComponentLedger),
	}
}

// Seed sets the state the next Persist call is diffed against.
func (s *LedgerService) Seed(state core.RosterState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prev = state.Clone()
	s.hasPrev = true
}

// Persist saves state and publishes a sync message. Only the save can fail
// the call; a publish failure is logged because the snapshot is already
// durable and the catch-up processor will pick it up.
func (s *LedgerService) Persist(ctx context.Context, storeVersion int64, state core.RosterState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.storage.Save(ctx, storeVersion, state)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	var changes []string
	if s.hasPrev {
		changes, err = Changes(s.prev, state)
		if err != nil {
			s.logger.WarnContext(ctx, "Failed to diff snapshots", log.FieldError, err)
		}
	}
	s.prev = state.Clone()
	s.hasPrev = true

	if err := s.publish(ctx, id, storeVersion, changes); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish snapshot message",
			"snapshot_id", id,
			log.FieldError, err)
	}

	if s.retention > 0 {
		if _, err := s.storage.Prune(ctx, s.retention); err != nil {
			s.logger.WarnContext(ctx, "Failed to prune snapshots", log.FieldError, err)
		}
	}
	return nil
}

func (s *LedgerService) publish(ctx context.Context, id, storeVersion int64, changes []string) error {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "AMQP client not available, skipping sync message")
		return nil
	}
	return s.publisher.PublishSnapshotSaved(ctx, amqp.NewSnapshotSavedMessage(id, storeVersion, changes))
}

// Close closes both storage and AMQP connections
func (s *LedgerService) Close() error {
	var errs []error
	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %w", errors.Join(errs...))
	}
	return nil
}
