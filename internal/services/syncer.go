package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"teambudget/internal/core"
	"teambudget/internal/engine"
	"teambudget/internal/log"
	"teambudget/internal/report"
	"teambudget/internal/sheets"
)

// SnapshotSource is the storage side of the spreadsheet sync.
type SnapshotSource interface {
	Get(ctx context.Context, id int64) (core.RosterState, error)
	LatestID(ctx context.Context) (int64, error)
	LastSyncedID(ctx context.Context) (int64, error)
	MarkSynced(ctx context.Context, id int64) error
	MarkSyncError(ctx context.Context, id int64, syncErr error) error
	Prune(ctx context.Context, keep int) (int64, error)
}

// ErrStaleSnapshot reports a snapshot that is already synced or is not the
// newest one stored.
var ErrStaleSnapshot = errors.New("stale snapshot")

// Syncer turns a stored snapshot into reports and publishes them. Only the
// newest stored snapshot is published, and only once, so redelivered or out
// of order messages never overwrite fresher data.
type Syncer struct {
	source    SnapshotSource
	publisher sheets.ReportPublisher
	logger    *log.Logger

	mu     sync.Mutex
	latest int64
}

func NewSyncer(source SnapshotSource, publisher sheets.ReportPublisher, logger *log.Logger) *Syncer {
	if logger == nil {
		logger = log.Nop()
	}
	return &Syncer{
		source:    source,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentWorker),
	}
}

// Sync publishes snapshot id. Stale ids return ErrStaleSnapshot without
// touching the sink; a missing snapshot (already pruned) is also skipped.
func (s *Syncer) Sync(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.latest == 0 {
		last, err := s.source.LastSyncedID(ctx)
		if err != nil {
			return err
		}
		s.latest = last
	}
	if s.latest != 0 && id <= s.latest {
		return fmt.Errorf("snapshot %d already synced up to %d: %w", id, s.latest, ErrStaleSnapshot)
	}
	newest, err := s.source.LatestID(ctx)
	if err != nil {
		return err
	}
	if id < newest {
		return fmt.Errorf("snapshot %d superseded by %d: %w", id, newest, ErrStaleSnapshot)
	}

	state, err := s.source.Get(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		s.logger.WarnContext(ctx, "Snapshot no longer stored, skipping", "snapshot_id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load snapshot %d: %w", id, err)
	}

	result := engine.Compute(state)
	budget := report.BuildBudget(state, result)
	ledger := report.BuildLedger(state, result)

	if err := s.publisher.PublishReports(ctx, id, budget, ledger); err != nil {
		if markErr := s.source.MarkSyncError(ctx, id, err); markErr != nil {
			s.logger.WarnContext(ctx, "Failed to record sync error", log.FieldError, markErr)
		}
		return fmt.Errorf("publish snapshot %d: %w", id, err)
	}

	if err := s.source.MarkSynced(ctx, id); err != nil {
		// the sheet is already up to date
		s.logger.WarnContext(ctx, "Failed to mark snapshot synced", "snapshot_id", id, log.FieldError, err)
	}
	s.latest = id

	s.logger.InfoContext(ctx, "Synced snapshot",
		append([]any{"snapshot_id", id, log.FieldOperation, log.OpSync},
			log.NewFields().WithSolvency(result.PlayerCount, result.PerPlayerShare, result.Actuals.BankBalance).ToSlice()...)...)
	return nil
}

// SyncLatest publishes the newest snapshot when it has not been synced yet.
func (s *Syncer) SyncLatest(ctx context.Context) (bool, error) {
	latest, err := s.source.LatestID(ctx)
	if err != nil {
		return false, err
	}
	synced, err := s.source.LastSyncedID(ctx)
	if err != nil {
		return false, err
	}
	if latest == 0 || latest <= synced {
		return false, nil
	}
	if err := s.Sync(ctx, latest); err != nil {
		return false, err
	}
	return true, nil
}
