package adapters

import (
	"context"
	"fmt"

	"teambudget/internal/core"
	"teambudget/internal/services"
)

// SnapshotReader is the read side of a snapshot repository.
type SnapshotReader interface {
	Load(ctx context.Context) (core.RosterState, bool, error)
	LatestID(ctx context.Context) (int64, error)
}

// SnapshotAdapter joins a snapshot repository and the LedgerService into the
// persistence backend the HTTP server and store use. Reads go straight to the
// repository; writes go through the service so they are announced to the
// sync worker.
type SnapshotAdapter struct {
	storage SnapshotReader
	service *services.LedgerService
}

func NewSnapshotAdapter(storage SnapshotReader, service *services.LedgerService) *SnapshotAdapter {
	return &SnapshotAdapter{
		storage: storage,
		service: service,
	}
}

// Load returns the newest stored state and seeds the service with it, so the
// first persisted snapshot reports only what actually changed.
func (a *SnapshotAdapter) Load(ctx context.Context) (core.RosterState, bool, error) {
	state, ok, err := a.storage.Load(ctx)
	if err != nil {
		return core.RosterState{}, false, err
	}
	if ok {
		a.service.Seed(state)
	}
	return state, ok, nil
}

// Persist implements store.PersistFunc.
func (a *SnapshotAdapter) Persist(ctx context.Context, version int64, state core.RosterState) error {
	return a.service.Persist(ctx, version, state)
}

// Ready checks that the repository answers queries.
func (a *SnapshotAdapter) Ready(ctx context.Context) error {
	if _, err := a.storage.LatestID(ctx); err != nil {
		return fmt.Errorf("snapshot storage not ready: %w", err)
	}
	return nil
}

func (a *SnapshotAdapter) Close() error {
	return a.service.Close()
}
