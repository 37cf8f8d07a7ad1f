package adapters

import (
	"context"
	"errors"
	"testing"

	"teambudget/internal/core"
	"teambudget/internal/services"
	"teambudget/internal/storage"
)

type brokenReader struct{}

func (brokenReader) Load(context.Context) (core.RosterState, bool, error) {
	return core.RosterState{}, false, errors.New("disk on fire")
}

func (brokenReader) LatestID(context.Context) (int64, error) {
	return 0, errors.New("disk on fire")
}

func TestSnapshotAdapter_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo, err := storage.NewMemoryRepository("")
	if err != nil {
		t.Fatal(err)
	}
	a := NewSnapshotAdapter(repo, services.NewLedgerService(repo, nil, 0, nil))

	if _, ok, err := a.Load(ctx); err != nil || ok {
		t.Fatalf("empty repository: ok=%v err=%v", ok, err)
	}
	if err := a.Ready(ctx); err != nil {
		t.Fatalf("Ready: %v", err)
	}

	state := core.DefaultState()
	state.Season = "2031"
	if err := a.Persist(ctx, 7, state); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	got, ok, err := a.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if got.Season != "2031" {
		t.Fatalf("Season = %q", got.Season)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestSnapshotAdapter_StorageErrors(t *testing.T) {
	repo, _ := storage.NewMemoryRepository("")
	a := NewSnapshotAdapter(brokenReader{}, services.NewLedgerService(repo, nil, 0, nil))

	if _, _, err := a.Load(context.Background()); err == nil {
		t.Fatal("expected Load error")
	}
	if err := a.Ready(context.Background()); err == nil {
		t.Fatal("expected Ready error")
	}
}
