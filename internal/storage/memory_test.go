package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"teambudget/internal/core"
)

func TestMemoryRepositorySeedsFromStateFile(t *testing.T) {
	dir := t.TempDir()
	seed := `{"ageGroup":"14U","roster":[{"id":3,"type":"player","packageType":"partial"}]}`
	if err := os.WriteFile(filepath.Join(dir, StateFileName), []byte(seed), 0644); err != nil {
		t.Fatal(err)
	}

	repo, err := NewMemoryRepository(dir)
	if err != nil {
		t.Fatalf("NewMemoryRepository: %v", err)
	}
	s, ok, err := repo.Load(context.Background())
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if s.AgeGroup != "14U" || len(s.Roster) != 1 || s.FeeStructure.FullUniform != 850 {
		t.Fatalf("seed not decoded with defaults: %+v", s)
	}
}

func TestMemoryRepositoryRejectsBadSeed(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, StateFileName), []byte("[]"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewMemoryRepository(dir); err == nil {
		t.Fatal("expected an error for a non-object seed file")
	}
}

func TestMemoryRepositoryWritesThrough(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	repo, err := NewMemoryRepository(dir)
	if err != nil {
		t.Fatal(err)
	}

	s := core.DefaultState()
	s.Manager = "Kim"
	id, err := repo.Save(ctx, 1, s)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	s.Manager = "changed after save"

	got, err := repo.Get(ctx, id)
	if err != nil || got.Manager != "Kim" {
		t.Fatalf("Get = %+v, %v", got.TeamSettings, err)
	}

	reopened, err := NewMemoryRepository(dir)
	if err != nil {
		t.Fatal(err)
	}
	back, ok, _ := reopened.Load(ctx)
	if !ok || back.Manager != "Kim" {
		t.Fatalf("state file not written through: %+v", back.TeamSettings)
	}
}

func TestMemoryRepositoryPrune(t *testing.T) {
	ctx := context.Background()
	repo, _ := NewMemoryRepository("")
	for i := 0; i < 4; i++ {
		_, _ = repo.Save(ctx, int64(i), core.DefaultState())
	}
	_ = repo.MarkSynced(ctx, 3)

	if n, _ := repo.Prune(ctx, 2); n != 2 {
		t.Fatalf("pruned %d, want 2", n)
	}
	infos, _ := repo.List(ctx, 0)
	if len(infos) != 2 || infos[0].ID != 4 {
		t.Fatalf("unexpected list %+v", infos)
	}
	if last, _ := repo.LastSyncedID(ctx); last != 3 {
		t.Fatalf("LastSyncedID = %d, want 3", last)
	}
}
