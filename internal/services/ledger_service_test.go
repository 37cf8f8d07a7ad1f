package services

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"teambudget/internal/amqp"
	"teambudget/internal/core"
	"teambudget/internal/storage"
)

type fakePublisher struct {
	msgs   []*amqp.SnapshotSavedMessage
	err    error
	closed bool
}

func (f *fakePublisher) PublishSnapshotSaved(_ context.Context, msg *amqp.SnapshotSavedMessage) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msg)
	return nil
}

func (f *fakePublisher) Close() error {
	f.closed = true
	return nil
}

func TestLedgerService_PersistPublishes(t *testing.T) {
	ctx := context.Background()
	repo, _ := storage.NewMemoryRepository("")
	pub := &fakePublisher{}
	svc := NewLedgerService(repo, pub, 2, nil)

	base := core.DefaultState()
	svc.Seed(base)

	next := base.Clone()
	next.Season = "2027"
	next.Roster = append(next.Roster, core.Person{ID: 1, Type: core.Player, PackageType: core.FullPackage})
	if err := svc.Persist(ctx, 1, next); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	if len(pub.msgs) != 1 {
		t.Fatalf("published %d messages", len(pub.msgs))
	}
	msg := pub.msgs[0]
	if msg.SnapshotID != 1 || msg.StoreVersion != 1 {
		t.Fatalf("unexpected message %+v", msg)
	}
	if want := []string{"roster", "season"}; !reflect.DeepEqual(msg.Changes, want) {
		t.Fatalf("changes = %v, want %v", msg.Changes, want)
	}

	for v := int64(2); v <= 4; v++ {
		_ = svc.Persist(ctx, v, next)
	}
	infos, _ := repo.List(ctx, 10)
	if len(infos) != 2 {
		t.Fatalf("retention not applied: %d snapshots", len(infos))
	}
	if len(pub.msgs[len(pub.msgs)-1].Changes) != 0 {
		t.Fatalf("identical state should report no changes")
	}

	if err := svc.Close(); err != nil || !pub.closed {
		t.Fatalf("Close: %v closed=%v", err, pub.closed)
	}
}

func TestLedgerService_PublishFailureDoesNotFail(t *testing.T) {
	repo, _ := storage.NewMemoryRepository("")
	pub := &fakePublisher{err: errors.New("connection refused")}
	svc := NewLedgerService(repo, pub, 0, nil)

	if err := svc.Persist(context.Background(), 1, core.DefaultState()); err != nil {
		t.Fatalf("publish failure must not fail Persist: %v", err)
	}
	if id, _ := repo.LatestID(context.Background()); id != 1 {
		t.Fatalf("snapshot not saved")
	}
}

func TestLedgerService_WithoutPublisher(t *testing.T) {
	repo, _ := storage.NewMemoryRepository("")
	svc := NewLedgerService(repo, nil, 0, nil)
	if err := svc.Persist(context.Background(), 1, core.DefaultState()); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestChanges(t *testing.T) {
	a := core.DefaultState()
	b := a.Clone()
	b.FeeStructure.CageJacket = 100
	b.Transactions = append(b.Transactions, core.Transaction{ID: 1, Amount: 5, Type: core.Income})
	b.IsTier2 = true

	got, err := Changes(a, b)
	if err != nil {
		t.Fatalf("Changes: %v", err)
	}
	want := []string{"feeStructure", "isTier2", "transactions"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Changes = %v, want %v", got, want)
	}
}
