package memory

import (
	"context"
	"errors"
	"testing"

	"teambudget/internal/report"
)

func TestPublisherRecordsAndFails(t *testing.T) {
	ctx := context.Background()
	p := New()

	if _, ok := p.Last(); ok {
		t.Fatal("new publisher should be empty")
	}
	if err := p.PublishReports(ctx, 4, report.Budget{PerPlayerShare: 10}, report.Ledger{}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	boom := errors.New("boom")
	p.FailWith(boom)
	if err := p.PublishReports(ctx, 5, report.Budget{}, report.Ledger{}); !errors.Is(err, boom) {
		t.Fatalf("expected injected error, got %v", err)
	}
	p.FailWith(nil)
	_ = p.PublishReports(ctx, 6, report.Budget{}, report.Ledger{})

	ids := p.SnapshotIDs()
	if len(ids) != 2 || ids[0] != 4 || ids[1] != 6 {
		t.Fatalf("unexpected ids %v", ids)
	}
	if last, _ := p.Last(); last.SnapshotID != 6 {
		t.Fatalf("Last = %+v", last)
	}
}
