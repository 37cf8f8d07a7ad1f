package memory

import (
	"context"
	"sync"

	"teambudget/internal/report"
	ports "teambudget/internal/sheets"
)

var _ ports.ReportPublisher = (*Publisher)(nil)

// Published is one call to PublishReports.
type Published struct {
	SnapshotID int64
	Budget     report.Budget
	Ledger     report.Ledger
}

// Publisher keeps published reports in memory. The worker uses it when no
// spreadsheet is configured.
type Publisher struct {
	mu    sync.Mutex
	items []Published
	fail  error
}

func New() *Publisher {
	return &Publisher{}
}

func (p *Publisher) PublishReports(_ context.Context, snapshotID int64, b report.Budget, l report.Ledger) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return p.fail
	}
	p.items = append(p.items, Published{SnapshotID: snapshotID, Budget: b, Ledger: l})
	return nil
}

// FailWith makes subsequent publishes return err; nil restores success.
func (p *Publisher) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fail = err
}

// Last returns the most recent publish.
func (p *Publisher) Last() (Published, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.items) == 0 {
		return Published{}, false
	}
	return p.items[len(p.items)-1], true
}

// SnapshotIDs lists published snapshot ids in publish order.
func (p *Publisher) SnapshotIDs() []int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]int64, len(p.items))
	for i, it := range p.items {
		out[i] = it.SnapshotID
	}
	return out
}
