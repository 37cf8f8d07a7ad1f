package sheets

import (
	"context"

	"teambudget/internal/report"
)

// Ports for outbound adapters.
type (
	// ReportPublisher pushes the reports derived from one snapshot to an
	// external sink. Publishing the same snapshot twice must be harmless.
	ReportPublisher interface {
		PublishReports(ctx context.Context, snapshotID int64, b report.Budget, l report.Ledger) error
	}
)
