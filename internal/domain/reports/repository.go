package reports

import (
	"context"
)

// Repository defines report data access interface.
type Repository interface {
	// GetProfitReport aggregates paid sales by month for the filter period.
	GetProfitReport(ctx context.Context, filter ProfitReportFilter) (*ProfitReport, error)

	// GetDebtReport aggregates open debtor records by customer name.
	GetDebtReport(ctx context.Context, filter DebtReportFilter) (*DebtReport, error)

	// GetSummary returns headline figures for an arbitrary period.
	GetSummary(ctx context.Context, filter SummaryFilter) (*Summary, error)
}
