package postgres

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"tokopos/internal/core/types"
	"tokopos/internal/domain/reports"
)

// Compile-time check.
var _ reports.Repository = (*ReportRepo)(nil)

// ReportRepo implements reports.Repository with SQL aggregations.
// Profit figures come from line-item price/cost snapshots, never from
// current ledger cost prices.
type ReportRepo struct {
	txManager *TxManager
}

// NewReportRepo creates the report repository.
func NewReportRepo(txManager *TxManager) *ReportRepo {
	return &ReportRepo{txManager: txManager}
}

// GetProfitReport aggregates paid sales by month for a year, or for one
// month when filter.Month is set.
func (r *ReportRepo) GetProfitReport(ctx context.Context, filter reports.ProfitReportFilter) (*reports.ProfitReport, error) {
	query := `
		SELECT
			EXTRACT(MONTH FROM s.date)::int AS month,
			COALESCE(SUM(l.unit_price * l.quantity), 0) AS sales_total,
			COALESCE(SUM(l.unit_cost * l.quantity), 0) AS cost_total,
			COALESCE(SUM((l.unit_price - l.unit_cost) * l.quantity), 0) AS profit,
			COUNT(DISTINCT s.id)::int AS transaction_count
		FROM sales s
		JOIN sale_lines l ON l.invoice_id = s.id
		WHERE EXTRACT(YEAR FROM s.date) = $1
	`
	args := []any{filter.Year}
	if filter.Month > 0 {
		query += " AND EXTRACT(MONTH FROM s.date) = $2"
		args = append(args, filter.Month)
	}
	query += `
		GROUP BY EXTRACT(MONTH FROM s.date)
		ORDER BY month
	`

	var months []reports.MonthlyProfit
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &months, query, args...); err != nil {
		return nil, fmt.Errorf("profit report: %w", err)
	}

	report := &reports.ProfitReport{
		Year:        filter.Year,
		Month:       filter.Month,
		Months:      months,
		TotalSales:  types.Zero(),
		TotalCost:   types.Zero(),
		TotalProfit: types.Zero(),
	}
	for _, m := range months {
		report.TotalSales = report.TotalSales.Add(m.SalesTotal)
		report.TotalCost = report.TotalCost.Add(m.CostTotal)
		report.TotalProfit = report.TotalProfit.Add(m.Profit)
	}
	return report, nil
}

// GetDebtReport aggregates open debtor records grouped by customer name.
// The headline totals cover every matching debtor, not just the page the
// limit and offset select.
func (r *ReportRepo) GetDebtReport(ctx context.Context, filter reports.DebtReportFilter) (*reports.DebtReport, error) {
	pageSQL, totalSQL, args := debtReportQueries(filter)

	report := &reports.DebtReport{TotalOutstanding: types.Zero()}

	// One read-only snapshot covers both the page and the totals.
	err := r.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		querier := r.txManager.GetQuerier(ctx)
		if err := pgxscan.Select(ctx, querier, &report.Items, pageSQL, args...); err != nil {
			return fmt.Errorf("debt report: %w", err)
		}
		return querier.QueryRow(ctx, totalSQL, args...).
			Scan(&report.TotalCount, &report.TotalOutstanding)
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// debtReportQueries builds the paged per-customer query and the unpaged
// totals query over the same WHERE clause.
func debtReportQueries(filter reports.DebtReportFilter) (pageSQL, totalSQL string, args []any) {
	where := ""
	if filter.CustomerName != "" {
		where = " WHERE lower(d.customer_name) = lower($1)"
		args = append(args, filter.CustomerName)
	}

	pageSQL = `
		SELECT
			d.customer_name,
			COUNT(*)::int AS record_count,
			COALESCE(SUM(d.total), 0) AS total,
			MIN(d.date) AS oldest_date
		FROM debtors d
	` + where + fmt.Sprintf(`
		GROUP BY d.customer_name
		ORDER BY total DESC
		LIMIT %d OFFSET %d
	`, filter.Limit, filter.Offset)

	totalSQL = `
		SELECT COUNT(DISTINCT d.customer_name)::int, COALESCE(SUM(d.total), 0)
		FROM debtors d
	` + where

	return pageSQL, totalSQL, args
}

// GetSummary returns headline figures for a period. The three aggregates
// read one consistent read-only snapshot.
func (r *ReportRepo) GetSummary(ctx context.Context, filter reports.SummaryFilter) (*reports.Summary, error) {
	summary := &reports.Summary{
		FromDate:      filter.FromDate,
		ToDate:        filter.ToDate,
		SalesTotal:    types.Zero(),
		Profit:        types.Zero(),
		PurchaseTotal: types.Zero(),
		DebtCreated:   types.Zero(),
	}

	err := r.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		return r.scanSummary(ctx, filter, summary)
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func (r *ReportRepo) scanSummary(ctx context.Context, filter reports.SummaryFilter, summary *reports.Summary) error {
	querier := r.txManager.GetQuerier(ctx)

	salesSQL := `
		SELECT
			COALESCE(SUM(s.total), 0) AS sales_total,
			COUNT(*)::int AS sales_count,
			COALESCE((
				SELECT SUM((l.unit_price - l.unit_cost) * l.quantity)
				FROM sale_lines l
				JOIN sales s2 ON s2.id = l.invoice_id
				WHERE s2.date >= $1 AND s2.date < $2
			), 0) AS profit
		FROM sales s
		WHERE s.date >= $1 AND s.date < $2
	`
	err := querier.QueryRow(ctx, salesSQL, filter.FromDate, filter.ToDate).
		Scan(&summary.SalesTotal, &summary.SalesCount, &summary.Profit)
	if err != nil {
		return fmt.Errorf("summary sales: %w", err)
	}

	purchaseSQL := `
		SELECT COALESCE(SUM(total), 0), COUNT(*)::int
		FROM purchases
		WHERE date >= $1 AND date < $2
	`
	err = querier.QueryRow(ctx, purchaseSQL, filter.FromDate, filter.ToDate).
		Scan(&summary.PurchaseTotal, &summary.PurchaseCount)
	if err != nil {
		return fmt.Errorf("summary purchases: %w", err)
	}

	debtSQL := `
		SELECT COALESCE(SUM(total), 0), COUNT(*)::int
		FROM debtors
		WHERE date >= $1 AND date < $2
	`
	err = querier.QueryRow(ctx, debtSQL, filter.FromDate, filter.ToDate).
		Scan(&summary.DebtCreated, &summary.DebtCount)
	if err != nil {
		return fmt.Errorf("summary debts: %w", err)
	}

	return nil
}
