// Package reports provides report generation over transaction records.
// Every figure is computed from line-item snapshots captured at transaction
// time; ledger cost prices changed afterwards do not rewrite history.
package reports

import (
	"time"

	"tokopos/internal/core/types"
)

// --- Profit Report ---

// ProfitReportFilter defines the period for the profit report.
type ProfitReportFilter struct {
	// Year is required
	Year int

	// Month narrows the report to one month (1-12); zero means whole year
	Month int
}

// MonthlyProfit is one month's row in the yearly breakdown.
type MonthlyProfit struct {
	Month            int         `json:"month"`
	SalesTotal       types.Money `json:"salesTotal"`
	CostTotal        types.Money `json:"costTotal"`
	Profit           types.Money `json:"profit"`
	TransactionCount int         `json:"transactionCount"`
}

// ProfitReport aggregates paid sales for a period. Unpaid debts do not
// contribute until settled.
type ProfitReport struct {
	Year   int             `json:"year"`
	Month  int             `json:"month,omitempty"`
	Months []MonthlyProfit `json:"months"`

	TotalSales  types.Money `json:"totalSales"`
	TotalCost   types.Money `json:"totalCost"`
	TotalProfit types.Money `json:"totalProfit"`
}

// --- Outstanding Debt Report ---

// DebtReportFilter defines filter for the outstanding debt report.
type DebtReportFilter struct {
	// CustomerName narrows to one customer (case-insensitive)
	CustomerName string

	// Pagination
	Limit  int
	Offset int
}

// DebtSummaryItem is one customer's outstanding position.
type DebtSummaryItem struct {
	CustomerName string      `json:"customerName"`
	RecordCount  int         `json:"recordCount"`
	Total        types.Money `json:"total"`
	OldestDate   time.Time   `json:"oldestDate"`
}

// DebtReport aggregates open debtor records grouped by customer name.
type DebtReport struct {
	Items      []DebtSummaryItem `json:"items"`
	TotalCount int               `json:"totalCount"`

	TotalOutstanding types.Money `json:"totalOutstanding"`
}

// --- Period Summary ---

// SummaryFilter defines the period for the sales/purchase summary.
type SummaryFilter struct {
	FromDate time.Time
	ToDate   time.Time
}

// Summary holds the period's headline figures.
type Summary struct {
	FromDate time.Time `json:"fromDate"`
	ToDate   time.Time `json:"toDate"`

	SalesTotal    types.Money `json:"salesTotal"`
	SalesCount    int         `json:"salesCount"`
	Profit        types.Money `json:"profit"`
	PurchaseTotal types.Money `json:"purchaseTotal"`
	PurchaseCount int         `json:"purchaseCount"`

	// DebtCreated is the total of debtor records opened in the period
	// and still outstanding
	DebtCreated types.Money `json:"debtCreated"`
	DebtCount   int         `json:"debtCount"`
}
