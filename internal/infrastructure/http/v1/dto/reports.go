package dto

import (
	"tokopos/internal/core/types"
	"tokopos/internal/domain/reports"
)

// --- Profit Report ---

type MonthlyProfitResponse struct {
	Month            int         `json:"month"`
	SalesTotal       types.Money `json:"salesTotal"`
	CostTotal        types.Money `json:"costTotal"`
	Profit           types.Money `json:"profit"`
	TransactionCount int         `json:"transactionCount"`
}

type ProfitReportResponse struct {
	Year        int                     `json:"year"`
	Month       int                     `json:"month,omitempty"`
	Months      []MonthlyProfitResponse `json:"months"`
	TotalSales  types.Money             `json:"totalSales"`
	TotalCost   types.Money             `json:"totalCost"`
	TotalProfit types.Money             `json:"totalProfit"`
}

func FromProfitReport(r *reports.ProfitReport) *ProfitReportResponse {
	resp := &ProfitReportResponse{
		Year:        r.Year,
		Month:       r.Month,
		Months:      make([]MonthlyProfitResponse, len(r.Months)),
		TotalSales:  r.TotalSales,
		TotalCost:   r.TotalCost,
		TotalProfit: r.TotalProfit,
	}
	for i, m := range r.Months {
		resp.Months[i] = MonthlyProfitResponse{
			Month:            m.Month,
			SalesTotal:       m.SalesTotal,
			CostTotal:        m.CostTotal,
			Profit:           m.Profit,
			TransactionCount: m.TransactionCount,
		}
	}
	return resp
}

// --- Debt Report ---

type DebtSummaryItemResponse struct {
	CustomerName string      `json:"customerName"`
	RecordCount  int         `json:"recordCount"`
	Total        types.Money `json:"total"`
	OldestDate   string      `json:"oldestDate"`
}

type DebtReportResponse struct {
	Items            []DebtSummaryItemResponse `json:"items"`
	TotalCount       int                       `json:"totalCount"`
	TotalOutstanding types.Money               `json:"totalOutstanding"`
}

func FromDebtReport(r *reports.DebtReport) *DebtReportResponse {
	resp := &DebtReportResponse{
		Items:            make([]DebtSummaryItemResponse, len(r.Items)),
		TotalCount:       r.TotalCount,
		TotalOutstanding: r.TotalOutstanding,
	}
	for i, item := range r.Items {
		resp.Items[i] = DebtSummaryItemResponse{
			CustomerName: item.CustomerName,
			RecordCount:  item.RecordCount,
			Total:        item.Total,
			OldestDate:   FormatCalendarDate(item.OldestDate),
		}
	}
	return resp
}

// --- Summary ---

type SummaryResponse struct {
	FromDate      string      `json:"fromDate"`
	ToDate        string      `json:"toDate"`
	SalesTotal    types.Money `json:"salesTotal"`
	SalesCount    int         `json:"salesCount"`
	Profit        types.Money `json:"profit"`
	PurchaseTotal types.Money `json:"purchaseTotal"`
	PurchaseCount int         `json:"purchaseCount"`
	DebtCreated   types.Money `json:"debtCreated"`
	DebtCount     int         `json:"debtCount"`
}

func FromSummary(s *reports.Summary) *SummaryResponse {
	return &SummaryResponse{
		FromDate:      FormatCalendarDate(s.FromDate),
		ToDate:        FormatCalendarDate(s.ToDate),
		SalesTotal:    s.SalesTotal,
		SalesCount:    s.SalesCount,
		Profit:        s.Profit,
		PurchaseTotal: s.PurchaseTotal,
		PurchaseCount: s.PurchaseCount,
		DebtCreated:   s.DebtCreated,
		DebtCount:     s.DebtCount,
	}
}
