package postgres

import (
	"strings"
	"testing"

	"tokopos/internal/domain/reports"
)

func TestDebtReportQueries_TotalsIgnorePageBounds(t *testing.T) {
	pageSQL, totalSQL, args := debtReportQueries(reports.DebtReportFilter{
		Limit:  10,
		Offset: 20,
	})

	if !strings.Contains(pageSQL, "LIMIT 10 OFFSET 20") {
		t.Errorf("page query missing bounds:\n%s", pageSQL)
	}
	// The headline figures must cover every matching debtor, so the totals
	// query carries no LIMIT or OFFSET.
	if strings.Contains(totalSQL, "LIMIT") || strings.Contains(totalSQL, "OFFSET") {
		t.Errorf("totals query must not be paged:\n%s", totalSQL)
	}
	if !strings.Contains(totalSQL, "COUNT(DISTINCT d.customer_name)") {
		t.Errorf("totals query must count distinct customers:\n%s", totalSQL)
	}
	if len(args) != 0 {
		t.Errorf("unexpected args without a customer filter: %v", args)
	}
}

func TestDebtReportQueries_CustomerFilterAppliesToBoth(t *testing.T) {
	pageSQL, totalSQL, args := debtReportQueries(reports.DebtReportFilter{
		CustomerName: "Siti",
		Limit:        10,
	})

	want := "lower(d.customer_name) = lower($1)"
	if !strings.Contains(pageSQL, want) {
		t.Errorf("page query missing customer filter:\n%s", pageSQL)
	}
	if !strings.Contains(totalSQL, want) {
		t.Errorf("totals query missing customer filter:\n%s", totalSQL)
	}
	if len(args) != 1 || args[0] != "Siti" {
		t.Errorf("args = %v, want [Siti]", args)
	}
}
