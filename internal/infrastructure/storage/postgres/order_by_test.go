package postgres

import (
	"testing"
)

func TestOrderByOrDefault(t *testing.T) {
	columns := []string{"id", "name", "date", "total"}

	tests := []struct {
		name    string
		orderBy string
		want    string
	}{
		{name: "empty falls back", orderBy: "", want: "date DESC"},
		{name: "bare column", orderBy: "name", want: "name"},
		{name: "column with direction", orderBy: "total desc", want: "total DESC"},
		{name: "unknown column falls back", orderBy: "password", want: "date DESC"},
		{name: "injection attempt falls back", orderBy: "name; DROP TABLE sales", want: "date DESC"},
		{name: "bad direction stripped", orderBy: "name sideways", want: "name"},
		{name: "too many tokens falls back", orderBy: "name asc nulls last", want: "date DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := orderByOrDefault(tt.orderBy, columns, "date DESC")
			if got != tt.want {
				t.Errorf("orderByOrDefault(%q) = %q, want %q", tt.orderBy, got, tt.want)
			}
		})
	}
}

func TestStockListQuery_Builds(t *testing.T) {
	repo := NewStockRepo(nil)

	q := repo.baseSelect()
	sql, _, err := q.ToSql()
	if err != nil {
		t.Fatalf("ToSql failed: %v", err)
	}
	want := "SELECT id, code, name, quantity, sell_price, wholesale_price, cost_price, category, deletion_mark, version, created_at, updated_at FROM stock_items"
	if sql != want {
		t.Errorf("SQL mismatch\nwant: %s\ngot:  %s", want, sql)
	}
}
