// Package purchase provides the stock receive record. A purchase is
// created once, increments ledger quantities and overwrites recorded cost
// prices, and never mutates afterwards: there is no edit or deletion path
// for purchases.
package purchase

import (
	"context"
	"strings"
	"time"

	"tokopos/internal/core/apperror"
	"tokopos/internal/core/id"
	"tokopos/internal/core/types"
)

// Purchase represents one stock receive event.
type Purchase struct {
	ID id.ID `db:"id" json:"id"`

	// Number is the business-facing purchase number
	Number string `db:"number" json:"number"`

	// SupplierName is free text, like customer names on invoices
	SupplierName string `db:"supplier_name" json:"supplierName"`

	// Date is the purchase date (UTC timestamp)
	Date time.Time `db:"date" json:"date"`

	// Total is the purchase total
	Total types.Money `db:"total" json:"total"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`

	Lines []Line `db:"-" json:"lines"`
}

// Line is one received item.
type Line struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ItemID   id.ID  `db:"item_id" json:"itemId"`
	ItemName string `db:"item_name" json:"itemName"`

	Quantity int64 `db:"quantity" json:"quantity"`

	// UnitCost becomes the ledger's new cost price for the item
	// (last-purchase-price-wins, no weighted averaging)
	UnitCost types.Money `db:"unit_cost" json:"unitCost"`
}

// Amount returns the line total.
func (l Line) Amount() types.Money {
	return l.UnitCost.Mul(types.NewMoneyFromInt(l.Quantity))
}

// NewPurchase creates a purchase with a generated ID.
func NewPurchase(supplierName string, date time.Time) *Purchase {
	return &Purchase{
		ID:           id.New(),
		SupplierName: strings.TrimSpace(supplierName),
		Date:         date.UTC(),
		CreatedAt:    time.Now().UTC(),
		Lines:        make([]Line, 0),
	}
}

// AddLine appends a line and recalculates the total.
func (p *Purchase) AddLine(itemID id.ID, itemName string, qty int64, unitCost types.Money) {
	line := Line{
		LineID:   id.New(),
		LineNo:   len(p.Lines) + 1,
		ItemID:   itemID,
		ItemName: itemName,
		Quantity: qty,
		UnitCost: unitCost,
	}
	p.Lines = append(p.Lines, line)
	p.recalculateTotal()
}

func (p *Purchase) recalculateTotal() {
	total := types.Zero()
	for _, line := range p.Lines {
		total = total.Add(line.Amount())
	}
	p.Total = total
}

// Validate checks record invariants.
func (p *Purchase) Validate(ctx context.Context) error {
	if p.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}

	if len(p.Lines) == 0 {
		return apperror.NewValidation("at least one line item is required").
			WithDetail("field", "lines")
	}

	for i, line := range p.Lines {
		if id.IsNil(line.ItemID) {
			return apperror.NewValidation("stock item reference is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.Quantity <= 0 {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.UnitCost.IsNegative() {
			return apperror.NewValidation("unit cost must not be negative").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}
