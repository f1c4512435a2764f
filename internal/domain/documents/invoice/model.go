// Package invoice provides the transaction record shared by sales and
// debtors. A sale is an invoice with status=paid stored in the sales
// collection; a debtor is the same shape with status=unpaid stored in the
// debtors collection. A debtor is later either settled (migrated into a
// sale) or deleted with stock reversal; a sale can only be deleted.
package invoice

import (
	"context"
	"strings"
	"time"

	"tokopos/internal/core/apperror"
	"tokopos/internal/core/id"
	"tokopos/internal/core/types"
)

// PriceType tags which price list a line item was sold at.
type PriceType string

const (
	PriceRetail    PriceType = "retail"
	PriceWholesale PriceType = "wholesale"
	PriceCustom    PriceType = "custom"
)

// Invoice is a transaction record: one commercial event with line items.
type Invoice struct {
	ID id.ID `db:"id" json:"id"`

	// Number is the business-facing invoice number (date-scoped sequence)
	Number string `db:"number" json:"number"`

	// CustomerName is free text, not a foreign key into the directory
	CustomerName string `db:"customer_name" json:"customerName"`

	// Date is the sale date, stored as UTC timestamp; calendar dates are
	// converted at the HTTP edge
	Date time.Time `db:"date" json:"date"`

	// Total is the invoice total as entered at checkout
	Total types.Money `db:"total" json:"total"`

	// Status routes lifecycle transitions: paid or unpaid
	Status Status `db:"status" json:"status"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`

	// Lines is the ordered line-item list
	Lines []Line `db:"-" json:"lines"`
}

// Line is one line item, referencing a stock item by ID at transaction time.
// The reference is weak: deleting the stock item later leaves the line
// intact, and reversals skip vanished items.
type Line struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ItemID id.ID `db:"item_id" json:"itemId"`

	// ItemName is a snapshot of the stock item name at transaction time
	ItemName string `db:"item_name" json:"itemName"`

	Quantity  int64       `db:"quantity" json:"quantity"`
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`
	PriceType PriceType   `db:"price_type" json:"priceType"`

	// UnitCost is the item's cost price captured at sale time; profit is
	// always computed from this snapshot, never recomputed from the ledger
	UnitCost types.Money `db:"unit_cost" json:"unitCost"`
}

// Profit returns the margin contributed by this line:
// (unit price - captured unit cost) * quantity.
func (l Line) Profit() types.Money {
	return l.UnitPrice.Sub(l.UnitCost).Mul(types.NewMoneyFromInt(l.Quantity))
}

// Amount returns the line total.
func (l Line) Amount() types.Money {
	return l.UnitPrice.Mul(types.NewMoneyFromInt(l.Quantity))
}

// NewInvoice creates an invoice with a generated ID.
func NewInvoice(customerName string, date time.Time, status Status) *Invoice {
	return &Invoice{
		ID:           id.New(),
		CustomerName: strings.TrimSpace(customerName),
		Date:         date.UTC(),
		Status:       status,
		CreatedAt:    time.Now().UTC(),
		Lines:        make([]Line, 0),
	}
}

// AddLine appends a line and recalculates the total.
func (inv *Invoice) AddLine(itemID id.ID, itemName string, qty int64, unitPrice types.Money, priceType PriceType, unitCost types.Money) {
	line := Line{
		LineID:    id.New(),
		LineNo:    len(inv.Lines) + 1,
		ItemID:    itemID,
		ItemName:  itemName,
		Quantity:  qty,
		UnitPrice: unitPrice,
		PriceType: priceType,
		UnitCost:  unitCost,
	}
	inv.Lines = append(inv.Lines, line)
	inv.RecalculateTotal()
}

// RecalculateTotal recomputes the invoice total from the line amounts.
// Callers that rewrite line prices after construction must call it again.
func (inv *Invoice) RecalculateTotal() {
	total := types.Zero()
	for _, line := range inv.Lines {
		total = total.Add(line.Amount())
	}
	inv.Total = total
}

// Profit sums profit over all lines.
func (inv *Invoice) Profit() types.Money {
	total := types.Zero()
	for _, line := range inv.Lines {
		total = total.Add(line.Profit())
	}
	return total
}

// Validate checks record invariants. A cart with no lines or a line with a
// missing SKU reference is rejected before any write is attempted.
func (inv *Invoice) Validate(ctx context.Context) error {
	if !inv.Status.IsValid() {
		return apperror.NewInvalidStatus(string(inv.Status))
	}

	if inv.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}

	if len(inv.Lines) == 0 {
		return apperror.NewValidation("at least one line item is required").
			WithDetail("field", "lines")
	}

	for i, line := range inv.Lines {
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
		if line.UnitPrice.IsNegative() {
			return apperror.NewValidation("unit price must not be negative").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}
