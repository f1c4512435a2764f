// Package stockitem provides the stock ledger catalog: one entry per SKU.
// The ledger is the single shared mutable resource in the system; sales,
// debts, purchases and reversals all mutate its quantities.
package stockitem

import (
	"context"
	"strings"
	"time"

	"tokopos/internal/core/apperror"
	"tokopos/internal/core/id"
	"tokopos/internal/core/types"
)

// StockItem represents one stock-keeping unit.
type StockItem struct {
	ID id.ID `db:"id" json:"id"`

	// Code is the business-facing product code (unique)
	Code string `db:"code" json:"code"`

	// Name is the display name
	Name string `db:"name" json:"name"`

	// Quantity is the current quantity on hand, in whole units.
	// Committed states keep it >= 0 on the debt path only; the paid sale
	// path issues blind decrements and may drive it negative.
	Quantity int64 `db:"quantity" json:"quantity"`

	// SellPrice is the retail unit price
	SellPrice types.Money `db:"sell_price" json:"sellPrice"`

	// WholesalePrice is the bulk unit price
	WholesalePrice types.Money `db:"wholesale_price" json:"wholesalePrice"`

	// CostPrice is the last recorded purchase cost per unit.
	// Overwritten by each purchase (last-purchase-price-wins).
	CostPrice types.Money `db:"cost_price" json:"costPrice"`

	// Category groups items for filtering
	Category string `db:"category" json:"category,omitempty"`

	// DeletionMark indicates soft-deleted item
	DeletionMark bool `db:"deletion_mark" json:"deletionMark"`

	// Version for optimistic locking on manual edits
	Version int `db:"version" json:"version"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewStockItem creates a stock item with a generated ID.
func NewStockItem(code, name string) *StockItem {
	now := time.Now().UTC()
	return &StockItem{
		ID:        id.New(),
		Code:      code,
		Name:      name,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch updates the timestamp and increments version.
func (s *StockItem) Touch() {
	s.UpdatedAt = time.Now().UTC()
	s.Version++
}

// Validate checks item invariants.
func (s *StockItem) Validate(ctx context.Context) error {
	if strings.TrimSpace(s.Code) == "" {
		return apperror.NewValidation("product code is required").
			WithDetail("field", "code")
	}
	if strings.TrimSpace(s.Name) == "" {
		return apperror.NewValidation("product name is required").
			WithDetail("field", "name")
	}
	if s.SellPrice.IsNegative() || s.WholesalePrice.IsNegative() || s.CostPrice.IsNegative() {
		return apperror.NewValidation("prices must not be negative").
			WithDetail("field", "prices")
	}
	return nil
}
