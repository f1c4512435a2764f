package stockitem

import (
	"context"

	"tokopos/internal/core/id"
	"tokopos/internal/core/types"
	"tokopos/internal/domain"
)

// Repository defines operations for the stock ledger.
type Repository interface {
	Create(ctx context.Context, item *StockItem) error
	GetByID(ctx context.Context, itemID id.ID) (*StockItem, error)
	GetByCode(ctx context.Context, code string) (*StockItem, error)
	Update(ctx context.Context, item *StockItem) error

	// Delete soft-deletes an item. Historical transaction lines keep
	// referencing it by ID (weak reference, no cascade).
	Delete(ctx context.Context, itemID id.ID) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*StockItem], error)

	// GetForUpdate returns the item with a row lock. Must be called inside
	// a transaction; used by the orchestrator so all ledger reads in an
	// atomic unit see a consistent snapshot.
	GetForUpdate(ctx context.Context, itemID id.ID) (*StockItem, error)

	// ExistingIDs returns the subset of itemIDs that resolve to a ledger
	// entry. The sale path uses it to validate carts before writing.
	ExistingIDs(ctx context.Context, itemIDs []id.ID) (map[id.ID]bool, error)

	// AdjustQuantity applies a relative quantity change
	// (UPDATE ... SET quantity = quantity + delta). Negative delta
	// decrements without a floor check.
	AdjustQuantity(ctx context.Context, itemID id.ID, delta int64) error

	// AdjustQuantities applies several relative changes in one batched
	// round trip. Same blind-decrement semantics as AdjustQuantity.
	AdjustQuantities(ctx context.Context, deltas []QuantityDelta) error

	// SetCostPrice overwrites the recorded unit cost.
	SetCostPrice(ctx context.Context, itemID id.ID, cost types.Money) error
}

// QuantityDelta is one relative quantity change in a batched adjustment.
type QuantityDelta struct {
	ItemID id.ID
	Delta  int64
}

// ListFilter for filtering stock items.
type ListFilter struct {
	domain.ListFilter

	Category string
}
