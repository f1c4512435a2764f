package purchase

import (
	"context"
	"time"

	"tokopos/internal/core/id"
	"tokopos/internal/domain"
)

// Repository defines operations for purchase records.
// There is intentionally no Update or Delete: purchases are permanent.
type Repository interface {
	Create(ctx context.Context, p *Purchase) error
	GetByID(ctx context.Context, purchaseID id.ID) (*Purchase, error)
	GetLines(ctx context.Context, purchaseID id.ID) ([]Line, error)
	SaveLines(ctx context.Context, purchaseID id.ID, lines []Line) error
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Purchase], error)
}

// ListFilter for filtering purchases.
type ListFilter struct {
	domain.ListFilter

	SupplierName string
	DateFrom     *time.Time
	DateTo       *time.Time
}
