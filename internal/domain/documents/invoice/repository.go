package invoice

import (
	"context"
	"time"

	"tokopos/internal/core/id"
	"tokopos/internal/domain"
)

// Repository defines operations over one invoice collection. The postgres
// implementation is constructed twice with different table pairs: once for
// the sales collection and once for the debtors collection.
type Repository interface {
	Create(ctx context.Context, inv *Invoice) error
	GetByID(ctx context.Context, invID id.ID) (*Invoice, error)

	// GetForUpdate locks the header row inside the current transaction.
	// Settlement and deletion use it so a concurrent actor racing on the
	// same record observes "not found" and aborts cleanly.
	GetForUpdate(ctx context.Context, invID id.ID) (*Invoice, error)

	GetLines(ctx context.Context, invID id.ID) ([]Line, error)
	SaveLines(ctx context.Context, invID id.ID, lines []Line) error

	// Delete removes the header and its lines.
	Delete(ctx context.Context, invID id.ID) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Invoice], error)
}

// ListFilter for filtering invoices.
type ListFilter struct {
	domain.ListFilter

	CustomerName string
	DateFrom     *time.Time
	DateTo       *time.Time
}
