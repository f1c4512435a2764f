package customer

import (
	"context"

	"tokopos/internal/core/id"
	"tokopos/internal/domain"
)

// Repository defines operations for the customer directory.
type Repository interface {
	Create(ctx context.Context, c *Customer) error
	GetByID(ctx context.Context, customerID id.ID) (*Customer, error)

	// FindByName performs a case-insensitive exact-name lookup.
	FindByName(ctx context.Context, name string) (*Customer, error)

	Update(ctx context.Context, c *Customer) error
	Delete(ctx context.Context, customerID id.ID) error
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Customer], error)
}
