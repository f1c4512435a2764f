// Package customer provides the customer directory, a named-entity registry.
// Transaction records reference customers by name only, not by ID.
package customer

import (
	"context"
	"strings"
	"time"

	"tokopos/internal/core/apperror"
	"tokopos/internal/core/id"
)

// Customer represents a directory entry.
type Customer struct {
	ID id.ID `db:"id" json:"id"`

	// Name is the display name; unique case-insensitively
	Name string `db:"name" json:"name"`

	Phone string `db:"phone" json:"phone,omitempty"`
	Notes string `db:"notes" json:"notes,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewCustomer creates a customer with a generated ID.
func NewCustomer(name string) *Customer {
	return &Customer{
		ID:        id.New(),
		Name:      strings.TrimSpace(name),
		CreatedAt: time.Now().UTC(),
	}
}

// Validate checks entity invariants.
func (c *Customer) Validate(ctx context.Context) error {
	if strings.TrimSpace(c.Name) == "" {
		return apperror.NewValidation("customer name is required").
			WithDetail("field", "name")
	}
	return nil
}
