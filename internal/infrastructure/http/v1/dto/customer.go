package dto

import (
	"time"

	"tokopos/internal/domain/catalog/customer"
)

// --- Request DTOs ---

type CreateCustomerRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone,omitempty"`
	Notes string `json:"notes,omitempty"`
}

func (r *CreateCustomerRequest) ToEntity() *customer.Customer {
	c := customer.NewCustomer(r.Name)
	c.Phone = r.Phone
	c.Notes = r.Notes
	return c
}

type UpdateCustomerRequest struct {
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`
	Notes *string `json:"notes,omitempty"`
}

func (r *UpdateCustomerRequest) ApplyTo(c *customer.Customer) {
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.Phone != nil {
		c.Phone = *r.Phone
	}
	if r.Notes != nil {
		c.Notes = *r.Notes
	}
}

// --- Response DTOs ---

type CustomerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func FromCustomer(c *customer.Customer) *CustomerResponse {
	return &CustomerResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		Phone:     c.Phone,
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
	}
}

func FromCustomers(cs []*customer.Customer) []*CustomerResponse {
	out := make([]*CustomerResponse, len(cs))
	for i, c := range cs {
		out[i] = FromCustomer(c)
	}
	return out
}
