package customer

import (
	"context"
	"fmt"
	"strings"

	"tokopos/internal/core/apperror"
	"tokopos/internal/core/id"
	"tokopos/internal/domain"
	"tokopos/pkg/logger"
)

// Service provides business logic for the customer directory.
type Service struct {
	repo Repository
}

// NewService creates a new customer service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create inserts a new customer after checking name uniqueness.
func (s *Service) Create(ctx context.Context, c *Customer) error {
	if err := c.Validate(ctx); err != nil {
		return err
	}

	existing, err := s.repo.FindByName(ctx, c.Name)
	if err != nil && !apperror.IsNotFound(err) {
		return fmt.Errorf("check name: %w", err)
	}
	if existing != nil {
		return apperror.NewDuplicate("customer", "name", c.Name)
	}

	return s.repo.Create(ctx, c)
}

// EnsureByName creates a directory entry for name if one does not exist.
// Called by the debt path as a best-effort side channel: it runs before
// the debt's atomic unit and is not rolled back if the debt write fails.
func (s *Service) EnsureByName(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	existing, err := s.repo.FindByName(ctx, name)
	if err != nil && !apperror.IsNotFound(err) {
		return fmt.Errorf("lookup customer: %w", err)
	}
	if existing != nil {
		return nil
	}

	c := NewCustomer(name)
	if err := s.repo.Create(ctx, c); err != nil {
		return fmt.Errorf("create customer: %w", err)
	}

	logger.Info(ctx, "customer added to directory", "id", c.ID, "name", c.Name)
	return nil
}

// GetByID retrieves a customer.
func (s *Service) GetByID(ctx context.Context, customerID id.ID) (*Customer, error) {
	return s.repo.GetByID(ctx, customerID)
}

// Update modifies a customer entry.
func (s *Service) Update(ctx context.Context, c *Customer) error {
	if err := c.Validate(ctx); err != nil {
		return err
	}
	return s.repo.Update(ctx, c)
}

// Delete removes a customer entry. Historical transactions keep the
// customer name as free text, so nothing cascades.
func (s *Service) Delete(ctx context.Context, customerID id.ID) error {
	return s.repo.Delete(ctx, customerID)
}

// List retrieves customers with filtering.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Customer], error) {
	return s.repo.List(ctx, filter)
}
