package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tokopos/internal/core/apperror"
	"tokopos/internal/core/id"
	"tokopos/internal/domain"
	"tokopos/internal/domain/catalog/customer"
)

// Compile-time check.
var _ customer.Repository = (*CustomerRepo)(nil)

var customerColumns = []string{"id", "name", "phone", "notes", "created_at"}

// CustomerRepo is the PostgreSQL customer directory repository.
type CustomerRepo struct {
	txManager *TxManager
}

// NewCustomerRepo creates the customer repository.
func NewCustomerRepo(txManager *TxManager) *CustomerRepo {
	return &CustomerRepo{txManager: txManager}
}

func (r *CustomerRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserts a directory entry.
func (r *CustomerRepo) Create(ctx context.Context, c *customer.Customer) error {
	q := r.builder().
		Insert("customers").
		Columns(customerColumns...).
		Values(c.ID, c.Name, c.Phone, c.Notes, c.CreatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// GetByID retrieves an entry by ID.
func (r *CustomerRepo) GetByID(ctx context.Context, customerID id.ID) (*customer.Customer, error) {
	c := &customer.Customer{}

	q := r.builder().
		Select(customerColumns...).
		From("customers").
		Where(squirrel.Eq{"id": customerID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, c, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("customer", customerID.String())
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

// FindByName performs a case-insensitive exact-name lookup.
func (r *CustomerRepo) FindByName(ctx context.Context, name string) (*customer.Customer, error) {
	c := &customer.Customer{}

	q := r.builder().
		Select(customerColumns...).
		From("customers").
		Where(squirrel.Expr("lower(name) = lower(?)", name)).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, c, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("customer", name)
		}
		return nil, fmt.Errorf("find customer by name: %w", err)
	}
	return c, nil
}

// Update modifies an entry.
func (r *CustomerRepo) Update(ctx context.Context, c *customer.Customer) error {
	q := r.builder().
		Update("customers").
		Set("name", c.Name).
		Set("phone", c.Phone).
		Set("notes", c.Notes).
		Where(squirrel.Eq{"id": c.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("customer", c.ID)
	}
	return nil
}

// Delete removes an entry. Transaction records keep their free-text
// customer names.
func (r *CustomerRepo) Delete(ctx context.Context, customerID id.ID) error {
	q := r.builder().Delete("customers").Where(squirrel.Eq{"id": customerID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("customer", customerID)
	}
	return nil
}

// List retrieves entries with filtering and pagination.
func (r *CustomerRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*customer.Customer], error) {
	result := domain.ListResult[*customer.Customer]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.builder().Select(customerColumns...).From("customers")

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"phone": pattern},
		})
	}

	countQ := r.builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	q = q.OrderBy(orderByOrDefault(filter.OrderBy, customerColumns, "name"))
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list customers: %w", err)
	}
	return result, nil
}
