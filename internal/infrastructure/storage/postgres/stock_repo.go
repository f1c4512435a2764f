package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tokopos/internal/core/apperror"
	"tokopos/internal/core/id"
	"tokopos/internal/core/types"
	"tokopos/internal/domain"
	"tokopos/internal/domain/catalog/stockitem"
)

// Compile-time check.
var _ stockitem.Repository = (*StockRepo)(nil)

var stockColumns = []string{
	"id", "code", "name", "quantity",
	"sell_price", "wholesale_price", "cost_price",
	"category", "deletion_mark", "version",
	"created_at", "updated_at",
}

// StockRepo is the PostgreSQL stock ledger repository.
type StockRepo struct {
	txManager *TxManager
	batch     *BatchExecutor
}

// NewStockRepo creates the stock repository.
func NewStockRepo(txManager *TxManager) *StockRepo {
	return &StockRepo{
		txManager: txManager,
		batch:     NewBatchExecutor(txManager),
	}
}

func (r *StockRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *StockRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder().Select(stockColumns...).From("stock_items")
}

// Create inserts a new stock item.
func (r *StockRepo) Create(ctx context.Context, item *stockitem.StockItem) error {
	q := r.builder().
		Insert("stock_items").
		Columns(stockColumns...).
		Values(
			item.ID, item.Code, item.Name, item.Quantity,
			item.SellPrice, item.WholesalePrice, item.CostPrice,
			item.Category, item.DeletionMark, item.Version,
			item.CreatedAt, item.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert stock item: %w", err)
	}
	return nil
}

// GetByID retrieves an item by ID.
func (r *StockRepo) GetByID(ctx context.Context, itemID id.ID) (*stockitem.StockItem, error) {
	return r.getOne(ctx, squirrel.Eq{"id": itemID}, itemID.String(), false)
}

// GetByCode retrieves a live item by product code.
func (r *StockRepo) GetByCode(ctx context.Context, code string) (*stockitem.StockItem, error) {
	item := &stockitem.StockItem{}

	q := r.baseSelect().
		Where(squirrel.Eq{"code": code}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, item, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("stock item", code)
		}
		return nil, fmt.Errorf("get by code: %w", err)
	}
	return item, nil
}

// GetForUpdate retrieves an item with a row lock. Must run inside a
// transaction.
func (r *StockRepo) GetForUpdate(ctx context.Context, itemID id.ID) (*stockitem.StockItem, error) {
	if r.txManager.GetTx(ctx) == nil {
		return nil, fmt.Errorf("GetForUpdate requires transaction context")
	}
	return r.getOne(ctx, squirrel.Eq{"id": itemID}, itemID.String(), true)
}

func (r *StockRepo) getOne(ctx context.Context, where squirrel.Eq, key string, forUpdate bool) (*stockitem.StockItem, error) {
	item := &stockitem.StockItem{}

	q := r.baseSelect().Where(where).Limit(1)
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, item, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("stock item", key)
		}
		return nil, fmt.Errorf("get stock item: %w", err)
	}
	return item, nil
}

// Update modifies an item with optimistic locking on version.
func (r *StockRepo) Update(ctx context.Context, item *stockitem.StockItem) error {
	q := r.builder().
		Update("stock_items").
		Set("code", item.Code).
		Set("name", item.Name).
		Set("quantity", item.Quantity).
		Set("sell_price", item.SellPrice).
		Set("wholesale_price", item.WholesalePrice).
		Set("cost_price", item.CostPrice).
		Set("category", item.Category).
		Set("deletion_mark", item.DeletionMark).
		Set("updated_at", item.UpdatedAt).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": item.ID}).
		Where(squirrel.Eq{"version": item.Version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update stock item: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("stock item", item.ID)
	}
	return nil
}

// Delete soft-deletes an item. Transaction lines keep referencing it by ID.
func (r *StockRepo) Delete(ctx context.Context, itemID id.ID) error {
	q := r.builder().
		Update("stock_items").
		Set("deletion_mark", true).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": itemID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete stock item: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("stock item", itemID)
	}
	return nil
}

// List retrieves items with filtering and pagination.
func (r *StockRepo) List(ctx context.Context, filter stockitem.ListFilter) (domain.ListResult[*stockitem.StockItem], error) {
	result := domain.ListResult[*stockitem.StockItem]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect()

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"code": pattern},
		})
	}
	if filter.Category != "" {
		q = q.Where(squirrel.Eq{"category": filter.Category})
	}

	// Count total (before pagination)
	countQ := r.builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	q = q.OrderBy(orderByOrDefault(filter.OrderBy, stockColumns, "name"))
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
		return result, fmt.Errorf("list stock items: %w", err)
	}
	return result, nil
}

// ExistingIDs returns the subset of itemIDs present in the ledger.
func (r *StockRepo) ExistingIDs(ctx context.Context, itemIDs []id.ID) (map[id.ID]bool, error) {
	out := make(map[id.ID]bool, len(itemIDs))
	if len(itemIDs) == 0 {
		return out, nil
	}

	q := r.builder().
		Select("id").
		From("stock_items").
		Where(squirrel.Eq{"id": itemIDs})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.txManager.GetQuerier(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query existing ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var itemID id.ID
		if err := rows.Scan(&itemID); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		out[itemID] = true
	}
	return out, rows.Err()
}

const adjustQuantitySQL = `
	UPDATE stock_items
	SET quantity = quantity + $2, updated_at = now()
	WHERE id = $1`

// AdjustQuantity applies one relative quantity change. No floor check:
// committed quantities may go negative on the paid sale path.
func (r *StockRepo) AdjustQuantity(ctx context.Context, itemID id.ID, delta int64) error {
	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, adjustQuantitySQL, itemID, delta)
	if err != nil {
		return fmt.Errorf("adjust quantity: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("stock item", itemID)
	}
	return nil
}

// AdjustQuantities applies all deltas in a single batched round trip.
func (r *StockRepo) AdjustQuantities(ctx context.Context, deltas []stockitem.QuantityDelta) error {
	if len(deltas) == 0 {
		return nil
	}

	queries := make([]BatchQuery, 0, len(deltas))
	for _, d := range deltas {
		queries = append(queries, BatchQuery{
			SQL:  adjustQuantitySQL,
			Args: []any{d.ItemID, d.Delta},
		})
	}
	return r.batch.ExecuteBatch(ctx, queries)
}

// SetCostPrice overwrites the recorded unit cost.
func (r *StockRepo) SetCostPrice(ctx context.Context, itemID id.ID, cost types.Money) error {
	q := r.builder().
		Update("stock_items").
		Set("cost_price", cost).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": itemID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set cost price: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("stock item", itemID)
	}
	return nil
}
