package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tokopos/internal/core/apperror"
	"tokopos/internal/core/id"
	"tokopos/internal/domain"
	"tokopos/internal/domain/documents/purchase"
)

// Compile-time check.
var _ purchase.Repository = (*PurchaseRepo)(nil)

var purchaseColumns = []string{
	"id", "number", "supplier_name", "date", "total", "created_at",
}

var purchaseLineColumns = []string{
	"line_id", "line_no", "item_id", "item_name", "quantity", "unit_cost",
}

// PurchaseRepo is the PostgreSQL purchase repository. Purchases are
// append-only: there is no update or delete statement here.
type PurchaseRepo struct {
	txManager *TxManager
	inserter  *BatchInserter
}

// NewPurchaseRepo creates the purchase repository.
func NewPurchaseRepo(txManager *TxManager) *PurchaseRepo {
	return &PurchaseRepo{
		txManager: txManager,
		inserter:  NewBatchInserter(txManager),
	}
}

func (r *PurchaseRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserts the purchase header.
func (r *PurchaseRepo) Create(ctx context.Context, p *purchase.Purchase) error {
	q := r.builder().
		Insert("purchases").
		Columns(purchaseColumns...).
		Values(p.ID, p.Number, p.SupplierName, p.Date, p.Total, p.CreatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert purchase: %w", err)
	}
	return nil
}

// GetByID retrieves the header without lines.
func (r *PurchaseRepo) GetByID(ctx context.Context, purchaseID id.ID) (*purchase.Purchase, error) {
	p := &purchase.Purchase{}

	q := r.builder().
		Select(purchaseColumns...).
		From("purchases").
		Where(squirrel.Eq{"id": purchaseID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("purchase", purchaseID.String())
		}
		return nil, fmt.Errorf("get purchase: %w", err)
	}
	return p, nil
}

// GetLines retrieves line items in order.
func (r *PurchaseRepo) GetLines(ctx context.Context, purchaseID id.ID) ([]purchase.Line, error) {
	q := r.builder().
		Select(purchaseLineColumns...).
		From("purchase_lines").
		Where(squirrel.Eq{"purchase_id": purchaseID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []purchase.Line
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get purchase lines: %w", err)
	}
	return lines, nil
}

// SaveLines bulk-inserts line items via COPY. Must run inside a
// transaction. Purchases never rewrite lines, so there is no delete phase.
func (r *PurchaseRepo) SaveLines(ctx context.Context, purchaseID id.ID, lines []purchase.Line) error {
	if len(lines) == 0 {
		return nil
	}

	columns := append([]string{"purchase_id"}, purchaseLineColumns...)
	rows := make([][]any, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, []any{
			purchaseID, line.LineID, line.LineNo, line.ItemID, line.ItemName,
			line.Quantity, line.UnitCost,
		})
	}

	if _, err := r.inserter.CopyFromSlice(ctx, "purchase_lines", columns, rows); err != nil {
		return fmt.Errorf("insert purchase lines: %w", err)
	}
	return nil
}

// List retrieves headers with filtering and pagination.
func (r *PurchaseRepo) List(ctx context.Context, filter purchase.ListFilter) (domain.ListResult[*purchase.Purchase], error) {
	result := domain.ListResult[*purchase.Purchase]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.builder().Select(purchaseColumns...).From("purchases")

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"number": pattern},
			squirrel.ILike{"supplier_name": pattern},
		})
	}
	if filter.SupplierName != "" {
		q = q.Where(squirrel.ILike{"supplier_name": filter.SupplierName})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.Lt{"date": *filter.DateTo})
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

	q = q.OrderBy(orderByOrDefault(filter.OrderBy, purchaseColumns, "date DESC"))
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
		return result, fmt.Errorf("list purchases: %w", err)
	}
	return result, nil
}
