package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tokopos/internal/core/apperror"
	"tokopos/internal/core/id"
	"tokopos/internal/domain"
	"tokopos/internal/domain/documents/invoice"
)

// Compile-time check.
var _ invoice.Repository = (*InvoiceRepo)(nil)

var invoiceColumns = []string{
	"id", "number", "customer_name", "date", "total", "status", "created_at",
}

var invoiceLineColumns = []string{
	"line_id", "line_no", "item_id", "item_name",
	"quantity", "unit_price", "price_type", "unit_cost",
}

// InvoiceRepo is the PostgreSQL invoice repository. It is constructed once
// per collection: NewSalesRepo over the sales tables, NewDebtorsRepo over
// the debtors tables. Both collections share the invoice shape.
type InvoiceRepo struct {
	txManager *TxManager
	entity    string
	headerTbl string
	linesTbl  string
	inserter  *BatchInserter
}

// NewSalesRepo creates the repository over the sales collection.
func NewSalesRepo(txManager *TxManager) *InvoiceRepo {
	return newInvoiceRepo(txManager, "sale", "sales", "sale_lines")
}

// NewDebtorsRepo creates the repository over the debtors collection.
func NewDebtorsRepo(txManager *TxManager) *InvoiceRepo {
	return newInvoiceRepo(txManager, "debtor", "debtors", "debtor_lines")
}

func newInvoiceRepo(txManager *TxManager, entity, headerTbl, linesTbl string) *InvoiceRepo {
	return &InvoiceRepo{
		txManager: txManager,
		entity:    entity,
		headerTbl: headerTbl,
		linesTbl:  linesTbl,
		inserter:  NewBatchInserter(txManager),
	}
}

func (r *InvoiceRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *InvoiceRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder().Select(invoiceColumns...).From(r.headerTbl)
}

// Create inserts the invoice header.
func (r *InvoiceRepo) Create(ctx context.Context, inv *invoice.Invoice) error {
	q := r.builder().
		Insert(r.headerTbl).
		Columns(invoiceColumns...).
		Values(inv.ID, inv.Number, inv.CustomerName, inv.Date, inv.Total, inv.Status, inv.CreatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", r.entity, err)
	}
	return nil
}

// GetByID retrieves the header without lines.
func (r *InvoiceRepo) GetByID(ctx context.Context, invID id.ID) (*invoice.Invoice, error) {
	return r.getOne(ctx, invID, false)
}

// GetForUpdate locks the header row inside the current transaction.
func (r *InvoiceRepo) GetForUpdate(ctx context.Context, invID id.ID) (*invoice.Invoice, error) {
	if r.txManager.GetTx(ctx) == nil {
		return nil, fmt.Errorf("GetForUpdate requires transaction context")
	}
	return r.getOne(ctx, invID, true)
}

func (r *InvoiceRepo) getOne(ctx context.Context, invID id.ID, forUpdate bool) (*invoice.Invoice, error) {
	inv := &invoice.Invoice{}

	q := r.baseSelect().Where(squirrel.Eq{"id": invID}).Limit(1)
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, inv, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(r.entity, invID.String())
		}
		return nil, fmt.Errorf("get %s: %w", r.entity, err)
	}
	return inv, nil
}

// GetLines retrieves line items in order.
func (r *InvoiceRepo) GetLines(ctx context.Context, invID id.ID) ([]invoice.Line, error) {
	q := r.builder().
		Select(invoiceLineColumns...).
		From(r.linesTbl).
		Where(squirrel.Eq{"invoice_id": invID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []invoice.Line
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get %s lines: %w", r.entity, err)
	}
	return lines, nil
}

// SaveLines replaces the line set: delete then bulk insert via COPY. Must
// run inside a transaction.
func (r *InvoiceRepo) SaveLines(ctx context.Context, invID id.ID, lines []invoice.Line) error {
	delQ := r.builder().Delete(r.linesTbl).Where(squirrel.Eq{"invoice_id": invID})
	sql, args, err := delQ.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete %s lines: %w", r.entity, err)
	}

	if len(lines) == 0 {
		return nil
	}

	columns := append([]string{"invoice_id"}, invoiceLineColumns...)
	rows := make([][]any, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, []any{
			invID, line.LineID, line.LineNo, line.ItemID, line.ItemName,
			line.Quantity, line.UnitPrice, line.PriceType, line.UnitCost,
		})
	}

	if _, err := r.inserter.CopyFromSlice(ctx, r.linesTbl, columns, rows); err != nil {
		return fmt.Errorf("insert %s lines: %w", r.entity, err)
	}
	return nil
}

// Delete removes the header and its lines.
func (r *InvoiceRepo) Delete(ctx context.Context, invID id.ID) error {
	querier := r.txManager.GetQuerier(ctx)

	delLines := r.builder().Delete(r.linesTbl).Where(squirrel.Eq{"invoice_id": invID})
	sql, args, err := delLines.ToSql()
	if err != nil {
		return fmt.Errorf("build delete lines: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete %s lines: %w", r.entity, err)
	}

	delHeader := r.builder().Delete(r.headerTbl).Where(squirrel.Eq{"id": invID})
	sql, args, err = delHeader.ToSql()
	if err != nil {
		return fmt.Errorf("build delete header: %w", err)
	}
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.entity, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.entity, invID)
	}
	return nil
}

// List retrieves headers with filtering and pagination. Lines are loaded
// separately on demand.
func (r *InvoiceRepo) List(ctx context.Context, filter invoice.ListFilter) (domain.ListResult[*invoice.Invoice], error) {
	result := domain.ListResult[*invoice.Invoice]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect()

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"number": pattern},
			squirrel.ILike{"customer_name": pattern},
		})
	}
	if filter.CustomerName != "" {
		q = q.Where(squirrel.ILike{"customer_name": filter.CustomerName})
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

	q = q.OrderBy(orderByOrDefault(filter.OrderBy, invoiceColumns, "date DESC"))
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
		return result, fmt.Errorf("list %ss: %w", r.entity, err)
	}
	return result, nil
}
