package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokopos/internal/core/apperror"
	"tokopos/internal/core/id"
	"tokopos/internal/core/types"
	"tokopos/internal/domain"
	"tokopos/internal/domain/catalog/customer"
	"tokopos/internal/domain/catalog/stockitem"
	"tokopos/internal/domain/documents/invoice"
	"tokopos/internal/domain/documents/purchase"
	"tokopos/internal/feed"
)

// --- mocks ---

type mockTxManager struct {
	serializableCalls int
	plainCalls        int
}

func (m *mockTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.plainCalls++
	return fn(ctx)
}

func (m *mockTxManager) RunSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	m.serializableCalls++
	return fn(ctx)
}

type mockStockRepo struct {
	items map[id.ID]*stockitem.StockItem
}

func newMockStockRepo() *mockStockRepo {
	return &mockStockRepo{items: make(map[id.ID]*stockitem.StockItem)}
}

func (m *mockStockRepo) add(name string, qty int64, cost types.Money) id.ID {
	item := stockitem.NewStockItem("", name)
	item.Quantity = qty
	item.CostPrice = cost
	m.items[item.ID] = item
	return item.ID
}

func (m *mockStockRepo) Create(ctx context.Context, item *stockitem.StockItem) error {
	m.items[item.ID] = item
	return nil
}

func (m *mockStockRepo) GetByID(ctx context.Context, itemID id.ID) (*stockitem.StockItem, error) {
	item, ok := m.items[itemID]
	if !ok {
		return nil, apperror.NewNotFound("stock item", itemID)
	}
	return item, nil
}

func (m *mockStockRepo) GetByCode(ctx context.Context, code string) (*stockitem.StockItem, error) {
	return nil, apperror.NewNotFound("stock item", code)
}

func (m *mockStockRepo) Update(ctx context.Context, item *stockitem.StockItem) error {
	m.items[item.ID] = item
	return nil
}

func (m *mockStockRepo) Delete(ctx context.Context, itemID id.ID) error {
	delete(m.items, itemID)
	return nil
}

func (m *mockStockRepo) List(ctx context.Context, filter stockitem.ListFilter) (domain.ListResult[*stockitem.StockItem], error) {
	return domain.ListResult[*stockitem.StockItem]{}, nil
}

func (m *mockStockRepo) GetForUpdate(ctx context.Context, itemID id.ID) (*stockitem.StockItem, error) {
	return m.GetByID(ctx, itemID)
}

func (m *mockStockRepo) ExistingIDs(ctx context.Context, itemIDs []id.ID) (map[id.ID]bool, error) {
	out := make(map[id.ID]bool, len(itemIDs))
	for _, itemID := range itemIDs {
		if _, ok := m.items[itemID]; ok {
			out[itemID] = true
		}
	}
	return out, nil
}

func (m *mockStockRepo) AdjustQuantity(ctx context.Context, itemID id.ID, delta int64) error {
	item, ok := m.items[itemID]
	if !ok {
		return apperror.NewNotFound("stock item", itemID)
	}
	item.Quantity += delta
	return nil
}

func (m *mockStockRepo) AdjustQuantities(ctx context.Context, deltas []stockitem.QuantityDelta) error {
	for _, d := range deltas {
		if err := m.AdjustQuantity(ctx, d.ItemID, d.Delta); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockStockRepo) SetCostPrice(ctx context.Context, itemID id.ID, cost types.Money) error {
	item, ok := m.items[itemID]
	if !ok {
		return apperror.NewNotFound("stock item", itemID)
	}
	item.CostPrice = cost
	return nil
}

type mockInvoiceRepo struct {
	headers map[id.ID]*invoice.Invoice
	lines   map[id.ID][]invoice.Line
	creates int
}

func newMockInvoiceRepo() *mockInvoiceRepo {
	return &mockInvoiceRepo{
		headers: make(map[id.ID]*invoice.Invoice),
		lines:   make(map[id.ID][]invoice.Line),
	}
}

func (m *mockInvoiceRepo) Create(ctx context.Context, inv *invoice.Invoice) error {
	m.creates++
	cp := *inv
	m.headers[inv.ID] = &cp
	return nil
}

func (m *mockInvoiceRepo) GetByID(ctx context.Context, invID id.ID) (*invoice.Invoice, error) {
	inv, ok := m.headers[invID]
	if !ok {
		return nil, apperror.NewNotFound("transaction", invID)
	}
	return inv, nil
}

func (m *mockInvoiceRepo) GetForUpdate(ctx context.Context, invID id.ID) (*invoice.Invoice, error) {
	return m.GetByID(ctx, invID)
}

func (m *mockInvoiceRepo) GetLines(ctx context.Context, invID id.ID) ([]invoice.Line, error) {
	return m.lines[invID], nil
}

func (m *mockInvoiceRepo) SaveLines(ctx context.Context, invID id.ID, lines []invoice.Line) error {
	m.lines[invID] = append([]invoice.Line(nil), lines...)
	return nil
}

func (m *mockInvoiceRepo) Delete(ctx context.Context, invID id.ID) error {
	if _, ok := m.headers[invID]; !ok {
		return apperror.NewNotFound("transaction", invID)
	}
	delete(m.headers, invID)
	delete(m.lines, invID)
	return nil
}

func (m *mockInvoiceRepo) List(ctx context.Context, filter invoice.ListFilter) (domain.ListResult[*invoice.Invoice], error) {
	return domain.ListResult[*invoice.Invoice]{}, nil
}

type mockPurchaseRepo struct {
	headers map[id.ID]*purchase.Purchase
	lines   map[id.ID][]purchase.Line
}

func newMockPurchaseRepo() *mockPurchaseRepo {
	return &mockPurchaseRepo{
		headers: make(map[id.ID]*purchase.Purchase),
		lines:   make(map[id.ID][]purchase.Line),
	}
}

func (m *mockPurchaseRepo) Create(ctx context.Context, p *purchase.Purchase) error {
	cp := *p
	m.headers[p.ID] = &cp
	return nil
}

func (m *mockPurchaseRepo) GetByID(ctx context.Context, purchaseID id.ID) (*purchase.Purchase, error) {
	p, ok := m.headers[purchaseID]
	if !ok {
		return nil, apperror.NewNotFound("purchase", purchaseID)
	}
	return p, nil
}

func (m *mockPurchaseRepo) GetLines(ctx context.Context, purchaseID id.ID) ([]purchase.Line, error) {
	return m.lines[purchaseID], nil
}

func (m *mockPurchaseRepo) SaveLines(ctx context.Context, purchaseID id.ID, lines []purchase.Line) error {
	m.lines[purchaseID] = append([]purchase.Line(nil), lines...)
	return nil
}

func (m *mockPurchaseRepo) List(ctx context.Context, filter purchase.ListFilter) (domain.ListResult[*purchase.Purchase], error) {
	return domain.ListResult[*purchase.Purchase]{}, nil
}

type mockCustomerRepo struct {
	byName  map[string]*customer.Customer
	failAll bool
}

func newMockCustomerRepo() *mockCustomerRepo {
	return &mockCustomerRepo{byName: make(map[string]*customer.Customer)}
}

func (m *mockCustomerRepo) Create(ctx context.Context, c *customer.Customer) error {
	if m.failAll {
		return apperror.NewInternal(assert.AnError)
	}
	m.byName[c.Name] = c
	return nil
}

func (m *mockCustomerRepo) GetByID(ctx context.Context, customerID id.ID) (*customer.Customer, error) {
	return nil, apperror.NewNotFound("customer", customerID)
}

func (m *mockCustomerRepo) FindByName(ctx context.Context, name string) (*customer.Customer, error) {
	if m.failAll {
		return nil, apperror.NewInternal(assert.AnError)
	}
	if c, ok := m.byName[name]; ok {
		return c, nil
	}
	return nil, apperror.NewNotFound("customer", name)
}

func (m *mockCustomerRepo) Update(ctx context.Context, c *customer.Customer) error { return nil }

func (m *mockCustomerRepo) Delete(ctx context.Context, customerID id.ID) error { return nil }

func (m *mockCustomerRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*customer.Customer], error) {
	return domain.ListResult[*customer.Customer]{}, nil
}

type mockPublisher struct {
	events []feed.Event
}

func (m *mockPublisher) Publish(event feed.Event) {
	m.events = append(m.events, event)
}

// --- fixture ---

type fixture struct {
	svc       *Service
	txm       *mockTxManager
	stock     *mockStockRepo
	sales     *mockInvoiceRepo
	debtors   *mockInvoiceRepo
	purchases *mockPurchaseRepo
	customers *mockCustomerRepo
	publisher *mockPublisher
}

func newFixture() *fixture {
	f := &fixture{
		txm:       &mockTxManager{},
		stock:     newMockStockRepo(),
		sales:     newMockInvoiceRepo(),
		debtors:   newMockInvoiceRepo(),
		purchases: newMockPurchaseRepo(),
		customers: newMockCustomerRepo(),
		publisher: &mockPublisher{},
	}
	f.svc = NewService(Config{
		TxManager:    f.txm,
		StockRepo:    f.stock,
		SalesRepo:    f.sales,
		DebtorsRepo:  f.debtors,
		PurchaseRepo: f.purchases,
		Customers:    customer.NewService(f.customers),
		Publisher:    f.publisher,
	})
	return f
}

var testDate = time.Date(2026, time.August, 15, 0, 0, 0, 0, time.UTC)

func saleOf(itemID id.ID, name string, qty int64, price types.Money) *invoice.Invoice {
	inv := invoice.NewInvoice("Budi", testDate, invoice.StatusPaid)
	inv.Number = "INV-2026-08-00001"
	inv.AddLine(itemID, name, qty, price, invoice.PriceRetail, types.NewMoneyFromInt(100))
	return inv
}

// --- sales ---

func TestRecordSale_DecrementsStock(t *testing.T) {
	f := newFixture()
	itemID := f.stock.add("Kopi Sachet", 10, types.NewMoneyFromInt(100))

	err := f.svc.RecordSale(context.Background(), saleOf(itemID, "Kopi Sachet", 3, types.NewMoneyFromInt(150)))
	require.NoError(t, err)

	assert.Equal(t, int64(7), f.stock.items[itemID].Quantity)
	assert.Equal(t, 1, f.sales.creates)
	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, "sale", f.publisher.events[0].Entity)
}

func TestRecordSale_NoFloorCheck(t *testing.T) {
	f := newFixture()
	itemID := f.stock.add("Kopi Sachet", 2, types.NewMoneyFromInt(100))

	// Oversell commits; the ledger goes negative. The paid path performs
	// blind decrements, unlike the debt path.
	err := f.svc.RecordSale(context.Background(), saleOf(itemID, "Kopi Sachet", 5, types.NewMoneyFromInt(150)))
	require.NoError(t, err)
	assert.Equal(t, int64(-3), f.stock.items[itemID].Quantity)

	err = f.svc.RecordSale(context.Background(), saleOf(itemID, "Kopi Sachet", 5, types.NewMoneyFromInt(150)))
	require.NoError(t, err)
	assert.Equal(t, int64(-8), f.stock.items[itemID].Quantity)
	assert.Equal(t, 2, f.sales.creates)
}

func TestRecordSale_UnknownItemRejected(t *testing.T) {
	f := newFixture()

	err := f.svc.RecordSale(context.Background(), saleOf(id.New(), "Ghost", 1, types.NewMoneyFromInt(150)))
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
	assert.Equal(t, 0, f.sales.creates)
	assert.Equal(t, 0, f.txm.plainCalls)
}

func TestRecordSale_EmptyCartRejected(t *testing.T) {
	f := newFixture()

	inv := invoice.NewInvoice("Budi", testDate, invoice.StatusPaid)
	inv.Number = "INV-2026-08-00001"
	err := f.svc.RecordSale(context.Background(), inv)

	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

// --- debts ---

func debtOf(itemID id.ID, name string, qty int64) *invoice.Invoice {
	inv := invoice.NewInvoice("Siti", testDate, invoice.StatusUnpaid)
	inv.Number = "INV-2026-08-00002"
	inv.AddLine(itemID, name, qty, types.NewMoneyFromInt(150), invoice.PriceRetail, types.NewMoneyFromInt(100))
	return inv
}

func TestRecordDebt_FloorCheckAbortsWholeUnit(t *testing.T) {
	f := newFixture()
	okID := f.stock.add("Beras", 10, types.NewMoneyFromInt(100))
	shortID := f.stock.add("Gula", 2, types.NewMoneyFromInt(100))

	inv := invoice.NewInvoice("Siti", testDate, invoice.StatusUnpaid)
	inv.Number = "INV-2026-08-00002"
	inv.AddLine(okID, "Beras", 5, types.NewMoneyFromInt(150), invoice.PriceRetail, types.NewMoneyFromInt(100))
	inv.AddLine(shortID, "Gula", 3, types.NewMoneyFromInt(150), invoice.PriceRetail, types.NewMoneyFromInt(100))

	err := f.svc.RecordDebt(context.Background(), inv)
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	appErr, _ := apperror.AsAppError(err)
	assert.Contains(t, appErr.Message, "Gula")

	// Nothing written: both ledger rows untouched, no debtor record.
	assert.Equal(t, int64(10), f.stock.items[okID].Quantity)
	assert.Equal(t, int64(2), f.stock.items[shortID].Quantity)
	assert.Equal(t, 0, f.debtors.creates)
}

func TestRecordDebt_ExactQuantityThenRefusal(t *testing.T) {
	f := newFixture()
	itemID := f.stock.add("Minyak", 5, types.NewMoneyFromInt(100))

	// Debt for the full quantity drains the ledger to exactly zero.
	require.NoError(t, f.svc.RecordDebt(context.Background(), debtOf(itemID, "Minyak", 5)))
	assert.Equal(t, int64(0), f.stock.items[itemID].Quantity)
	assert.Equal(t, 1, f.debtors.creates)

	// One more unit would go negative: refused.
	err := f.svc.RecordDebt(context.Background(), debtOf(itemID, "Minyak", 1))
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))
	assert.Equal(t, int64(0), f.stock.items[itemID].Quantity)
	assert.Equal(t, 1, f.debtors.creates)
}

func TestRecordDebt_FloorCheckSumsRepeatedItem(t *testing.T) {
	f := newFixture()
	itemID := f.stock.add("Gula", 5, types.NewMoneyFromInt(100))

	// Two lines for the same SKU. Each alone fits in stock 5; together
	// they ask for 6. The floor check must see the combined quantity.
	inv := invoice.NewInvoice("Siti", testDate, invoice.StatusUnpaid)
	inv.Number = "INV-2026-08-00002"
	inv.AddLine(itemID, "Gula", 3, types.NewMoneyFromInt(150), invoice.PriceRetail, types.NewMoneyFromInt(100))
	inv.AddLine(itemID, "Gula", 3, types.NewMoneyFromInt(120), invoice.PriceWholesale, types.NewMoneyFromInt(100))

	err := f.svc.RecordDebt(context.Background(), inv)
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))
	assert.Equal(t, int64(5), f.stock.items[itemID].Quantity)
	assert.Equal(t, 0, f.debtors.creates)
}

func TestRecordDebt_RepeatedItemWithinStockCommitsOnce(t *testing.T) {
	f := newFixture()
	itemID := f.stock.add("Gula", 5, types.NewMoneyFromInt(100))

	inv := invoice.NewInvoice("Siti", testDate, invoice.StatusUnpaid)
	inv.Number = "INV-2026-08-00002"
	inv.AddLine(itemID, "Gula", 2, types.NewMoneyFromInt(150), invoice.PriceRetail, types.NewMoneyFromInt(100))
	inv.AddLine(itemID, "Gula", 3, types.NewMoneyFromInt(120), invoice.PriceWholesale, types.NewMoneyFromInt(100))

	require.NoError(t, f.svc.RecordDebt(context.Background(), inv))
	assert.Equal(t, int64(0), f.stock.items[itemID].Quantity)
	assert.Equal(t, 1, f.debtors.creates)
}

func TestRecordDebt_UpsertsCustomerDirectory(t *testing.T) {
	f := newFixture()
	itemID := f.stock.add("Minyak", 5, types.NewMoneyFromInt(100))

	require.NoError(t, f.svc.RecordDebt(context.Background(), debtOf(itemID, "Minyak", 1)))
	assert.Contains(t, f.customers.byName, "Siti")

	// A second debt for the same name must not duplicate the entry.
	require.NoError(t, f.svc.RecordDebt(context.Background(), debtOf(itemID, "Minyak", 1)))
	assert.Len(t, f.customers.byName, 1)
}

func TestRecordDebt_CustomerFailureDoesNotBlockDebt(t *testing.T) {
	f := newFixture()
	f.customers.failAll = true
	itemID := f.stock.add("Minyak", 5, types.NewMoneyFromInt(100))

	// Directory upsert is a best-effort side channel.
	err := f.svc.RecordDebt(context.Background(), debtOf(itemID, "Minyak", 2))
	require.NoError(t, err)
	assert.Equal(t, 1, f.debtors.creates)
	assert.Equal(t, int64(3), f.stock.items[itemID].Quantity)
}

// --- settlement ---

func TestSettleDebt_MigratesToSale(t *testing.T) {
	f := newFixture()
	itemID := f.stock.add("Minyak", 5, types.NewMoneyFromInt(100))

	debt := debtOf(itemID, "Minyak", 2)
	require.NoError(t, f.svc.RecordDebt(context.Background(), debt))
	assert.Equal(t, int64(3), f.stock.items[itemID].Quantity)

	sale, err := f.svc.SettleDebt(context.Background(), debt.ID)
	require.NoError(t, err)

	// Sale carries the debtor's identity; the debtor is gone.
	assert.Equal(t, debt.Number, sale.Number)
	assert.Equal(t, debt.CustomerName, sale.CustomerName)
	assert.True(t, debt.Total.Equal(sale.Total))
	assert.Equal(t, invoice.StatusPaid, sale.Status)
	require.Len(t, sale.Lines, 1)
	assert.Equal(t, debt.Lines[0].ItemID, sale.Lines[0].ItemID)

	_, err = f.debtors.GetByID(context.Background(), debt.ID)
	assert.True(t, apperror.IsNotFound(err))

	// Stock was decremented at debt creation and is not touched again.
	assert.Equal(t, int64(3), f.stock.items[itemID].Quantity)
}

func TestSettleDebt_MissingDebtorFailsCleanly(t *testing.T) {
	f := newFixture()

	sale, err := f.svc.SettleDebt(context.Background(), id.New())
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
	assert.Nil(t, sale)
	assert.Equal(t, 0, f.sales.creates)
}

// --- deletion ---

func TestDeleteTransaction_RefusesUnknownStatus(t *testing.T) {
	f := newFixture()
	itemID := f.stock.add("Minyak", 5, types.NewMoneyFromInt(100))

	debt := debtOf(itemID, "Minyak", 2)
	require.NoError(t, f.svc.RecordDebt(context.Background(), debt))

	err := f.svc.DeleteTransaction(context.Background(), debt.ID, "pending")
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidStatus, appErr.Code)

	// Refused before any transaction: record intact, stock untouched.
	assert.Equal(t, 1, f.txm.serializableCalls) // only the RecordDebt call
	_, err = f.debtors.GetByID(context.Background(), debt.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), f.stock.items[itemID].Quantity)
}

func TestDeleteTransaction_ReversesDebtStock(t *testing.T) {
	f := newFixture()
	itemID := f.stock.add("Minyak", 5, types.NewMoneyFromInt(100))

	debt := debtOf(itemID, "Minyak", 2)
	require.NoError(t, f.svc.RecordDebt(context.Background(), debt))
	assert.Equal(t, int64(3), f.stock.items[itemID].Quantity)

	require.NoError(t, f.svc.DeleteTransaction(context.Background(), debt.ID, "unpaid"))

	assert.Equal(t, int64(5), f.stock.items[itemID].Quantity)
	_, err := f.debtors.GetByID(context.Background(), debt.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestDeleteTransaction_ReversesSaleStock(t *testing.T) {
	f := newFixture()
	itemID := f.stock.add("Kopi Sachet", 10, types.NewMoneyFromInt(100))

	sale := saleOf(itemID, "Kopi Sachet", 4, types.NewMoneyFromInt(150))
	require.NoError(t, f.svc.RecordSale(context.Background(), sale))
	assert.Equal(t, int64(6), f.stock.items[itemID].Quantity)

	require.NoError(t, f.svc.DeleteTransaction(context.Background(), sale.ID, "paid"))
	assert.Equal(t, int64(10), f.stock.items[itemID].Quantity)
}

func TestDeleteTransaction_SkipsVanishedItems(t *testing.T) {
	f := newFixture()
	keptID := f.stock.add("Beras", 10, types.NewMoneyFromInt(100))
	goneID := f.stock.add("Gula", 10, types.NewMoneyFromInt(100))

	inv := invoice.NewInvoice("Budi", testDate, invoice.StatusPaid)
	inv.Number = "INV-2026-08-00003"
	inv.AddLine(keptID, "Beras", 2, types.NewMoneyFromInt(150), invoice.PriceRetail, types.NewMoneyFromInt(100))
	inv.AddLine(goneID, "Gula", 3, types.NewMoneyFromInt(150), invoice.PriceRetail, types.NewMoneyFromInt(100))
	require.NoError(t, f.svc.RecordSale(context.Background(), inv))

	// The item is removed from the ledger after the sale.
	require.NoError(t, f.stock.Delete(context.Background(), goneID))

	// Deletion still succeeds: the surviving line is restored, the
	// vanished one skipped.
	require.NoError(t, f.svc.DeleteTransaction(context.Background(), inv.ID, "paid"))
	assert.Equal(t, int64(10), f.stock.items[keptID].Quantity)
	_, err := f.sales.GetByID(context.Background(), inv.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestDeleteTransaction_MissingRecord(t *testing.T) {
	f := newFixture()

	err := f.svc.DeleteTransaction(context.Background(), id.New(), "paid")
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

// --- purchases ---

func TestRecordPurchase_IncrementsAndOverwritesCost(t *testing.T) {
	f := newFixture()
	itemID := f.stock.add("Telur", 2, types.NewMoneyFromInt(150))

	p := purchase.NewPurchase("Toko Grosir", testDate)
	p.Number = "PUR-2026-08-00001"
	p.AddLine(itemID, "Telur", 10, types.NewMoneyFromInt(200))

	require.NoError(t, f.svc.RecordPurchase(context.Background(), p))

	// 2 on hand at cost 150, receive 10 at 200: quantity 12, cost 200.
	// Last purchase price wins outright.
	item := f.stock.items[itemID]
	assert.Equal(t, int64(12), item.Quantity)
	assert.True(t, types.NewMoneyFromInt(200).Equal(item.CostPrice))

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, "purchase", f.publisher.events[0].Entity)
}

func TestRecordPurchase_UnknownItemAborts(t *testing.T) {
	f := newFixture()

	p := purchase.NewPurchase("Toko Grosir", testDate)
	p.Number = "PUR-2026-08-00001"
	p.AddLine(id.New(), "Ghost", 10, types.NewMoneyFromInt(200))

	err := f.svc.RecordPurchase(context.Background(), p)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
	assert.Empty(t, f.purchases.headers)
}
