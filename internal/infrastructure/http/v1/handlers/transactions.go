package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"tokopos/internal/core/apperror"
	"tokopos/internal/domain"
	"tokopos/internal/domain/catalog/stockitem"
	"tokopos/internal/domain/checkout"
	"tokopos/internal/domain/documents/invoice"
	"tokopos/internal/infrastructure/http/v1/dto"
)

// TransactionsHandler handles HTTP requests for sales and debtor records.
// Mutations go through the checkout orchestrator; list and get read the
// two invoice collections directly.
type TransactionsHandler struct {
	*BaseHandler
	checkout *checkout.Service
	stock    *stockitem.Service
	sales    invoice.Repository
	debtors  invoice.Repository
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(base *BaseHandler, checkoutSvc *checkout.Service, stockSvc *stockitem.Service, sales, debtors invoice.Repository) *TransactionsHandler {
	return &TransactionsHandler{
		BaseHandler: base,
		checkout:    checkoutSvc,
		stock:       stockSvc,
		sales:       sales,
		debtors:     debtors,
	}
}

// priceCart fills each line's name snapshot, cost snapshot and list price
// from the ledger. Retail and wholesale lines are priced server-side;
// custom lines keep the client price.
func (h *TransactionsHandler) priceCart(ctx context.Context, inv *invoice.Invoice) error {
	for i := range inv.Lines {
		line := &inv.Lines[i]
		item, err := h.stock.GetByID(ctx, line.ItemID)
		if err != nil {
			return err
		}
		line.ItemName = item.Name
		line.UnitCost = item.CostPrice
		switch line.PriceType {
		case invoice.PriceRetail:
			line.UnitPrice = item.SellPrice
		case invoice.PriceWholesale:
			line.UnitPrice = item.WholesalePrice
		case invoice.PriceCustom:
			// client price stands
		default:
			return apperror.NewValidation("unknown price type").
				WithDetail("priceType", string(line.PriceType))
		}
	}
	inv.RecalculateTotal()
	return nil
}

// CreateSale handles POST /sales.
func (h *TransactionsHandler) CreateSale(c *gin.Context) {
	var req dto.CreateTransactionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	inv, err := req.ToEntity(invoice.StatusPaid)
	if err != nil {
		h.Error(c, err)
		return
	}

	ctx := c.Request.Context()
	if err := h.priceCart(ctx, inv); err != nil {
		h.Error(c, err)
		return
	}
	if err := h.checkout.RecordSale(ctx, inv); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromInvoice(inv))
}

// CreateDebt handles POST /debts.
func (h *TransactionsHandler) CreateDebt(c *gin.Context) {
	var req dto.CreateTransactionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	inv, err := req.ToEntity(invoice.StatusUnpaid)
	if err != nil {
		h.Error(c, err)
		return
	}

	ctx := c.Request.Context()
	if err := h.priceCart(ctx, inv); err != nil {
		h.Error(c, err)
		return
	}
	if err := h.checkout.RecordDebt(ctx, inv); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromInvoice(inv))
}

// SettleDebt handles POST /debts/:id/settle.
func (h *TransactionsHandler) SettleDebt(c *gin.Context) {
	debtorID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	sale, err := h.checkout.SettleDebt(c.Request.Context(), debtorID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromInvoice(sale))
}

// Delete handles DELETE /transactions/:id?status=paid|unpaid. The status
// tag selects the collection; an unknown tag is refused without touching
// anything.
func (h *TransactionsHandler) Delete(c *gin.Context) {
	recordID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.checkout.DeleteTransaction(c.Request.Context(), recordID, c.Query("status")); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// DeleteSale handles DELETE /sales/:id.
func (h *TransactionsHandler) DeleteSale(c *gin.Context) {
	h.deleteWithStatus(c, invoice.StatusPaid)
}

// DeleteDebt handles DELETE /debts/:id.
func (h *TransactionsHandler) DeleteDebt(c *gin.Context) {
	h.deleteWithStatus(c, invoice.StatusUnpaid)
}

func (h *TransactionsHandler) deleteWithStatus(c *gin.Context, status invoice.Status) {
	recordID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.checkout.DeleteTransaction(c.Request.Context(), recordID, string(status)); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// ListSales handles GET /sales.
func (h *TransactionsHandler) ListSales(c *gin.Context) {
	h.list(c, h.sales)
}

// ListDebts handles GET /debts.
func (h *TransactionsHandler) ListDebts(c *gin.Context) {
	h.list(c, h.debtors)
}

func (h *TransactionsHandler) list(c *gin.Context, repo invoice.Repository) {
	filter := invoice.ListFilter{
		ListFilter: domain.DefaultListFilter(),
	}
	filter.Search = c.Query("search")
	filter.CustomerName = c.Query("customer")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "date DESC")

	if raw := c.Query("dateFrom"); raw != "" {
		from, err := dto.ParseCalendarDate("dateFrom", raw)
		if err != nil {
			h.Error(c, err)
			return
		}
		filter.DateFrom = &from
	}
	if raw := c.Query("dateTo"); raw != "" {
		to, err := dto.ParseCalendarDate("dateTo", raw)
		if err != nil {
			h.Error(c, err)
			return
		}
		// inclusive calendar day
		to = to.AddDate(0, 0, 1)
		filter.DateTo = &to
	}

	result, err := repo.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      dto.FromInvoices(result.Items),
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// GetSale handles GET /sales/:id.
func (h *TransactionsHandler) GetSale(c *gin.Context) {
	h.get(c, h.sales)
}

// GetDebt handles GET /debts/:id.
func (h *TransactionsHandler) GetDebt(c *gin.Context) {
	h.get(c, h.debtors)
}

func (h *TransactionsHandler) get(c *gin.Context, repo invoice.Repository) {
	recordID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	inv, err := repo.GetByID(ctx, recordID)
	if err != nil {
		h.Error(c, err)
		return
	}
	lines, err := repo.GetLines(ctx, recordID)
	if err != nil {
		h.Error(c, err)
		return
	}
	inv.Lines = lines

	h.OK(c, dto.FromInvoice(inv))
}

// RegisterRoutes wires sale, debt and deletion endpoints.
func (h *TransactionsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sales := rg.Group("/sales")
	{
		sales.POST("", h.CreateSale)
		sales.GET("", h.ListSales)
		sales.GET("/:id", h.GetSale)
		sales.DELETE("/:id", h.DeleteSale)
	}

	debts := rg.Group("/debts")
	{
		debts.POST("", h.CreateDebt)
		debts.GET("", h.ListDebts)
		debts.GET("/:id", h.GetDebt)
		debts.POST("/:id/settle", h.SettleDebt)
		debts.DELETE("/:id", h.DeleteDebt)
	}

	rg.DELETE("/transactions/:id", h.Delete)
}
