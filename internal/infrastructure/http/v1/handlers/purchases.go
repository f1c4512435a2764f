package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tokopos/internal/domain"
	"tokopos/internal/domain/catalog/stockitem"
	"tokopos/internal/domain/checkout"
	"tokopos/internal/domain/documents/purchase"
	"tokopos/internal/infrastructure/http/v1/dto"
)

// PurchasesHandler handles HTTP requests for purchase records. Purchases
// are append-only: no update or delete routes exist.
type PurchasesHandler struct {
	*BaseHandler
	checkout  *checkout.Service
	stock     *stockitem.Service
	purchases purchase.Repository
}

// NewPurchasesHandler creates a new purchases handler.
func NewPurchasesHandler(base *BaseHandler, checkoutSvc *checkout.Service, stockSvc *stockitem.Service, purchases purchase.Repository) *PurchasesHandler {
	return &PurchasesHandler{
		BaseHandler: base,
		checkout:    checkoutSvc,
		stock:       stockSvc,
		purchases:   purchases,
	}
}

// Create handles POST /purchases.
func (h *PurchasesHandler) Create(c *gin.Context) {
	var req dto.CreatePurchaseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}

	ctx := c.Request.Context()
	for i := range p.Lines {
		item, err := h.stock.GetByID(ctx, p.Lines[i].ItemID)
		if err != nil {
			h.Error(c, err)
			return
		}
		p.Lines[i].ItemName = item.Name
	}

	if err := h.checkout.RecordPurchase(ctx, p); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromPurchase(p))
}

// Get handles GET /purchases/:id.
func (h *PurchasesHandler) Get(c *gin.Context) {
	purchaseID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	p, err := h.purchases.GetByID(ctx, purchaseID)
	if err != nil {
		h.Error(c, err)
		return
	}
	lines, err := h.purchases.GetLines(ctx, purchaseID)
	if err != nil {
		h.Error(c, err)
		return
	}
	p.Lines = lines

	h.OK(c, dto.FromPurchase(p))
}

// List handles GET /purchases.
func (h *PurchasesHandler) List(c *gin.Context) {
	filter := purchase.ListFilter{
		ListFilter: domain.DefaultListFilter(),
	}
	filter.Search = c.Query("search")
	filter.SupplierName = c.Query("supplier")
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
		to = to.AddDate(0, 0, 1)
		filter.DateTo = &to
	}

	result, err := h.purchases.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      dto.FromPurchases(result.Items),
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// RegisterRoutes wires purchase endpoints.
func (h *PurchasesHandler) RegisterRoutes(rg *gin.RouterGroup) {
	purchases := rg.Group("/purchases")
	{
		purchases.POST("", h.Create)
		purchases.GET("", h.List)
		purchases.GET("/:id", h.Get)
	}
}
