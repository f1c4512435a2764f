package handlers

import (
	"github.com/gin-gonic/gin"

	"tokopos/internal/domain"
	"tokopos/internal/domain/catalog/stockitem"
	"tokopos/internal/infrastructure/http/v1/dto"
)

// StockHandler handles HTTP requests for the stock ledger catalog.
type StockHandler struct {
	*BaseHandler
	service *stockitem.Service
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(base *BaseHandler, service *stockitem.Service) *StockHandler {
	return &StockHandler{BaseHandler: base, service: service}
}

// Create handles POST /stock-items.
func (h *StockHandler) Create(c *gin.Context) {
	var req dto.CreateStockItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	item := req.ToEntity()
	if err := h.service.Create(c.Request.Context(), item); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromStockItem(item))
}

// Get handles GET /stock-items/:id.
func (h *StockHandler) Get(c *gin.Context) {
	itemID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	item, err := h.service.GetByID(c.Request.Context(), itemID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromStockItem(item))
}

// Update handles PUT /stock-items/:id. Quantity is not updatable here;
// commercial events own quantity changes.
func (h *StockHandler) Update(c *gin.Context) {
	itemID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateStockItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	item, err := h.service.GetByID(ctx, itemID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.ApplyTo(item)
	if err := h.service.Update(ctx, item); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromStockItem(item))
}

// Delete handles DELETE /stock-items/:id (soft delete).
func (h *StockHandler) Delete(c *gin.Context) {
	itemID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), itemID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// List handles GET /stock-items.
func (h *StockHandler) List(c *gin.Context) {
	filter := stockitem.ListFilter{
		ListFilter: domain.DefaultListFilter(),
	}
	filter.Search = c.Query("search")
	filter.Category = c.Query("category")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "name")
	filter.IncludeDeleted = c.Query("includeDeleted") == "true"

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      dto.FromStockItems(result.Items),
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// RegisterRoutes wires stock ledger endpoints.
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	items := rg.Group("/stock-items")
	{
		items.POST("", h.Create)
		items.GET("", h.List)
		items.GET("/:id", h.Get)
		items.PUT("/:id", h.Update)
		items.DELETE("/:id", h.Delete)
	}
}
