package handlers

import (
	"github.com/gin-gonic/gin"

	"tokopos/internal/domain"
	"tokopos/internal/domain/catalog/customer"
	"tokopos/internal/infrastructure/http/v1/dto"
)

// CustomersHandler handles HTTP requests for the customer directory.
type CustomersHandler struct {
	*BaseHandler
	service *customer.Service
}

// NewCustomersHandler creates a new customers handler.
func NewCustomersHandler(base *BaseHandler, service *customer.Service) *CustomersHandler {
	return &CustomersHandler{BaseHandler: base, service: service}
}

// Create handles POST /customers.
func (h *CustomersHandler) Create(c *gin.Context) {
	var req dto.CreateCustomerRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cust := req.ToEntity()
	if err := h.service.Create(c.Request.Context(), cust); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromCustomer(cust))
}

// Get handles GET /customers/:id.
func (h *CustomersHandler) Get(c *gin.Context) {
	customerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	cust, err := h.service.GetByID(c.Request.Context(), customerID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromCustomer(cust))
}

// Update handles PUT /customers/:id.
func (h *CustomersHandler) Update(c *gin.Context) {
	customerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateCustomerRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	cust, err := h.service.GetByID(ctx, customerID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.ApplyTo(cust)
	if err := h.service.Update(ctx, cust); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromCustomer(cust))
}

// Delete handles DELETE /customers/:id. Historical transactions keep the
// name as free text, nothing cascades.
func (h *CustomersHandler) Delete(c *gin.Context) {
	customerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), customerID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// List handles GET /customers.
func (h *CustomersHandler) List(c *gin.Context) {
	filter := domain.DefaultListFilter()
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "name")

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      dto.FromCustomers(result.Items),
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// RegisterRoutes wires customer directory endpoints.
func (h *CustomersHandler) RegisterRoutes(rg *gin.RouterGroup) {
	customers := rg.Group("/customers")
	{
		customers.POST("", h.Create)
		customers.GET("", h.List)
		customers.GET("/:id", h.Get)
		customers.PUT("/:id", h.Update)
		customers.DELETE("/:id", h.Delete)
	}
}
