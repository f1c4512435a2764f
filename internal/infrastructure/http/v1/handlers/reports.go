package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"tokopos/internal/core/apperror"
	"tokopos/internal/domain/reports"
	"tokopos/internal/infrastructure/http/v1/dto"
)

// ReportsHandler handles HTTP requests for the reporting layer.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{BaseHandler: base, service: service}
}

// Profit handles GET /reports/profit?year=2026&month=8.
func (h *ReportsHandler) Profit(c *gin.Context) {
	filter := reports.ProfitReportFilter{
		Year:  h.ParseIntQuery(c, "year", time.Now().UTC().Year()),
		Month: h.ParseIntQuery(c, "month", 0),
	}

	report, err := h.service.GetProfitReport(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromProfitReport(report))
}

// Debts handles GET /reports/debts.
func (h *ReportsHandler) Debts(c *gin.Context) {
	filter := reports.DebtReportFilter{
		CustomerName: c.Query("customer"),
		Limit:        h.ParseIntQuery(c, "limit", 100),
		Offset:       h.ParseIntQuery(c, "offset", 0),
	}

	report, err := h.service.GetDebtReport(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromDebtReport(report))
}

// Summary handles GET /reports/summary?from=2026-08-01&to=2026-08-31.
// Both dates are calendar days; the range is inclusive.
func (h *ReportsHandler) Summary(c *gin.Context) {
	rawFrom, rawTo := c.Query("from"), c.Query("to")
	if rawFrom == "" || rawTo == "" {
		h.Error(c, apperror.NewValidation("from and to are required"))
		return
	}

	from, err := dto.ParseCalendarDate("from", rawFrom)
	if err != nil {
		h.Error(c, err)
		return
	}
	to, err := dto.ParseCalendarDate("to", rawTo)
	if err != nil {
		h.Error(c, err)
		return
	}

	summary, err := h.service.GetSummary(c.Request.Context(), reports.SummaryFilter{
		FromDate: from,
		ToDate:   to.AddDate(0, 0, 1),
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromSummary(summary))
}

// Daily handles GET /reports/daily?date=2026-08-27; date defaults to today.
func (h *ReportsHandler) Daily(c *gin.Context) {
	day := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		parsed, err := dto.ParseCalendarDate("date", raw)
		if err != nil {
			h.Error(c, err)
			return
		}
		day = parsed
	}

	summary, err := h.service.GetDailySummary(c.Request.Context(), day)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromSummary(summary))
}

// RegisterRoutes wires report endpoints.
func (h *ReportsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rep := rg.Group("/reports")
	{
		rep.GET("/profit", h.Profit)
		rep.GET("/debts", h.Debts)
		rep.GET("/summary", h.Summary)
		rep.GET("/daily", h.Daily)
	}
}
