package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"tokopos/internal/core/id"
	"tokopos/internal/domain/audit"
	"tokopos/internal/infrastructure/http/v1/dto"
)

// HistoryReader retrieves stored audit entries.
type HistoryReader interface {
	GetEntityHistory(ctx context.Context, entityType string, entityID id.ID, limit int) ([]audit.Entry, error)
}

// AuditHandler exposes the audit trail for a single entity.
type AuditHandler struct {
	*BaseHandler
	history HistoryReader
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(base *BaseHandler, history HistoryReader) *AuditHandler {
	return &AuditHandler{BaseHandler: base, history: history}
}

// EntityHistory handles GET /audit/:entityType/:id, newest entries first.
func (h *AuditHandler) EntityHistory(c *gin.Context) {
	entityID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	limit := h.ParseIntQuery(c, "limit", 50)

	entries, err := h.history.GetEntityHistory(c.Request.Context(), c.Param("entityType"), entityID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromAuditEntries(entries))
}

// RegisterRoutes wires audit endpoints.
func (h *AuditHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/audit/:entityType/:id", h.EntityHistory)
}
