package dto

import (
	"encoding/json"
	"time"

	"tokopos/internal/domain/audit"
)

// --- Response DTOs ---

type AuditEntryResponse struct {
	ID         string          `json:"id"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	Action     string          `json:"action"`
	UserID     string          `json:"userId,omitempty"`
	Changes    json.RawMessage `json:"changes,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

func FromAuditEntry(e audit.Entry) AuditEntryResponse {
	return AuditEntryResponse{
		ID:         e.ID.String(),
		EntityType: e.EntityType,
		EntityID:   e.EntityID.String(),
		Action:     string(e.Action),
		UserID:     e.UserID,
		Changes:    e.Changes,
		CreatedAt:  e.CreatedAt,
	}
}

func FromAuditEntries(entries []audit.Entry) []AuditEntryResponse {
	out := make([]AuditEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = FromAuditEntry(e)
	}
	return out
}
