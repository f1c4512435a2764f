// Package audit defines the audit trail contract for commercial and
// catalog mutations.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"tokopos/internal/core/id"
)

// Action represents the type of audited operation.
type Action string

const (
	ActionSale       Action = "sale"
	ActionDebt       Action = "debt"
	ActionSettlement Action = "settlement"
	ActionDeletion   Action = "deletion"
	ActionPurchase   Action = "purchase"
	ActionEdit       Action = "edit"
)

// Entry represents a single audit log entry.
type Entry struct {
	ID         id.ID           `db:"id"`
	EntityType string          `db:"entity_type"`
	EntityID   id.ID           `db:"entity_id"`
	Action     Action          `db:"action"`
	UserID     string          `db:"user_id"`
	Changes    json.RawMessage `db:"changes"`
	CreatedAt  time.Time       `db:"created_at"`
}

// NewEntry builds an entry with the change payload marshalled to JSON.
func NewEntry(entityType string, entityID id.ID, action Action, userID string, changes any) (Entry, error) {
	raw, err := json.Marshal(changes)
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		ID:         id.New(),
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		UserID:     userID,
		Changes:    raw,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// Recorder persists audit entries. Recording is best-effort: callers log
// failures but never fail the business operation over them.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}
