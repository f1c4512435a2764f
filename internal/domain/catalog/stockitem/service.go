package stockitem

import (
	"context"
	"encoding/json"
	"fmt"

	"tokopos/internal/core/apperror"
	appctx "tokopos/internal/core/context"
	"tokopos/internal/core/id"
	"tokopos/internal/domain"
	"tokopos/internal/domain/audit"
	"tokopos/pkg/logger"
)

// Service provides catalog operations for stock items: creation and manual
// edits. Quantity changes caused by commercial events go through the
// checkout orchestrator, never through this service.
type Service struct {
	repo     Repository
	auditLog audit.Recorder
}

// NewService creates a new stock item service. auditLog may be nil; manual
// edits are then not written to the audit trail.
func NewService(repo Repository, auditLog audit.Recorder) *Service {
	return &Service{repo: repo, auditLog: auditLog}
}

// Create inserts a new stock item after checking code uniqueness.
func (s *Service) Create(ctx context.Context, item *StockItem) error {
	if err := item.Validate(ctx); err != nil {
		return err
	}

	existing, err := s.repo.GetByCode(ctx, item.Code)
	if err != nil && !apperror.IsNotFound(err) {
		return fmt.Errorf("check code: %w", err)
	}
	if existing != nil {
		return apperror.NewDuplicate("stock item", "code", item.Code)
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return fmt.Errorf("create stock item: %w", err)
	}

	logger.Info(ctx, "stock item created", "id", item.ID, "code", item.Code)
	return nil
}

// GetByID retrieves a stock item.
func (s *Service) GetByID(ctx context.Context, itemID id.ID) (*StockItem, error) {
	return s.repo.GetByID(ctx, itemID)
}

// Update applies a manual edit with optimistic locking. The audit entry
// carries a field-level diff against the stored state.
func (s *Service) Update(ctx context.Context, item *StockItem) error {
	if err := item.Validate(ctx); err != nil {
		return err
	}

	var prev *StockItem
	if s.auditLog != nil {
		// Best-effort: a failed read degrades the diff, not the edit.
		prev, _ = s.repo.GetByID(ctx, item.ID)
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return err
	}

	s.recordEdit(ctx, prev, item)
	logger.Info(ctx, "stock item updated", "id", item.ID, "code", item.Code)
	return nil
}

// Delete soft-deletes an item. Historical transactions keep their line
// references; reversals against a deleted item are skipped per line.
func (s *Service) Delete(ctx context.Context, itemID id.ID) error {
	if _, err := s.repo.GetByID(ctx, itemID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, itemID)
}

// List retrieves stock items with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*StockItem], error) {
	return s.repo.List(ctx, filter)
}

// recordEdit writes a trail entry; failures are logged and swallowed.
func (s *Service) recordEdit(ctx context.Context, prev, item *StockItem) {
	if s.auditLog == nil {
		return
	}
	changes := audit.Diff(itemState(prev), itemState(item))
	entry, err := audit.NewEntry("stock_item", item.ID, audit.ActionEdit, appctx.GetUserID(ctx), changes)
	if err == nil {
		err = s.auditLog.Record(ctx, entry)
	}
	if err != nil {
		logger.Warn(ctx, "audit record failed", "id", item.ID, "error", err)
	}
}

// itemState flattens an item into the generic map Diff compares.
func itemState(item *StockItem) map[string]any {
	if item == nil {
		return nil
	}
	raw, err := json.Marshal(item)
	if err != nil {
		return nil
	}
	var state map[string]any
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil
	}
	return state
}
