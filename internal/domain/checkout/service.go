// Package checkout is the transaction orchestrator: every operation that
// must couple a transaction-record write with stock ledger updates lives
// here. Each multi-document mutation runs as one atomic unit in which all
// reads precede all writes; the unit commits or aborts as a whole.
package checkout

import (
	"context"
	"fmt"

	"tokopos/internal/core/apperror"
	appctx "tokopos/internal/core/context"
	"tokopos/internal/core/id"
	"tokopos/internal/core/tx"
	"tokopos/internal/domain/audit"
	"tokopos/internal/domain/catalog/customer"
	"tokopos/internal/domain/catalog/stockitem"
	"tokopos/internal/domain/documents/invoice"
	"tokopos/internal/domain/documents/purchase"
	"tokopos/internal/feed"
	"tokopos/pkg/logger"
	"tokopos/pkg/numerator"
)

// Publisher delivers committed changes to live feed subscribers.
type Publisher interface {
	Publish(event feed.Event)
}

// Service orchestrates sales, debts, settlements, deletions and purchases.
type Service struct {
	txManager    tx.Manager
	stockRepo    stockitem.Repository
	salesRepo    invoice.Repository
	debtorsRepo  invoice.Repository
	purchaseRepo purchase.Repository
	customers    *customer.Service
	numerator    *numerator.Service
	publisher    Publisher
	auditLog     audit.Recorder
}

// Config wires the orchestrator's collaborators.
type Config struct {
	TxManager    tx.Manager
	StockRepo    stockitem.Repository
	SalesRepo    invoice.Repository
	DebtorsRepo  invoice.Repository
	PurchaseRepo purchase.Repository
	Customers    *customer.Service

	// Numerator generates invoice/purchase numbers; optional in tests
	Numerator *numerator.Service

	// Publisher is optional; nil disables feed events
	Publisher Publisher

	// AuditLog is optional; nil disables the audit trail
	AuditLog audit.Recorder
}

// NewService creates the orchestrator.
func NewService(cfg Config) *Service {
	return &Service{
		txManager:    cfg.TxManager,
		stockRepo:    cfg.StockRepo,
		salesRepo:    cfg.SalesRepo,
		debtorsRepo:  cfg.DebtorsRepo,
		purchaseRepo: cfg.PurchaseRepo,
		customers:    cfg.Customers,
		numerator:    cfg.Numerator,
		publisher:    cfg.Publisher,
		auditLog:     cfg.AuditLog,
	}
}

// RecordSale writes a paid invoice and decrements stock for every line in
// one atomic batched write. The ledger is NOT floor-checked on this path:
// decrements are blind (quantity = quantity - n) and may drive quantities
// negative. Two concurrent sales of the same SKU both commit. This
// asymmetry with RecordDebt is intentional and preserved; changing it is a
// product decision, not a bug fix.
func (s *Service) RecordSale(ctx context.Context, inv *invoice.Invoice) error {
	inv.Status = invoice.StatusPaid
	if err := inv.Validate(ctx); err != nil {
		return err
	}

	// Every cart line must resolve to an existing ledger entry at write
	// time. This read runs before the atomic unit, so it cannot protect
	// against a concurrent delete; it rejects stale carts early.
	itemIDs := make([]id.ID, 0, len(inv.Lines))
	for _, line := range inv.Lines {
		itemIDs = append(itemIDs, line.ItemID)
	}
	existing, err := s.stockRepo.ExistingIDs(ctx, itemIDs)
	if err != nil {
		return fmt.Errorf("resolve cart items: %w", err)
	}
	for _, line := range inv.Lines {
		if !existing[line.ItemID] {
			return apperror.NewNotFound("stock item", line.ItemID).
				WithDetail("item", line.ItemName)
		}
	}

	if err := s.ensureNumber(ctx, inv); err != nil {
		return err
	}

	deltas := make([]stockitem.QuantityDelta, 0, len(inv.Lines))
	for _, line := range inv.Lines {
		deltas = append(deltas, stockitem.QuantityDelta{
			ItemID: line.ItemID,
			Delta:  -line.Quantity,
		})
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.salesRepo.Create(ctx, inv); err != nil {
			return fmt.Errorf("create sale: %w", err)
		}
		if err := s.salesRepo.SaveLines(ctx, inv.ID, inv.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		if err := s.stockRepo.AdjustQuantities(ctx, deltas); err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(feed.Event{Entity: "sale", Action: "created", Payload: inv})
	s.recordAudit(ctx, "sale", inv.ID, audit.ActionSale, inv)
	logger.Info(ctx, "sale recorded", "id", inv.ID, "number", inv.Number, "total", inv.Total)
	return nil
}

// RecordDebt writes an unpaid invoice with a floor check: inside one
// serializable atomic unit every referenced ledger row is read and locked
// first; if any decrement would drive quantity below zero the whole unit
// aborts with an insufficient-stock error and nothing is written.
//
// If the invoice carries a customer name, the directory gains an entry for
// it beforehand. That upsert is a best-effort side channel outside the
// atomic unit: it is attempted first and not rolled back if the debt write
// later fails.
func (s *Service) RecordDebt(ctx context.Context, inv *invoice.Invoice) error {
	inv.Status = invoice.StatusUnpaid
	if err := inv.Validate(ctx); err != nil {
		return err
	}

	if inv.CustomerName != "" && s.customers != nil {
		if err := s.customers.EnsureByName(ctx, inv.CustomerName); err != nil {
			logger.Warn(ctx, "customer directory upsert failed",
				"name", inv.CustomerName, "error", err)
		}
	}

	if err := s.ensureNumber(ctx, inv); err != nil {
		return err
	}

	// A cart may repeat a SKU across lines; the floor check and the
	// decrement must both see the combined quantity per item, not each
	// line alone.
	totals := make(map[id.ID]int64, len(inv.Lines))
	order := make([]id.ID, 0, len(inv.Lines))
	for _, line := range inv.Lines {
		if _, seen := totals[line.ItemID]; !seen {
			order = append(order, line.ItemID)
		}
		totals[line.ItemID] += line.Quantity
	}

	err := s.txManager.RunSerializable(ctx, func(ctx context.Context) error {
		// Read phase: lock every referenced ledger row and floor-check.
		for _, itemID := range order {
			item, err := s.stockRepo.GetForUpdate(ctx, itemID)
			if err != nil {
				return err
			}
			if item.Quantity-totals[itemID] < 0 {
				return apperror.NewInsufficientStock(item.Name, totals[itemID], item.Quantity)
			}
		}

		// Write phase.
		for _, itemID := range order {
			if err := s.stockRepo.AdjustQuantity(ctx, itemID, -totals[itemID]); err != nil {
				return fmt.Errorf("decrement stock: %w", err)
			}
		}
		if err := s.debtorsRepo.Create(ctx, inv); err != nil {
			return fmt.Errorf("create debtor: %w", err)
		}
		if err := s.debtorsRepo.SaveLines(ctx, inv.ID, inv.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(feed.Event{Entity: "debtor", Action: "created", Payload: inv})
	s.recordAudit(ctx, "debtor", inv.ID, audit.ActionDebt, inv)
	logger.Info(ctx, "debt recorded", "id", inv.ID, "number", inv.Number, "customer", inv.CustomerName)
	return nil
}

// SettleDebt migrates a debtor into a sale: one atomic unit creates a paid
// invoice with identical number, lines and total, then deletes the debtor.
// Stock is untouched: it was already decremented at debt creation. If the
// debtor no longer exists (settled or deleted by a concurrent actor) the
// unit aborts with not-found and changes nothing.
func (s *Service) SettleDebt(ctx context.Context, debtorID id.ID) (*invoice.Invoice, error) {
	var sale *invoice.Invoice

	err := s.txManager.RunSerializable(ctx, func(ctx context.Context) error {
		debtor, err := s.debtorsRepo.GetForUpdate(ctx, debtorID)
		if err != nil {
			return err
		}
		lines, err := s.debtorsRepo.GetLines(ctx, debtorID)
		if err != nil {
			return fmt.Errorf("get lines: %w", err)
		}

		sale = invoice.NewInvoice(debtor.CustomerName, debtor.Date, invoice.StatusPaid)
		sale.Number = debtor.Number
		sale.Lines = lines
		sale.Total = debtor.Total

		if err := s.salesRepo.Create(ctx, sale); err != nil {
			return fmt.Errorf("create sale: %w", err)
		}
		if err := s.salesRepo.SaveLines(ctx, sale.ID, sale.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		if err := s.debtorsRepo.Delete(ctx, debtorID); err != nil {
			return fmt.Errorf("delete debtor: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(feed.Event{Entity: "debtor", Action: "settled", Payload: sale})
	s.recordAudit(ctx, "debtor", debtorID, audit.ActionSettlement, sale)
	logger.Info(ctx, "debt settled", "debtor_id", debtorID, "sale_id", sale.ID, "number", sale.Number)
	return sale, nil
}

// DeleteTransaction removes a sale or debtor and reverses its stock impact.
// The reversal procedure is selected strictly by the record's status tag:
// paid routes to the sales collection, unpaid to the debtors collection,
// and any other value is refused before any transaction begins, with
// nothing deleted and nothing reversed.
func (s *Service) DeleteTransaction(ctx context.Context, recordID id.ID, rawStatus string) error {
	status, err := invoice.ParseStatus(rawStatus)
	if err != nil {
		return err
	}

	var (
		repo   invoice.Repository
		entity string
	)
	switch status {
	case invoice.StatusPaid:
		repo, entity = s.salesRepo, "sale"
	case invoice.StatusUnpaid:
		repo, entity = s.debtorsRepo, "debtor"
	}

	err = s.txManager.RunSerializable(ctx, func(ctx context.Context) error {
		rec, err := repo.GetForUpdate(ctx, recordID)
		if err != nil {
			return err
		}
		lines, err := repo.GetLines(ctx, recordID)
		if err != nil {
			return fmt.Errorf("get lines: %w", err)
		}

		// Read phase: snapshot every referenced ledger row before any
		// write. Items that no longer exist are skipped; reversal is
		// best-effort per line, the unit itself still commits.
		restore := make([]invoice.Line, 0, len(lines))
		for _, line := range lines {
			_, err := s.stockRepo.GetForUpdate(ctx, line.ItemID)
			if err != nil {
				if apperror.IsNotFound(err) {
					logger.Warn(ctx, "reversal target vanished, skipping line",
						"record_id", recordID, "item_id", line.ItemID)
					continue
				}
				return err
			}
			restore = append(restore, line)
		}

		// Write phase.
		for _, line := range restore {
			if err := s.stockRepo.AdjustQuantity(ctx, line.ItemID, line.Quantity); err != nil {
				return fmt.Errorf("restore stock: %w", err)
			}
		}
		if err := repo.Delete(ctx, rec.ID); err != nil {
			return fmt.Errorf("delete %s: %w", entity, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(feed.Event{Entity: entity, Action: "deleted", Payload: map[string]any{"id": recordID}})
	s.recordAudit(ctx, entity, recordID, audit.ActionDeletion, map[string]any{"status": status})
	logger.Info(ctx, "transaction deleted with stock reversal", "id", recordID, "entity", entity)
	return nil
}

// RecordPurchase writes a purchase record and, per line, increments the
// target item's quantity and overwrites its cost price with the purchase's
// unit cost (last-purchase-price-wins; no weighted averaging).
func (s *Service) RecordPurchase(ctx context.Context, p *purchase.Purchase) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	if p.Number == "" && s.numerator != nil {
		cfg := numerator.DefaultConfig("PUR")
		number, err := s.numerator.GetNextNumber(ctx, cfg, nil, p.Date)
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		p.Number = number
	}

	err := s.txManager.RunSerializable(ctx, func(ctx context.Context) error {
		// Read phase: every target must exist.
		for _, line := range p.Lines {
			if _, err := s.stockRepo.GetForUpdate(ctx, line.ItemID); err != nil {
				return err
			}
		}

		// Write phase.
		if err := s.purchaseRepo.Create(ctx, p); err != nil {
			return fmt.Errorf("create purchase: %w", err)
		}
		if err := s.purchaseRepo.SaveLines(ctx, p.ID, p.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		for _, line := range p.Lines {
			if err := s.stockRepo.AdjustQuantity(ctx, line.ItemID, line.Quantity); err != nil {
				return fmt.Errorf("increment stock: %w", err)
			}
			if err := s.stockRepo.SetCostPrice(ctx, line.ItemID, line.UnitCost); err != nil {
				return fmt.Errorf("set cost price: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(feed.Event{Entity: "purchase", Action: "created", Payload: p})
	s.recordAudit(ctx, "purchase", p.ID, audit.ActionPurchase, p)
	logger.Info(ctx, "purchase recorded", "id", p.ID, "number", p.Number, "total", p.Total)
	return nil
}

// ensureNumber assigns the next date-scoped invoice number when missing.
func (s *Service) ensureNumber(ctx context.Context, inv *invoice.Invoice) error {
	if inv.Number != "" || s.numerator == nil {
		return nil
	}
	cfg := numerator.DefaultConfig("INV")
	number, err := s.numerator.GetNextNumber(ctx, cfg, nil, inv.Date)
	if err != nil {
		return fmt.Errorf("generate number: %w", err)
	}
	inv.Number = number
	return nil
}

func (s *Service) publish(event feed.Event) {
	if s.publisher != nil {
		s.publisher.Publish(event)
	}
}

// recordAudit writes a trail entry; failures are logged and swallowed.
func (s *Service) recordAudit(ctx context.Context, entityType string, entityID id.ID, action audit.Action, changes any) {
	if s.auditLog == nil {
		return
	}
	entry, err := audit.NewEntry(entityType, entityID, action, appctx.GetUserID(ctx), changes)
	if err == nil {
		err = s.auditLog.Record(ctx, entry)
	}
	if err != nil {
		logger.Warn(ctx, "audit record failed", "entity", entityType, "id", entityID, "error", err)
	}
}
