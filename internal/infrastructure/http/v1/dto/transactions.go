package dto

import (
	"time"

	"tokopos/internal/core/apperror"
	"tokopos/internal/core/id"
	"tokopos/internal/core/types"
	"tokopos/internal/domain/documents/invoice"
)

// --- Request DTOs ---

type TransactionLineRequest struct {
	ItemID    string      `json:"itemId" binding:"required"`
	Quantity  int64       `json:"quantity" binding:"required,gt=0"`
	UnitPrice types.Money `json:"unitPrice"`
	PriceType string      `json:"priceType,omitempty"`
}

// CreateTransactionRequest is the shared cart shape for sales and debts.
// The handler resolves item names, cost snapshots and list prices from the
// ledger before handing the record to the orchestrator.
type CreateTransactionRequest struct {
	Number       string                   `json:"number,omitempty"`
	CustomerName string                   `json:"customerName,omitempty"`
	Date         string                   `json:"date" binding:"required"`
	Lines        []TransactionLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ToEntity builds the bare invoice: parsed date, parsed item IDs, client
// quantities and prices. Ledger snapshots are filled in by the handler.
func (r *CreateTransactionRequest) ToEntity(status invoice.Status) (*invoice.Invoice, error) {
	date, err := ParseCalendarDate("date", r.Date)
	if err != nil {
		return nil, err
	}

	inv := invoice.NewInvoice(r.CustomerName, date, status)
	inv.Number = r.Number

	for i, line := range r.Lines {
		itemID, err := id.Parse(line.ItemID)
		if err != nil {
			return nil, apperror.NewValidation("invalid stock item id").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		priceType := invoice.PriceType(line.PriceType)
		if priceType == "" {
			priceType = invoice.PriceRetail
		}
		inv.AddLine(itemID, "", line.Quantity, line.UnitPrice, priceType, types.Zero())
	}

	return inv, nil
}

// --- Response DTOs ---

type TransactionLineResponse struct {
	LineID    string      `json:"lineId"`
	LineNo    int         `json:"lineNo"`
	ItemID    string      `json:"itemId"`
	ItemName  string      `json:"itemName"`
	Quantity  int64       `json:"quantity"`
	UnitPrice types.Money `json:"unitPrice"`
	PriceType string      `json:"priceType"`
	UnitCost  types.Money `json:"unitCost"`
	Amount    types.Money `json:"amount"`
}

type TransactionResponse struct {
	ID           string                    `json:"id"`
	Number       string                    `json:"number"`
	CustomerName string                    `json:"customerName,omitempty"`
	Date         string                    `json:"date"`
	Total        types.Money               `json:"total"`
	Status       string                    `json:"status"`
	Lines        []TransactionLineResponse `json:"lines,omitempty"`
	CreatedAt    time.Time                 `json:"createdAt"`
}

func FromInvoice(inv *invoice.Invoice) *TransactionResponse {
	resp := &TransactionResponse{
		ID:           inv.ID.String(),
		Number:       inv.Number,
		CustomerName: inv.CustomerName,
		Date:         FormatCalendarDate(inv.Date),
		Total:        inv.Total,
		Status:       string(inv.Status),
		CreatedAt:    inv.CreatedAt,
	}

	if len(inv.Lines) > 0 {
		resp.Lines = make([]TransactionLineResponse, len(inv.Lines))
		for i, line := range inv.Lines {
			resp.Lines[i] = TransactionLineResponse{
				LineID:    line.LineID.String(),
				LineNo:    line.LineNo,
				ItemID:    line.ItemID.String(),
				ItemName:  line.ItemName,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
				PriceType: string(line.PriceType),
				UnitCost:  line.UnitCost,
				Amount:    line.Amount(),
			}
		}
	}

	return resp
}

func FromInvoices(invs []*invoice.Invoice) []*TransactionResponse {
	out := make([]*TransactionResponse, len(invs))
	for i, inv := range invs {
		out[i] = FromInvoice(inv)
	}
	return out
}
