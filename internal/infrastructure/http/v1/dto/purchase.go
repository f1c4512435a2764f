package dto

import (
	"time"

	"tokopos/internal/core/apperror"
	"tokopos/internal/core/id"
	"tokopos/internal/core/types"
	"tokopos/internal/domain/documents/purchase"
)

// --- Request DTOs ---

type PurchaseLineRequest struct {
	ItemID   string      `json:"itemId" binding:"required"`
	Quantity int64       `json:"quantity" binding:"required,gt=0"`
	UnitCost types.Money `json:"unitCost"`
}

type CreatePurchaseRequest struct {
	Number       string                `json:"number,omitempty"`
	SupplierName string                `json:"supplierName,omitempty"`
	Date         string                `json:"date" binding:"required"`
	Lines        []PurchaseLineRequest `json:"lines" binding:"required,min=1,dive"`
}

func (r *CreatePurchaseRequest) ToEntity() (*purchase.Purchase, error) {
	date, err := ParseCalendarDate("date", r.Date)
	if err != nil {
		return nil, err
	}

	p := purchase.NewPurchase(r.SupplierName, date)
	p.Number = r.Number

	for i, line := range r.Lines {
		itemID, err := id.Parse(line.ItemID)
		if err != nil {
			return nil, apperror.NewValidation("invalid stock item id").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		p.AddLine(itemID, "", line.Quantity, line.UnitCost)
	}

	return p, nil
}

// --- Response DTOs ---

type PurchaseLineResponse struct {
	LineID   string      `json:"lineId"`
	LineNo   int         `json:"lineNo"`
	ItemID   string      `json:"itemId"`
	ItemName string      `json:"itemName"`
	Quantity int64       `json:"quantity"`
	UnitCost types.Money `json:"unitCost"`
	Amount   types.Money `json:"amount"`
}

type PurchaseResponse struct {
	ID           string                 `json:"id"`
	Number       string                 `json:"number"`
	SupplierName string                 `json:"supplierName,omitempty"`
	Date         string                 `json:"date"`
	Total        types.Money            `json:"total"`
	Lines        []PurchaseLineResponse `json:"lines,omitempty"`
	CreatedAt    time.Time              `json:"createdAt"`
}

func FromPurchase(p *purchase.Purchase) *PurchaseResponse {
	resp := &PurchaseResponse{
		ID:           p.ID.String(),
		Number:       p.Number,
		SupplierName: p.SupplierName,
		Date:         FormatCalendarDate(p.Date),
		Total:        p.Total,
		CreatedAt:    p.CreatedAt,
	}

	if len(p.Lines) > 0 {
		resp.Lines = make([]PurchaseLineResponse, len(p.Lines))
		for i, line := range p.Lines {
			resp.Lines[i] = PurchaseLineResponse{
				LineID:   line.LineID.String(),
				LineNo:   line.LineNo,
				ItemID:   line.ItemID.String(),
				ItemName: line.ItemName,
				Quantity: line.Quantity,
				UnitCost: line.UnitCost,
				Amount:   line.Amount(),
			}
		}
	}

	return resp
}

func FromPurchases(ps []*purchase.Purchase) []*PurchaseResponse {
	out := make([]*PurchaseResponse, len(ps))
	for i, p := range ps {
		out[i] = FromPurchase(p)
	}
	return out
}
