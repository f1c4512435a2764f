package dto

import (
	"time"

	"tokopos/internal/core/types"
	"tokopos/internal/domain/catalog/stockitem"
)

// --- Request DTOs ---

type CreateStockItemRequest struct {
	Code           string      `json:"code" binding:"required"`
	Name           string      `json:"name" binding:"required"`
	Quantity       int64       `json:"quantity,omitempty"`
	SellPrice      types.Money `json:"sellPrice"`
	WholesalePrice types.Money `json:"wholesalePrice"`
	CostPrice      types.Money `json:"costPrice"`
	Category       string      `json:"category,omitempty"`
}

func (r *CreateStockItemRequest) ToEntity() *stockitem.StockItem {
	item := stockitem.NewStockItem(r.Code, r.Name)
	item.Quantity = r.Quantity
	item.SellPrice = r.SellPrice
	item.WholesalePrice = r.WholesalePrice
	item.CostPrice = r.CostPrice
	item.Category = r.Category
	return item
}

type UpdateStockItemRequest struct {
	Code           *string      `json:"code,omitempty"`
	Name           *string      `json:"name,omitempty"`
	SellPrice      *types.Money `json:"sellPrice,omitempty"`
	WholesalePrice *types.Money `json:"wholesalePrice,omitempty"`
	CostPrice      *types.Money `json:"costPrice,omitempty"`
	Category       *string      `json:"category,omitempty"`

	// Version must match the stored record; mismatches are rejected as
	// concurrent modifications.
	Version int `json:"version" binding:"required"`
}

// ApplyTo merges the partial update into the stored item. Quantity is
// deliberately absent: commercial events own quantity changes.
func (r *UpdateStockItemRequest) ApplyTo(item *stockitem.StockItem) {
	item.Version = r.Version
	if r.Code != nil {
		item.Code = *r.Code
	}
	if r.Name != nil {
		item.Name = *r.Name
	}
	if r.SellPrice != nil {
		item.SellPrice = *r.SellPrice
	}
	if r.WholesalePrice != nil {
		item.WholesalePrice = *r.WholesalePrice
	}
	if r.CostPrice != nil {
		item.CostPrice = *r.CostPrice
	}
	if r.Category != nil {
		item.Category = *r.Category
	}
}

// --- Response DTOs ---

type StockItemResponse struct {
	ID             string      `json:"id"`
	Code           string      `json:"code"`
	Name           string      `json:"name"`
	Quantity       int64       `json:"quantity"`
	SellPrice      types.Money `json:"sellPrice"`
	WholesalePrice types.Money `json:"wholesalePrice"`
	CostPrice      types.Money `json:"costPrice"`
	Category       string      `json:"category,omitempty"`
	DeletionMark   bool        `json:"deletionMark,omitempty"`
	Version        int         `json:"version"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

func FromStockItem(item *stockitem.StockItem) *StockItemResponse {
	return &StockItemResponse{
		ID:             item.ID.String(),
		Code:           item.Code,
		Name:           item.Name,
		Quantity:       item.Quantity,
		SellPrice:      item.SellPrice,
		WholesalePrice: item.WholesalePrice,
		CostPrice:      item.CostPrice,
		Category:       item.Category,
		DeletionMark:   item.DeletionMark,
		Version:        item.Version,
		CreatedAt:      item.CreatedAt,
		UpdatedAt:      item.UpdatedAt,
	}
}

func FromStockItems(items []*stockitem.StockItem) []*StockItemResponse {
	out := make([]*StockItemResponse, len(items))
	for i, item := range items {
		out[i] = FromStockItem(item)
	}
	return out
}
