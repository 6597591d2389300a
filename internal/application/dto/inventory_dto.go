package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItemRequest body para POST/PUT /api/inventory.
type InventoryItemRequest struct {
	Name        string          `json:"name" validate:"required,min=1,max=200"`
	Description string          `json:"description" validate:"max=1000"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" validate:"gte=0"`
	Category    string          `json:"category" validate:"max=100"`
}

// InventoryItemResponse salida de un producto.
type InventoryItemResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
