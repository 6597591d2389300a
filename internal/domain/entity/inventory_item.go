package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItem representa un producto del inventario.
// Stock nunca es negativo; además de las ediciones del admin lo modifican
// la aprobación y la reversión de cotizaciones.
type InventoryItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
