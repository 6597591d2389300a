package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una cotización.
const (
	QuoteStatusRevision = "revision"
	QuoteStatusApproved = "aprobada"
)

// Quote cabecera de una cotización. TotalAmount se fija al crearla y no se recalcula.
type Quote struct {
	ID           string          `json:"id"`
	ClientName   string          `json:"client_name"`
	QuoteDate    time.Time       `json:"quote_date"`
	ValidityDays int             `json:"validity_days"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Status       string          `json:"status"`
	CreatedBy    string          `json:"created_by"`
	Author       string          `json:"author,omitempty"` // username del creador (solo lectura)
	CreatedAt    time.Time       `json:"created_at"`
}

// IsApproved indica si la cotización ya descontó stock.
func (q *Quote) IsApproved() bool {
	return q.Status == QuoteStatusApproved
}

// QuoteItem línea de una cotización. ProductID vacío = ítem manual (sin stock).
type QuoteItem struct {
	ID          string          `json:"id"`
	QuoteID     string          `json:"quote_id"`
	ProductID   string          `json:"product_id,omitempty"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
}

// HasProduct indica si la línea referencia un producto del inventario.
func (i *QuoteItem) HasProduct() bool {
	return i.ProductID != ""
}

// LineTotal cantidad × precio unitario.
func LineTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}
