package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuoteItemRequest línea de una cotización. ProductID vacío = ítem manual (no afecta stock).
type QuoteItemRequest struct {
	ProductID   string          `json:"product_id" validate:"omitempty,uuid"`
	Description string          `json:"description" validate:"required,max=500"`
	Quantity    int             `json:"quantity" validate:"gt=0"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// CreateQuoteRequest body para POST /api/quotes.
// TotalAmount es opcional; si viene debe coincidir con la suma de las líneas.
type CreateQuoteRequest struct {
	ClientName   string             `json:"client_name" validate:"required,max=200"`
	QuoteDate    string             `json:"quote_date" validate:"omitempty,datetime=2006-01-02"`
	ValidityDays int                `json:"validity_days" validate:"gte=0"`
	TotalAmount  *decimal.Decimal   `json:"total_amount,omitempty"`
	Items        []QuoteItemRequest `json:"items" validate:"dive"`
}

// QuoteResponse cabecera de cotización.
type QuoteResponse struct {
	ID           string          `json:"id"`
	ClientName   string          `json:"client_name"`
	QuoteDate    string          `json:"quote_date"`
	ValidityDays int             `json:"validity_days"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Status       string          `json:"status"`
	CreatedBy    string          `json:"created_by,omitempty"`
	Author       string          `json:"author"`
	CreatedAt    time.Time       `json:"created_at"`
}

// QuoteItemResponse línea de cotización.
type QuoteItemResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id,omitempty"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
}

// QuoteDetailResponse cotización con sus líneas (GET /api/quotes/:id).
type QuoteDetailResponse struct {
	QuoteResponse
	Items []QuoteItemResponse `json:"items"`
}
