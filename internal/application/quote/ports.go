package quote

import (
	"context"

	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/repository"
)

// TxRunner ejecuta fn en una transacción con los repos atados a ella.
// Si fn devuelve error no queda ningún cambio persistido.
type TxRunner interface {
	RunQuote(ctx context.Context, fn func(
		quoteRepo repository.QuoteRepository,
		inventoryRepo repository.InventoryRepository,
		binRepo repository.RecycleBinRepository,
	) error) error
}

// PDFGenerator genera el PDF de una cotización.
type PDFGenerator interface {
	GenerateQuotePDF(ctx context.Context, quote *entity.Quote, items []*entity.QuoteItem) ([]byte, error)
}

// Observer recibe el resultado de cada transición (métricas).
type Observer interface {
	ObserveTransition(action, outcome string)
}

type nopObserver struct{}

func (nopObserver) ObserveTransition(string, string) {}
