package repository

import (
	"context"

	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
)

// QuoteRepository define el puerto de persistencia para cotizaciones y sus líneas (Quote Store).
type QuoteRepository interface {
	Create(ctx context.Context, quote *entity.Quote) error
	AddItem(ctx context.Context, item *entity.QuoteItem) error
	GetByID(ctx context.Context, id string) (*entity.Quote, error)
	// GetForUpdate bloquea la cabecera para serializar aprobaciones/reversiones de la misma cotización.
	GetForUpdate(ctx context.Context, id string) (*entity.Quote, error)
	ListItems(ctx context.Context, quoteID string) ([]*entity.QuoteItem, error)
	List(ctx context.Context) ([]*entity.Quote, error)
	UpdateStatus(ctx context.Context, id, status string) error
	// Delete borra la cotización y sus líneas; false si no existía.
	Delete(ctx context.Context, id string) (bool, error)
}
