package repository

import (
	"context"

	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
)

// InventoryRepository define el puerto de persistencia para InventoryItem (Ledger Store).
// GetByID y GetForUpdate devuelven (nil, nil) si el producto no existe.
type InventoryRepository interface {
	Create(ctx context.Context, item *entity.InventoryItem) error
	GetByID(ctx context.Context, id string) (*entity.InventoryItem, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.InventoryItem, error)
	Update(ctx context.Context, item *entity.InventoryItem) error
	List(ctx context.Context) ([]*entity.InventoryItem, error)
	Delete(ctx context.Context, id string) error
	// DebitStock resta qty solo si stock >= qty; false si no se actualizó ninguna fila.
	DebitStock(ctx context.Context, id string, qty int) (bool, error)
	// CreditStock suma qty sin tope; false si el producto no existe.
	CreditStock(ctx context.Context, id string, qty int) (bool, error)
}
