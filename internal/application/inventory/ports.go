package inventory

import (
	"context"

	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
)

// Archiver mueve un producto a la papelera y lo borra en una sola transacción.
type Archiver interface {
	ArchiveInventoryItem(ctx context.Context, actor entity.Actor, id string) (*entity.InventoryItem, error)
}
