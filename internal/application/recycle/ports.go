package recycle

import (
	"context"

	"github.com/jhoicas/Cotizaciones-api/internal/domain/repository"
)

// TxRunner ejecuta fn en una transacción con los repos necesarios para archivar y restaurar.
type TxRunner interface {
	RunArchive(ctx context.Context, fn func(
		binRepo repository.RecycleBinRepository,
		inventoryRepo repository.InventoryRepository,
		userRepo repository.UserRepository,
	) error) error
}
