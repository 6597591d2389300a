package repository

import (
	"context"

	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
)

// RecycleBinRepository papelera de reciclaje (snapshots de registros borrados).
type RecycleBinRepository interface {
	Create(ctx context.Context, entry *entity.RecycleBinEntry) error
	GetByID(ctx context.Context, id string) (*entity.RecycleBinEntry, error)
	List(ctx context.Context) ([]*entity.RecycleBinEntry, error)
	Delete(ctx context.Context, id string) error
}
