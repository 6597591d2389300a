package repository

import (
	"context"

	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
)

// AuditRepository log de auditoría de solo inserción.
type AuditRepository interface {
	Create(ctx context.Context, entry *entity.AuditLogEntry) error
	List(ctx context.Context, limit, offset int) ([]*entity.AuditLogEntry, error)
}
