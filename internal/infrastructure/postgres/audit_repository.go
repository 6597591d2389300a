package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo log de auditoría (solo INSERT y SELECT).
type AuditRepo struct {
	q Querier
}

func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

// Create inserta una entrada.
func (r *AuditRepo) Create(ctx context.Context, e *entity.AuditLogEntry) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO audit_logs (id, user_id, action, details, created_at) VALUES ($1, $2, $3, $4, $5)`,
		e.ID, nullableID(e.UserID), e.Action, e.Details, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// List devuelve las entradas más recientes primero, con el username del actor si aún existe.
func (r *AuditRepo) List(ctx context.Context, limit, offset int) ([]*entity.AuditLogEntry, error) {
	rows, err := r.q.Query(ctx, `
		SELECT a.id, a.user_id, COALESCE(u.username, ''), a.action, a.details, a.created_at
		FROM audit_logs a
		LEFT JOIN users u ON u.id = a.user_id
		ORDER BY a.created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	var list []*entity.AuditLogEntry
	for rows.Next() {
		var (
			e      entity.AuditLogEntry
			userID *string
		)
		if err := rows.Scan(&e.ID, &userID, &e.Username, &e.Action, &e.Details, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		e.UserID = derefString(userID)
		list = append(list, &e)
	}
	return list, rows.Err()
}
