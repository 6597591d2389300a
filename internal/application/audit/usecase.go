package audit

import (
	"context"

	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
	"github.com/jhoicas/Cotizaciones-api/internal/domain"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/repository"
)

// UseCase consulta del log de auditoría (solo admin).
type UseCase struct {
	repo repository.AuditRepository
}

func NewUseCase(repo repository.AuditRepository) *UseCase {
	return &UseCase{repo: repo}
}

// List devuelve la página pedida, más recientes primero.
func (uc *UseCase) List(ctx context.Context, actor entity.Actor, page dto.PageRequest) ([]dto.AuditLogResponse, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	page.DefaultPage()
	entries, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AuditLogResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.AuditLogResponse{
			ID:        e.ID,
			UserID:    e.UserID,
			Username:  e.Username,
			Action:    e.Action,
			Details:   e.Details,
			CreatedAt: e.CreatedAt,
		})
	}
	return out, nil
}
