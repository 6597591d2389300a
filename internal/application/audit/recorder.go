package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/repository"
	"github.com/jhoicas/Cotizaciones-api/pkg/logger"
)

// Sink destino de las entradas de auditoría. Record no devuelve error: la operación
// de negocio ya se confirmó y un fallo aquí solo se registra en el log.
type Sink interface {
	Record(ctx context.Context, actor entity.Actor, action, details string)
}

var _ Sink = (*Recorder)(nil)

// Recorder escribe en AuditRepository fuera de la transacción de negocio.
type Recorder struct {
	repo repository.AuditRepository
	log  *logger.Logger
	now  func() time.Time
}

// NewRecorder construye el Recorder. log puede ser nil.
func NewRecorder(repo repository.AuditRepository, log *logger.Logger) *Recorder {
	if log == nil {
		log = logger.Nop()
	}
	return &Recorder{repo: repo, log: log.Component("audit"), now: time.Now}
}

// Record inserta la entrada; si falla deja un warning y sigue.
func (r *Recorder) Record(ctx context.Context, actor entity.Actor, action, details string) {
	entry := &entity.AuditLogEntry{
		ID:        uuid.New().String(),
		UserID:    actor.UserID,
		Username:  actor.Username,
		Action:    action,
		Details:   details,
		CreatedAt: r.now(),
	}
	if err := r.repo.Create(ctx, entry); err != nil {
		r.log.Warn().Err(err).
			Str("action", action).
			Str("user_id", actor.UserID).
			Msg("no se pudo registrar auditoría")
	}
}
