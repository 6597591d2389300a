package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo log de auditoría en memoria.
type AuditRepo struct {
	db access
}

func (r *AuditRepo) Create(ctx context.Context, e *entity.AuditLogEntry) error {
	if err := r.db.fault("audit_logs.insert"); err != nil {
		return err
	}
	return r.db.write(func(st *state) error {
		stored := *e
		stored.Username = ""
		st.audit = append(st.audit, stored)
		return nil
	})
}

func (r *AuditRepo) List(ctx context.Context, limit, offset int) ([]*entity.AuditLogEntry, error) {
	var list []*entity.AuditLogEntry
	err := r.db.read(func(st *state) error {
		for i := len(st.audit) - 1; i >= 0; i-- {
			e := st.audit[i]
			if u, ok := st.users[e.UserID]; ok {
				e.Username = u.Username
			}
			list = append(list, &e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	if offset >= len(list) {
		return nil, nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list, nil
}
