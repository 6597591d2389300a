package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Cotizaciones-api/internal/domain"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/repository"
)

var _ repository.RecycleBinRepository = (*RecycleBinRepo)(nil)

// RecycleBinRepo papelera sobre la tabla recycle_bin (data JSONB).
type RecycleBinRepo struct {
	q Querier
}

func NewRecycleBinRepository(q Querier) *RecycleBinRepo {
	return &RecycleBinRepo{q: q}
}

const recycleSelect = `
	SELECT r.id, r.entity_kind, r.original_id, r.data, r.deleted_by, COALESCE(u.username, ''), r.deleted_at
	FROM recycle_bin r
	LEFT JOIN users u ON u.id = r.deleted_by`

func scanRecycleEntry(row pgx.Row) (*entity.RecycleBinEntry, error) {
	var (
		e         entity.RecycleBinEntry
		kind      string
		data      []byte
		deletedBy *string
	)
	if err := row.Scan(&e.ID, &kind, &e.OriginalID, &data, &deletedBy, &e.DeletedByName, &e.DeletedAt); err != nil {
		return nil, err
	}
	e.Kind = entity.EntityKind(kind)
	e.Data = json.RawMessage(data)
	e.DeletedBy = derefString(deletedBy)
	return &e, nil
}

// Create guarda el snapshot.
func (r *RecycleBinRepo) Create(ctx context.Context, e *entity.RecycleBinEntry) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO recycle_bin (id, entity_kind, original_id, data, deleted_by, deleted_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, string(e.Kind), e.OriginalID, e.Data, nullableID(e.DeletedBy), e.DeletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert recycle bin entry: %w", err)
	}
	return nil
}

// GetByID obtiene una entrada; (nil, nil) si no existe.
func (r *RecycleBinRepo) GetByID(ctx context.Context, id string) (*entity.RecycleBinEntry, error) {
	e, err := scanRecycleEntry(r.q.QueryRow(ctx, recycleSelect+` WHERE r.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get recycle bin entry: %w", err)
	}
	return e, nil
}

// List entradas más recientes primero.
func (r *RecycleBinRepo) List(ctx context.Context) ([]*entity.RecycleBinEntry, error) {
	rows, err := r.q.Query(ctx, recycleSelect+` ORDER BY r.deleted_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list recycle bin: %w", err)
	}
	defer rows.Close()

	var list []*entity.RecycleBinEntry
	for rows.Next() {
		e, err := scanRecycleEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recycle bin entry: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// Delete quita la entrada (solo al restaurar).
func (r *RecycleBinRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM recycle_bin WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete recycle bin entry: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
