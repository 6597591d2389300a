package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/Cotizaciones-api/internal/domain"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/repository"
)

var _ repository.RecycleBinRepository = (*RecycleBinRepo)(nil)

// RecycleBinRepo papelera en memoria.
type RecycleBinRepo struct {
	db access
}

func (r *RecycleBinRepo) Create(ctx context.Context, e *entity.RecycleBinEntry) error {
	if err := r.db.fault("recycle_bin.insert"); err != nil {
		return err
	}
	return r.db.write(func(st *state) error {
		stored := *e
		stored.Data = append([]byte(nil), e.Data...)
		stored.DeletedByName = ""
		st.bin[e.ID] = stored
		return nil
	})
}

func withDeleter(st *state, e entity.RecycleBinEntry) *entity.RecycleBinEntry {
	if u, ok := st.users[e.DeletedBy]; ok {
		e.DeletedByName = u.Username
	}
	return &e
}

func (r *RecycleBinRepo) GetByID(ctx context.Context, id string) (*entity.RecycleBinEntry, error) {
	var out *entity.RecycleBinEntry
	err := r.db.read(func(st *state) error {
		if e, ok := st.bin[id]; ok {
			out = withDeleter(st, e)
		}
		return nil
	})
	return out, err
}

func (r *RecycleBinRepo) List(ctx context.Context) ([]*entity.RecycleBinEntry, error) {
	var list []*entity.RecycleBinEntry
	err := r.db.read(func(st *state) error {
		for _, e := range st.bin {
			list = append(list, withDeleter(st, e))
		}
		return nil
	})
	sort.SliceStable(list, func(i, j int) bool { return list[i].DeletedAt.After(list[j].DeletedAt) })
	return list, err
}

func (r *RecycleBinRepo) Delete(ctx context.Context, id string) error {
	return r.db.write(func(st *state) error {
		if _, ok := st.bin[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.bin, id)
		return nil
	})
}
