package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/Cotizaciones-api/internal/domain"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/repository"
)

var _ repository.InventoryRepository = (*InventoryRepo)(nil)

// InventoryRepo productos en memoria.
type InventoryRepo struct {
	db access
}

func (r *InventoryRepo) Create(ctx context.Context, item *entity.InventoryItem) error {
	if err := r.db.fault("inventory.insert"); err != nil {
		return err
	}
	if item.Stock < 0 || item.Price.IsNegative() {
		return domain.ErrInvalidInput
	}
	return r.db.write(func(st *state) error {
		if _, ok := st.inventory[item.ID]; ok {
			return domain.ErrDuplicate
		}
		st.inventory[item.ID] = *item
		return nil
	})
}

func (r *InventoryRepo) GetByID(ctx context.Context, id string) (*entity.InventoryItem, error) {
	var out *entity.InventoryItem
	err := r.db.read(func(st *state) error {
		if it, ok := st.inventory[id]; ok {
			out = &it
		}
		return nil
	})
	return out, err
}

// GetForUpdate en memoria la tx ya tiene el lock exclusivo.
func (r *InventoryRepo) GetForUpdate(ctx context.Context, id string) (*entity.InventoryItem, error) {
	return r.GetByID(ctx, id)
}

func (r *InventoryRepo) Update(ctx context.Context, item *entity.InventoryItem) error {
	if item.Stock < 0 || item.Price.IsNegative() {
		return domain.ErrInvalidInput
	}
	return r.db.write(func(st *state) error {
		cur, ok := st.inventory[item.ID]
		if !ok {
			return domain.ErrNotFound
		}
		upd := *item
		upd.CreatedAt = cur.CreatedAt
		st.inventory[item.ID] = upd
		return nil
	})
}

func (r *InventoryRepo) List(ctx context.Context) ([]*entity.InventoryItem, error) {
	var list []*entity.InventoryItem
	err := r.db.read(func(st *state) error {
		for _, it := range st.inventory {
			it := it
			list = append(list, &it)
		}
		return nil
	})
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, err
}

func (r *InventoryRepo) Delete(ctx context.Context, id string) error {
	return r.db.write(func(st *state) error {
		if _, ok := st.inventory[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.inventory, id)
		return nil
	})
}

func (r *InventoryRepo) DebitStock(ctx context.Context, id string, qty int) (bool, error) {
	if err := r.db.fault("inventory.debit"); err != nil {
		return false, err
	}
	var ok bool
	err := r.db.write(func(st *state) error {
		it, found := st.inventory[id]
		if !found || it.Stock < qty {
			return nil
		}
		it.Stock -= qty
		it.UpdatedAt = time.Now()
		st.inventory[id] = it
		ok = true
		return nil
	})
	return ok, err
}

func (r *InventoryRepo) CreditStock(ctx context.Context, id string, qty int) (bool, error) {
	if err := r.db.fault("inventory.credit"); err != nil {
		return false, err
	}
	var ok bool
	err := r.db.write(func(st *state) error {
		it, found := st.inventory[id]
		if !found {
			return nil
		}
		it.Stock += qty
		it.UpdatedAt = time.Now()
		st.inventory[id] = it
		ok = true
		return nil
	})
	return ok, err
}
