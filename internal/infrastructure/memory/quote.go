package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/Cotizaciones-api/internal/domain"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/repository"
)

var _ repository.QuoteRepository = (*QuoteRepo)(nil)

// QuoteRepo cotizaciones y líneas en memoria.
type QuoteRepo struct {
	db access
}

func (r *QuoteRepo) Create(ctx context.Context, q *entity.Quote) error {
	if err := r.db.fault("quotes.insert"); err != nil {
		return err
	}
	return r.db.write(func(st *state) error {
		if _, ok := st.quotes[q.ID]; ok {
			return domain.ErrDuplicate
		}
		stored := *q
		stored.Author = ""
		st.quotes[q.ID] = stored
		return nil
	})
}

func (r *QuoteRepo) AddItem(ctx context.Context, it *entity.QuoteItem) error {
	if err := r.db.fault("quote_items.insert"); err != nil {
		return err
	}
	if it.Quantity <= 0 || it.UnitPrice.IsNegative() {
		return domain.ErrInvalidInput
	}
	return r.db.write(func(st *state) error {
		if _, ok := st.quotes[it.QuoteID]; !ok {
			return domain.ErrNotFound
		}
		st.items[it.QuoteID] = append(st.items[it.QuoteID], *it)
		return nil
	})
}

// withAuthor completa el username del creador como hace el LEFT JOIN en SQL.
func withAuthor(st *state, q entity.Quote) *entity.Quote {
	if u, ok := st.users[q.CreatedBy]; ok {
		q.Author = u.Username
	}
	return &q
}

func (r *QuoteRepo) GetByID(ctx context.Context, id string) (*entity.Quote, error) {
	var out *entity.Quote
	err := r.db.read(func(st *state) error {
		if q, ok := st.quotes[id]; ok {
			out = withAuthor(st, q)
		}
		return nil
	})
	return out, err
}

func (r *QuoteRepo) GetForUpdate(ctx context.Context, id string) (*entity.Quote, error) {
	return r.GetByID(ctx, id)
}

func (r *QuoteRepo) ListItems(ctx context.Context, quoteID string) ([]*entity.QuoteItem, error) {
	var list []*entity.QuoteItem
	err := r.db.read(func(st *state) error {
		for _, it := range st.items[quoteID] {
			it := it
			list = append(list, &it)
		}
		return nil
	})
	return list, err
}

func (r *QuoteRepo) List(ctx context.Context) ([]*entity.Quote, error) {
	var list []*entity.Quote
	err := r.db.read(func(st *state) error {
		for _, q := range st.quotes {
			list = append(list, withAuthor(st, q))
		}
		return nil
	})
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, err
}

func (r *QuoteRepo) UpdateStatus(ctx context.Context, id, status string) error {
	if err := r.db.fault("quotes.update_status"); err != nil {
		return err
	}
	return r.db.write(func(st *state) error {
		q, ok := st.quotes[id]
		if !ok {
			return nil
		}
		q.Status = status
		st.quotes[id] = q
		return nil
	})
}

func (r *QuoteRepo) Delete(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := r.db.write(func(st *state) error {
		if _, ok := st.quotes[id]; !ok {
			return nil
		}
		delete(st.quotes, id)
		delete(st.items, id)
		deleted = true
		return nil
	})
	return deleted, err
}
