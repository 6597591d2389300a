package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/Cotizaciones-api/internal/domain"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo usuarios en memoria. Username es único.
type UserRepo struct {
	db access
}

func usernameTaken(st *state, username, exceptID string) bool {
	for id, u := range st.users {
		if u.Username == username && id != exceptID {
			return true
		}
	}
	return false
}

func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	if err := r.db.fault("users.insert"); err != nil {
		return err
	}
	return r.db.write(func(st *state) error {
		if _, ok := st.users[u.ID]; ok || usernameTaken(st, u.Username, "") {
			return domain.ErrDuplicate
		}
		st.users[u.ID] = *u
		return nil
	})
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var out *entity.User
	err := r.db.read(func(st *state) error {
		if u, ok := st.users[id]; ok {
			out = &u
		}
		return nil
	})
	return out, err
}

func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	var out *entity.User
	err := r.db.read(func(st *state) error {
		for _, u := range st.users {
			if u.Username == username {
				u := u
				out = &u
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *UserRepo) Update(ctx context.Context, u *entity.User) error {
	return r.db.write(func(st *state) error {
		cur, ok := st.users[u.ID]
		if !ok {
			return domain.ErrNotFound
		}
		if usernameTaken(st, u.Username, u.ID) {
			return domain.ErrDuplicate
		}
		upd := *u
		upd.CreatedAt = cur.CreatedAt
		st.users[u.ID] = upd
		return nil
	})
}

func (r *UserRepo) List(ctx context.Context) ([]*entity.User, error) {
	var list []*entity.User
	err := r.db.read(func(st *state) error {
		for _, u := range st.users {
			u := u
			list = append(list, &u)
		}
		return nil
	})
	sort.Slice(list, func(i, j int) bool { return list[i].Username < list[j].Username })
	return list, err
}

func (r *UserRepo) Delete(ctx context.Context, id string) error {
	return r.db.write(func(st *state) error {
		if _, ok := st.users[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.users, id)
		return nil
	})
}

func (r *UserRepo) CountByRole(ctx context.Context, role string) (int, error) {
	var n int
	err := r.db.read(func(st *state) error {
		for _, u := range st.users {
			if u.Role == role {
				n++
			}
		}
		return nil
	})
	return n, err
}
