package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Cotizaciones-api/internal/application/audit"
	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
	"github.com/jhoicas/Cotizaciones-api/internal/application/recycle"
	"github.com/jhoicas/Cotizaciones-api/internal/domain"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/repository"
	"golang.org/x/crypto/bcrypt"
)

// UserArchiver borra un usuario pasando por la papelera; guard se evalúa dentro de la transacción.
type UserArchiver interface {
	ArchiveUser(ctx context.Context, actor entity.Actor, id string, guard recycle.UserGuard) (*entity.User, error)
}

// UserUseCase administración de usuarios (solo admin).
type UserUseCase struct {
	repo       repository.UserRepository
	archiver   UserArchiver
	audit      audit.Sink
	bcryptCost int
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia.
func NewUserUseCase(repo repository.UserRepository, archiver UserArchiver, sink audit.Sink) *UserUseCase {
	return &UserUseCase{repo: repo, archiver: archiver, audit: sink, bcryptCost: bcrypt.DefaultCost}
}

// WithBcryptCost permite bajar el costo en tests.
func (uc *UserUseCase) WithBcryptCost(cost int) *UserUseCase {
	uc.bcryptCost = cost
	return uc
}

// List devuelve todos los usuarios sin hash de contraseña.
func (uc *UserUseCase) List(ctx context.Context, actor entity.Actor) ([]dto.UserResponse, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	users, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, entityToUserResponse(u))
	}
	return out, nil
}

// Create hashea la contraseña y persiste. Username repetido -> domain.ErrDuplicate.
func (uc *UserUseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, domain.ErrInvalidInput
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), uc.bcryptCost)
	if err != nil {
		return nil, err
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         entity.NormalizeRole(in.Role),
		CreatedAt:    time.Now(),
	}
	if err := uc.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, actor, entity.AuditCreateUser, fmt.Sprintf("ID: %s - %s", user.ID, user.Username))
	resp := entityToUserResponse(user)
	return &resp, nil
}

// Update cambia solo los campos enviados; password vacío conserva el actual.
func (uc *UserUseCase) Update(ctx context.Context, actor entity.Actor, id string, in dto.UpdateUserRequest) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	username := strings.TrimSpace(in.Username)
	if username == "" && in.Password == "" && in.Role == "" {
		return fmt.Errorf("%w: nada para actualizar", domain.ErrInvalidInput)
	}
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrNotFound
	}
	if username != "" {
		user.Username = username
	}
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), uc.bcryptCost)
		if err != nil {
			return err
		}
		user.PasswordHash = string(hash)
	}
	if in.Role != "" {
		role := entity.NormalizeRole(in.Role)
		if user.Role == entity.RoleAdmin && role != entity.RoleAdmin {
			n, err := uc.repo.CountByRole(ctx, entity.RoleAdmin)
			if err != nil {
				return err
			}
			if n <= 1 {
				return domain.ErrLastAdmin
			}
		}
		user.Role = role
	}
	if err := uc.repo.Update(ctx, user); err != nil {
		return err
	}
	uc.audit.Record(ctx, actor, entity.AuditEditUser, "ID: "+id)
	return nil
}

// Delete archiva y elimina el usuario. Nadie puede borrarse a sí mismo ni borrar al último admin.
func (uc *UserUseCase) Delete(ctx context.Context, actor entity.Actor, id string) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	if id == actor.UserID {
		return domain.ErrSelfDelete
	}
	user, err := uc.archiver.ArchiveUser(ctx, actor, id, lastAdminGuard)
	if err != nil {
		return err
	}
	uc.audit.Record(ctx, actor, entity.AuditDeleteUser, fmt.Sprintf("ID: %s - %s", user.ID, user.Username))
	return nil
}

func lastAdminGuard(ctx context.Context, user *entity.User, users repository.UserRepository) error {
	if user.Role != entity.RoleAdmin {
		return nil
	}
	n, err := users.CountByRole(ctx, entity.RoleAdmin)
	if err != nil {
		return err
	}
	if n <= 1 {
		return domain.ErrLastAdmin
	}
	return nil
}

func entityToUserResponse(u *entity.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
