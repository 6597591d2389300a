package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Cotizaciones-api/internal/domain"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/repository"
	"golang.org/x/crypto/bcrypt"
)

// SeedAccount usuario inicial.
type SeedAccount struct {
	Username string
	Role     string
}

// SeedDefaultUsers crea las cuentas iniciales solo si no existe ningún usuario.
// Devuelve cuántas cuentas creó (0 si la tabla ya tenía datos).
func SeedDefaultUsers(ctx context.Context, repo repository.UserRepository, password string, cost int, accounts ...SeedAccount) (int, error) {
	if password == "" {
		return 0, fmt.Errorf("%w: password de siembra vacío", domain.ErrInvalidInput)
	}
	existing, err := repo.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return 0, err
	}
	created := 0
	for _, acc := range accounts {
		user := &entity.User{
			ID:           uuid.New().String(),
			Username:     acc.Username,
			PasswordHash: string(hash),
			Role:         entity.NormalizeRole(acc.Role),
			CreatedAt:    time.Now(),
		}
		if err := repo.Create(ctx, user); err != nil {
			return created, fmt.Errorf("sembrar %s: %w", acc.Username, err)
		}
		created++
	}
	return created, nil
}
