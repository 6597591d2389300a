package auth

import (
	"context"
	"strings"

	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
	"github.com/jhoicas/Cotizaciones-api/internal/domain"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/repository"
	"github.com/jhoicas/Cotizaciones-api/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase login con username/password.
type AuthUseCase struct {
	userRepo repository.UserRepository
	jwtCfg   JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, jwtCfg: jwtCfg}
}

// Login verifica credenciales y emite un JWT con id, username y rol.
// Usuario inexistente y contraseña incorrecta devuelven el mismo error.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, domain.ErrInvalidInput
	}
	user, err := uc.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	role := entity.NormalizeRole(user.Role)
	token, err := jwt.Generate(uc.jwtCfg.Secret, jwt.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Role:     role,
	}, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token: token,
		Role:  role,
		User: dto.UserResponse{
			ID:        user.ID,
			Username:  user.Username,
			Role:      role,
			CreatedAt: user.CreatedAt,
		},
	}, nil
}
