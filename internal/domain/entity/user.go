package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin   = "admin"
	RoleTecnico = "tecnico"
)

// NormalizeRole cualquier valor distinto de admin se trata como técnico.
func NormalizeRole(role string) string {
	if role == RoleAdmin {
		return RoleAdmin
	}
	return RoleTecnico
}

// User representa un usuario del sistema.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"` // bcrypt; se conserva en la papelera para poder restaurar
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
