package dto

import "time"

// CreateUserRequest entrada para crear un usuario (password en texto, se hashea en use case).
// Cualquier rol distinto de admin se normaliza a tecnico.
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,max=20"`
}

// UpdateUserRequest entrada para PUT /api/users/:id. Los campos vacíos no se cambian.
type UpdateUserRequest struct {
	Username string `json:"username" validate:"omitempty,min=3,max=50"`
	Password string `json:"password" validate:"omitempty,min=6"`
	Role     string `json:"role" validate:"omitempty,max=20"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse token JWT más el rol, que el cliente usa para decidir qué pantallas mostrar.
type LoginResponse struct {
	Token string       `json:"token"`
	Role  string       `json:"role"`
	User  UserResponse `json:"user"`
}
