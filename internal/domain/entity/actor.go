package entity

// Actor identidad del usuario que ejecuta una operación, derivada del token de cada petición.
// Se pasa explícitamente a los casos de uso; nunca se guarda como estado global.
type Actor struct {
	UserID   string
	Username string
	Role     string
}

// IsAdmin indica si el actor tiene privilegios elevados.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
