package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}

// isCheckViolation detecta violaciones de CHECK (23514), p. ej. stock negativo.
func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23514"
}

// nullableID convierte "" en NULL para columnas uuid opcionales.
func nullableID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
