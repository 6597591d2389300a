package entity

import "time"

// Acciones registradas en el log de auditoría.
const (
	AuditCreateProduct = "CREAR_PRODUCTO"
	AuditEditProduct   = "EDITAR_PRODUCTO"
	AuditDeleteProduct = "BORRAR_PRODUCTO"

	AuditCreateQuote  = "CREAR_COTIZACION"
	AuditApproveQuote = "APROBAR_COTIZACION"
	AuditRevertQuote  = "REVERTIR_COTIZACION"
	AuditDeleteQuote  = "BORRAR_COTIZACION"

	AuditCreateUser = "CREAR_USUARIO"
	AuditEditUser   = "EDITAR_USUARIO"
	AuditDeleteUser = "BORRAR_USUARIO"

	AuditRestore = "RESTAURAR_ELEMENTO"
)

// AuditLogEntry registro inmutable de una acción administrativa.
type AuditLogEntry struct {
	ID        string
	UserID    string
	Username  string // solo lectura (join con users)
	Action    string
	Details   string
	CreatedAt time.Time
}
