package recycle

import "github.com/jhoicas/Cotizaciones-api/internal/domain/entity"

// Policy indica por tipo de entidad si el borrado pasa por la papelera.
type Policy map[entity.EntityKind]bool

// DefaultPolicy inventario y usuarios van a la papelera; las cotizaciones se borran en firme.
func DefaultPolicy() Policy {
	return Policy{
		entity.KindInventoryItem: true,
		entity.KindUser:          true,
		entity.KindQuote:         false,
	}
}

// SoftDelete true si el tipo debe archivarse antes de borrarse. Tipos desconocidos: false.
func (p Policy) SoftDelete(kind entity.EntityKind) bool {
	return p[kind]
}
