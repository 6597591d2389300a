package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrInsufficientStock = errors.New("stock insuficiente")

	ErrEmptyQuote        = errors.New("la cotización no tiene ítems")
	ErrTotalMismatch     = errors.New("el total no coincide con la suma de los ítems")
	ErrInvalidTransition = errors.New("transición de estado no permitida")
	ErrNotRestorable     = errors.New("el elemento no se puede restaurar")
	ErrLastAdmin         = errors.New("no se puede eliminar el último admin")
	ErrSelfDelete        = errors.New("no puedes eliminarte a ti mismo")
)

// InsufficientStockError identifica el producto que no alcanza para una aprobación.
// errors.Is(err, ErrInsufficientStock) es true.
type InsufficientStockError struct {
	ProductID   string
	ProductName string // "?" si el producto ya no existe
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("falta stock: %s (solicitado %d, disponible %d)", e.ProductName, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
