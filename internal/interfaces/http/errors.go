package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
	"github.com/jhoicas/Cotizaciones-api/internal/domain"
	"github.com/jhoicas/Cotizaciones-api/internal/infrastructure/cache"
)

// respondError traduce errores de dominio a status + dto.ErrorResponse.
// Lo que no es de dominio se registra y sale como 500 sin detalles.
func respondError(c *fiber.Ctx, err error) error {
	status, code := fiber.StatusInternalServerError, "INTERNAL"
	message := "error interno"

	var stockErr *domain.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		status, code, message = fiber.StatusBadRequest, "INSUFFICIENT_STOCK", stockErr.Error()
	case errors.Is(err, domain.ErrEmptyQuote):
		status, code, message = fiber.StatusBadRequest, "EMPTY_QUOTE", err.Error()
	case errors.Is(err, domain.ErrTotalMismatch):
		status, code, message = fiber.StatusBadRequest, "TOTAL_MISMATCH", err.Error()
	case errors.Is(err, domain.ErrInvalidInput):
		status, code, message = fiber.StatusBadRequest, "VALIDATION", err.Error()
	case errors.Is(err, domain.ErrSelfDelete):
		status, code, message = fiber.StatusBadRequest, "SELF_DELETE", err.Error()
	case errors.Is(err, domain.ErrLastAdmin):
		status, code, message = fiber.StatusBadRequest, "LAST_ADMIN", err.Error()
	case errors.Is(err, domain.ErrUnauthorized):
		status, code, message = fiber.StatusUnauthorized, "UNAUTHORIZED", "credenciales inválidas"
	case errors.Is(err, domain.ErrForbidden):
		status, code, message = fiber.StatusForbidden, "FORBIDDEN", "acceso denegado"
	case errors.Is(err, domain.ErrNotFound):
		status, code, message = fiber.StatusNotFound, "NOT_FOUND", err.Error()
	case errors.Is(err, domain.ErrInvalidTransition):
		status, code, message = fiber.StatusConflict, "INVALID_TRANSITION", err.Error()
	case errors.Is(err, domain.ErrNotRestorable):
		status, code, message = fiber.StatusConflict, "NOT_RESTORABLE", err.Error()
	case errors.Is(err, domain.ErrDuplicate):
		status, code, message = fiber.StatusConflict, "DUPLICATE", "el registro ya existe"
	case errors.Is(err, cache.ErrInFlight):
		status, code, message = fiber.StatusConflict, "IDEMPOTENCY_IN_FLIGHT", err.Error()
	default:
		log.Error().Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("error no controlado")
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: message})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
