package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
	"github.com/jhoicas/Cotizaciones-api/internal/application/quote"
)

// IdempotencyHeader cabecera opcional para reintentos seguros de POST /api/quotes.
const IdempotencyHeader = "Idempotency-Key"

// IdempotencyStore reserva claves de idempotencia (implementado sobre Redis).
type IdempotencyStore interface {
	Begin(ctx context.Context, key string) (string, error)
	Complete(ctx context.Context, key, resultID string) error
	Release(ctx context.Context, key string) error
}

// QuoteHandler endpoints del flujo de cotizaciones.
type QuoteHandler struct {
	engine *quote.Engine
	idem   IdempotencyStore // nil = sin idempotencia
}

// NewQuoteHandler construye el handler. idem puede ser nil.
func NewQuoteHandler(engine *quote.Engine, idem IdempotencyStore) *QuoteHandler {
	return &QuoteHandler{engine: engine, idem: idem}
}

// Create godoc
// @Summary      Crear cotización
// @Description  Guarda la cabecera y sus líneas en estado "revision". No toca el stock.
// @Tags         quotes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                  false  "clave para reintentos seguros"
// @Param        body             body    dto.CreateQuoteRequest  true   "cliente, fecha, validez, ítems"
// @Success      201   {object}  dto.SuccessResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/quotes [post]
func (h *QuoteHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateQuoteRequest
	if ok, err := parseAndValidate(c, &in); !ok {
		return err
	}
	key := c.Get(IdempotencyHeader)
	if h.idem == nil || key == "" {
		id, err := h.engine.Create(c.Context(), ActorFrom(c), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{Success: true, ID: id})
	}

	ctx := c.Context()
	prev, err := h.idem.Begin(ctx, key)
	if err != nil {
		return respondError(c, err)
	}
	if prev != "" {
		return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{Success: true, ID: prev})
	}
	id, err := h.engine.Create(ctx, ActorFrom(c), in)
	if err != nil {
		if rerr := h.idem.Release(ctx, key); rerr != nil {
			log.Warn().Err(rerr).Str("key", key).Msg("liberar clave de idempotencia")
		}
		return respondError(c, err)
	}
	if err := h.idem.Complete(ctx, key, id); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("completar clave de idempotencia")
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{Success: true, ID: id})
}

// List godoc
// @Summary      Listar cotizaciones
// @Tags         quotes
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.QuoteResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/quotes [get]
func (h *QuoteHandler) List(c *fiber.Ctx) error {
	out, err := h.engine.List(c.Context(), ActorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Detalle de cotización
// @Tags         quotes
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la cotización"
// @Success      200  {object}  dto.QuoteDetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/quotes/{id} [get]
func (h *QuoteHandler) Get(c *fiber.Ctx) error {
	out, err := h.engine.Get(c.Context(), ActorFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// PDF godoc
// @Summary      Descargar cotización en PDF
// @Tags         quotes
// @Security     Bearer
// @Produce      application/pdf
// @Param        id  path  string  true  "ID de la cotización"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/quotes/{id}/pdf [get]
func (h *QuoteHandler) PDF(c *fiber.Ctx) error {
	id := c.Params("id")
	out, err := h.engine.PDF(c.Context(), ActorFrom(c), id)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="cotizacion-`+id+`.pdf"`)
	return c.Send(out)
}

// Approve godoc
// @Summary      Aprobar cotización
// @Description  Descuenta del inventario las cantidades de las líneas con producto. Todo o nada.
// @Tags         quotes
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la cotización"
// @Success      200  {object}  dto.SuccessResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/quotes/{id}/approve [put]
func (h *QuoteHandler) Approve(c *fiber.Ctx) error {
	if err := h.engine.Approve(c.Context(), ActorFrom(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}

// Revert godoc
// @Summary      Revertir cotización
// @Description  Devuelve el stock descontado y deja la cotización en "revision".
// @Tags         quotes
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la cotización"
// @Success      200  {object}  dto.SuccessResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/quotes/{id}/revert [put]
func (h *QuoteHandler) Revert(c *fiber.Ctx) error {
	if err := h.engine.Revert(c.Context(), ActorFrom(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}

// Delete godoc
// @Summary      Eliminar cotización
// @Description  Borra la cabecera y sus líneas. No devuelve stock.
// @Tags         quotes
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la cotización"
// @Success      200  {object}  dto.SuccessResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/quotes/{id} [delete]
func (h *QuoteHandler) Delete(c *fiber.Ctx) error {
	if err := h.engine.Delete(c.Context(), ActorFrom(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}
