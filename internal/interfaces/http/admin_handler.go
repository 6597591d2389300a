package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Cotizaciones-api/internal/application/audit"
	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
	"github.com/jhoicas/Cotizaciones-api/internal/application/recycle"
)

// AdminHandler log de auditoría y papelera de reciclaje.
type AdminHandler struct {
	audit   *audit.UseCase
	recycle *recycle.UseCase
}

// NewAdminHandler construye el handler.
func NewAdminHandler(auditUC *audit.UseCase, recycleUC *recycle.UseCase) *AdminHandler {
	return &AdminHandler{audit: auditUC, recycle: recycleUC}
}

// AuditLogs godoc
// @Summary      Log de auditoría
// @Description  Entradas más recientes primero.
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "máximo de entradas (default 100)"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {array}   dto.AuditLogResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/audit-logs [get]
func (h *AdminHandler) AuditLogs(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parámetros de paginación inválidos"})
	}
	if err := validate.Struct(page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: validationMessage(err)})
	}
	out, err := h.audit.List(c.Context(), ActorFrom(c), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// RecycleBin godoc
// @Summary      Papelera de reciclaje
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.RecycleBinEntryResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/recycle-bin [get]
func (h *AdminHandler) RecycleBin(c *fiber.Ctx) error {
	out, err := h.recycle.List(c.Context(), ActorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Restore godoc
// @Summary      Restaurar elemento de la papelera
// @Description  Inserta de nuevo el registro (con id nuevo) y elimina la entrada de la papelera.
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la entrada en la papelera"
// @Success      200  {object}  dto.SuccessResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/recycle-bin/restore/{id} [post]
func (h *AdminHandler) Restore(c *fiber.Ctx) error {
	id, err := h.recycle.Restore(c.Context(), ActorFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{Success: true, ID: id})
}
