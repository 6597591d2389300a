package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
	"github.com/jhoicas/Cotizaciones-api/internal/application/inventory"
)

// InventoryHandler CRUD del inventario (protegido).
type InventoryHandler struct {
	uc *inventory.UseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.UseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// List godoc
// @Summary      Listar inventario
// @Description  Disponible para cualquier rol autenticado.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.InventoryItemResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/inventory [get]
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear producto
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.InventoryItemRequest  true  "name, description, price, stock, category"
// @Success      201   {object}  dto.SuccessResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/inventory [post]
func (h *InventoryHandler) Create(c *fiber.Ctx) error {
	var in dto.InventoryItemRequest
	if ok, err := parseAndValidate(c, &in); !ok {
		return err
	}
	id, err := h.uc.Create(c.Context(), ActorFrom(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{Success: true, ID: id})
}

// Update godoc
// @Summary      Actualizar producto
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID del producto"
// @Param        body  body  dto.InventoryItemRequest  true  "campos del producto"
// @Success      200   {object}  dto.SuccessResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/{id} [put]
func (h *InventoryHandler) Update(c *fiber.Ctx) error {
	var in dto.InventoryItemRequest
	if ok, err := parseAndValidate(c, &in); !ok {
		return err
	}
	if err := h.uc.Update(c.Context(), ActorFrom(c), c.Params("id"), in); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}

// Delete godoc
// @Summary      Eliminar producto
// @Description  El producto pasa a la papelera y puede restaurarse.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del producto"
// @Success      200  {object}  dto.SuccessResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/{id} [delete]
func (h *InventoryHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Context(), ActorFrom(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}
