package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Cotizaciones-api/internal/application/audit"
	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
	"github.com/jhoicas/Cotizaciones-api/internal/domain"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/repository"
)

// UseCase CRUD de productos. Listar es para cualquier rol; escribir solo para admin.
// El stock que se edita aquí es el mismo que descuentan las cotizaciones aprobadas.
type UseCase struct {
	repo     repository.InventoryRepository
	archiver Archiver
	audit    audit.Sink
}

// NewUseCase construye el caso de uso.
func NewUseCase(repo repository.InventoryRepository, archiver Archiver, sink audit.Sink) *UseCase {
	return &UseCase{repo: repo, archiver: archiver, audit: sink}
}

// List inventario completo ordenado por nombre.
func (uc *UseCase) List(ctx context.Context) ([]dto.InventoryItemResponse, error) {
	items, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.InventoryItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, toResponse(it))
	}
	return out, nil
}

// Create registra un producto nuevo.
func (uc *UseCase) Create(ctx context.Context, actor entity.Actor, in dto.InventoryItemRequest) (string, error) {
	if !actor.IsAdmin() {
		return "", domain.ErrForbidden
	}
	if err := validate(in); err != nil {
		return "", err
	}
	now := time.Now()
	item := &entity.InventoryItem{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		Category:    in.Category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, item); err != nil {
		return "", err
	}
	uc.audit.Record(ctx, actor, entity.AuditCreateProduct, "Producto: "+item.Name)
	return item.ID, nil
}

// Update sobrescribe el producto, stock incluido (ajuste manual).
func (uc *UseCase) Update(ctx context.Context, actor entity.Actor, id string, in dto.InventoryItemRequest) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	if err := validate(in); err != nil {
		return err
	}
	current, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if current == nil {
		return domain.ErrNotFound
	}
	current.Name = strings.TrimSpace(in.Name)
	current.Description = in.Description
	current.Price = in.Price
	current.Stock = in.Stock
	current.Category = in.Category
	current.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, current); err != nil {
		return err
	}
	uc.audit.Record(ctx, actor, entity.AuditEditProduct, "ID: "+id)
	return nil
}

// Delete archiva el producto en la papelera y lo elimina.
// Las líneas de cotización que lo referencian quedan intactas.
func (uc *UseCase) Delete(ctx context.Context, actor entity.Actor, id string) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	if _, err := uc.archiver.ArchiveInventoryItem(ctx, actor, id); err != nil {
		return err
	}
	uc.audit.Record(ctx, actor, entity.AuditDeleteProduct, "ID: "+id)
	return nil
}

func validate(in dto.InventoryItemRequest) error {
	if strings.TrimSpace(in.Name) == "" || in.Stock < 0 || in.Price.IsNegative() {
		return domain.ErrInvalidInput
	}
	return nil
}

func toResponse(it *entity.InventoryItem) dto.InventoryItemResponse {
	return dto.InventoryItemResponse{
		ID:          it.ID,
		Name:        it.Name,
		Description: it.Description,
		Price:       it.Price,
		Stock:       it.Stock,
		Category:    it.Category,
		CreatedAt:   it.CreatedAt,
		UpdatedAt:   it.UpdatedAt,
	}
}
