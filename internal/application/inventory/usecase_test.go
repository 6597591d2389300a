package inventory_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jhoicas/Cotizaciones-api/internal/application/audit"
	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
	"github.com/jhoicas/Cotizaciones-api/internal/application/inventory"
	"github.com/jhoicas/Cotizaciones-api/internal/application/recycle"
	"github.com/jhoicas/Cotizaciones-api/internal/domain"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	admin   = entity.Actor{UserID: uuid.NewString(), Username: "admin", Role: entity.RoleAdmin}
	tecnico = entity.Actor{UserID: uuid.NewString(), Username: "tec", Role: entity.RoleTecnico}
)

func setup() (*memory.Store, *inventory.UseCase) {
	store := memory.New()
	sink := audit.NewRecorder(store.Audit(), nil)
	bin := recycle.NewUseCase(store, store.RecycleBin(), sink, nil)
	return store, inventory.NewUseCase(store.Inventory(), bin, sink)
}

func req(name string, stock int) dto.InventoryItemRequest {
	return dto.InventoryItemRequest{Name: name, Price: decimal.NewFromInt(100), Stock: stock, Category: "general"}
}

func TestInventoryCRUD(t *testing.T) {
	store, uc := setup()
	ctx := context.Background()

	id, err := uc.Create(ctx, admin, req("Manguera", 3))
	require.NoError(t, err)

	list, err := uc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 3, list[0].Stock)

	require.NoError(t, uc.Update(ctx, admin, id, req("Manguera 1/2", 8)))
	got, err := store.Inventory().GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Manguera 1/2", got.Name)
	assert.Equal(t, 8, got.Stock)

	require.NoError(t, uc.Delete(ctx, admin, id))
	list, err = uc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	bin, err := store.RecycleBin().List(ctx)
	require.NoError(t, err)
	require.Len(t, bin, 1)
	assert.Equal(t, id, bin[0].OriginalID)

	logs, err := store.Audit().List(ctx, 10, 0)
	require.NoError(t, err)
	var actions []string
	for _, l := range logs {
		actions = append(actions, l.Action)
	}
	assert.ElementsMatch(t, []string{entity.AuditCreateProduct, entity.AuditEditProduct, entity.AuditDeleteProduct}, actions)
}

func TestInventory_Errors(t *testing.T) {
	_, uc := setup()
	ctx := context.Background()

	_, err := uc.Create(ctx, tecnico, req("x", 1))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.Create(ctx, admin, req("x", -1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	bad := req("x", 1)
	bad.Price = decimal.NewFromInt(-5)
	_, err = uc.Create(ctx, admin, bad)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.ErrorIs(t, uc.Update(ctx, admin, uuid.NewString(), req("x", 1)), domain.ErrNotFound)
	assert.ErrorIs(t, uc.Delete(ctx, admin, uuid.NewString()), domain.ErrNotFound)
	assert.ErrorIs(t, uc.Delete(ctx, tecnico, uuid.NewString()), domain.ErrForbidden)
}
