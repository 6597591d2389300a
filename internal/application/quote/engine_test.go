package quote_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Cotizaciones-api/internal/application/audit"
	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
	"github.com/jhoicas/Cotizaciones-api/internal/application/quote"
	"github.com/jhoicas/Cotizaciones-api/internal/application/recycle"
	"github.com/jhoicas/Cotizaciones-api/internal/domain"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/infrastructure/memory"
	"github.com/jhoicas/Cotizaciones-api/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	mu     sync.Mutex
	events []string
}

func (o *recordingObserver) ObserveTransition(action, outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, action+":"+outcome)
}

type fixture struct {
	store    *memory.Store
	engine   *quote.Engine
	admin    entity.Actor
	observer *recordingObserver
}

func newFixture(t *testing.T, strict bool, policy recycle.Policy) *fixture {
	t.Helper()
	store := memory.New()
	admin := &entity.User{ID: uuid.NewString(), Username: "admin", PasswordHash: "x", Role: entity.RoleAdmin, CreatedAt: time.Now()}
	require.NoError(t, store.Users().Create(context.Background(), admin))

	obs := &recordingObserver{}
	engine := quote.NewEngine(store, store.Quotes(), audit.NewRecorder(store.Audit(), logger.Nop()), quote.Options{
		StrictTransitions: strict,
		Policy:            policy,
		Observer:          obs,
	})
	return &fixture{
		store:    store,
		engine:   engine,
		admin:    entity.Actor{UserID: admin.ID, Username: admin.Username, Role: admin.Role},
		observer: obs,
	}
}

func (f *fixture) addProduct(t *testing.T, name string, stock int) string {
	t.Helper()
	now := time.Now()
	item := &entity.InventoryItem{
		ID: uuid.NewString(), Name: name, Price: decimal.NewFromInt(10), Stock: stock, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, f.store.Inventory().Create(context.Background(), item))
	return item.ID
}

func (f *fixture) stock(t *testing.T, id string) int {
	t.Helper()
	item, err := f.store.Inventory().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, item)
	return item.Stock
}

func (f *fixture) status(t *testing.T, id string) string {
	t.Helper()
	q, err := f.store.Quotes().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, q)
	return q.Status
}

func (f *fixture) auditActions(t *testing.T) []string {
	t.Helper()
	entries, err := f.store.Audit().List(context.Background(), 100, 0)
	require.NoError(t, err)
	var actions []string
	for _, e := range entries {
		actions = append(actions, e.Action)
	}
	return actions
}

func (f *fixture) create(t *testing.T, items ...dto.QuoteItemRequest) string {
	t.Helper()
	id, err := f.engine.Create(context.Background(), f.admin, dto.CreateQuoteRequest{
		ClientName: "Cliente", QuoteDate: "2024-05-10", ValidityDays: 15, Items: items,
	})
	require.NoError(t, err)
	return id
}

func line(productID string, qty int, price int64) dto.QuoteItemRequest {
	return dto.QuoteItemRequest{ProductID: productID, Description: "línea", Quantity: qty, UnitPrice: decimal.NewFromInt(price)}
}

func TestCreate_PersistsQuoteWithComputedTotal(t *testing.T) {
	f := newFixture(t, true, nil)
	ctx := context.Background()
	p := f.addProduct(t, "Filtro", 10)

	id := f.create(t, line(p, 2, 1500), line("", 1, 300))

	got, err := f.engine.Get(ctx, f.admin, id)
	require.NoError(t, err)
	assert.Equal(t, entity.QuoteStatusRevision, got.Status)
	assert.Equal(t, "2024-05-10", got.QuoteDate)
	assert.Equal(t, "admin", got.Author)
	assert.True(t, decimal.NewFromInt(3300).Equal(got.TotalAmount))
	require.Len(t, got.Items, 2)
	assert.Equal(t, p, got.Items[0].ProductID)
	assert.True(t, decimal.NewFromInt(3000).Equal(got.Items[0].Total))
	assert.Empty(t, got.Items[1].ProductID)

	assert.Equal(t, 10, f.stock(t, p), "crear no toca stock")
	assert.Equal(t, []string{entity.AuditCreateQuote}, f.auditActions(t))
}

func TestCreate_Rejections(t *testing.T) {
	ctx := context.Background()
	wrong := decimal.NewFromInt(999)
	tests := []struct {
		name    string
		in      dto.CreateQuoteRequest
		wantErr error
	}{
		{"sin ítems", dto.CreateQuoteRequest{ClientName: "c"}, domain.ErrEmptyQuote},
		{"cantidad cero", dto.CreateQuoteRequest{ClientName: "c", Items: []dto.QuoteItemRequest{line("", 0, 1)}}, domain.ErrInvalidInput},
		{"precio negativo", dto.CreateQuoteRequest{ClientName: "c", Items: []dto.QuoteItemRequest{line("", 1, -1)}}, domain.ErrInvalidInput},
		{"product_id inválido", dto.CreateQuoteRequest{ClientName: "c", Items: []dto.QuoteItemRequest{line("abc", 1, 1)}}, domain.ErrInvalidInput},
		{"fecha inválida", dto.CreateQuoteRequest{ClientName: "c", QuoteDate: "10/05/2024", Items: []dto.QuoteItemRequest{line("", 1, 1)}}, domain.ErrInvalidInput},
		{"total distinto", dto.CreateQuoteRequest{ClientName: "c", TotalAmount: &wrong, Items: []dto.QuoteItemRequest{line("", 1, 1)}}, domain.ErrTotalMismatch},
		{"precio con tres decimales", dto.CreateQuoteRequest{ClientName: "c", Items: []dto.QuoteItemRequest{
			{Description: "a", Quantity: 1, UnitPrice: decimal.RequireFromString("0.125")},
			{Description: "b", Quantity: 1, UnitPrice: decimal.RequireFromString("0.125")},
		}}, domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, true, nil)
			_, err := f.engine.Create(ctx, f.admin, tt.in)
			require.ErrorIs(t, err, tt.wantErr)

			list, err := f.engine.List(ctx, f.admin)
			require.NoError(t, err)
			assert.Empty(t, list)
			assert.Empty(t, f.auditActions(t))
		})
	}
}

func TestCreate_MatchingClientTotalIsAccepted(t *testing.T) {
	f := newFixture(t, true, nil)
	total := decimal.RequireFromString("25.50")
	_, err := f.engine.Create(context.Background(), f.admin, dto.CreateQuoteRequest{
		ClientName:  "c",
		TotalAmount: &total,
		Items:       []dto.QuoteItemRequest{{Description: "x", Quantity: 3, UnitPrice: decimal.RequireFromString("8.50")}},
	})
	require.NoError(t, err)
}

func TestCreate_ClientFloatTotalComparedAtMoneyScale(t *testing.T) {
	f := newFixture(t, true, nil)
	// total calculado en el navegador: 3 * 0.1 con aritmética float
	body := `{"client_name":"c","total_amount":0.30000000000000004,"items":[{"description":"x","quantity":3,"unit_price":0.1}]}`
	var in dto.CreateQuoteRequest
	require.NoError(t, json.Unmarshal([]byte(body), &in))

	id, err := f.engine.Create(context.Background(), f.admin, in)
	require.NoError(t, err)

	got, err := f.engine.Get(context.Background(), f.admin, id)
	require.NoError(t, err)
	assert.Equal(t, "0.3", got.TotalAmount.String(), "se guarda el total calculado en el servidor")
}

func TestCreate_TrailingZeroDecimalsAccepted(t *testing.T) {
	f := newFixture(t, true, nil)
	id := f.create(t, dto.QuoteItemRequest{Description: "x", Quantity: 2, UnitPrice: decimal.RequireFromString("10.500")})

	got, err := f.engine.Get(context.Background(), f.admin, id)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.True(t, decimal.NewFromInt(21).Equal(got.Items[0].Total))
	assert.True(t, got.TotalAmount.Equal(got.Items[0].Total))
}

func TestCreate_ItemFailureRollsBackEverything(t *testing.T) {
	f := newFixture(t, true, nil)
	ctx := context.Background()
	f.store.FailOn("quote_items.insert", errors.New("disco lleno"))

	_, err := f.engine.Create(ctx, f.admin, dto.CreateQuoteRequest{ClientName: "c", Items: []dto.QuoteItemRequest{line("", 1, 5)}})
	require.Error(t, err)

	list, err := f.engine.List(ctx, f.admin)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, []string{"create:error"}, f.observer.events)
}

func TestOperations_RequireAdmin(t *testing.T) {
	f := newFixture(t, true, nil)
	ctx := context.Background()
	id := f.create(t, line("", 1, 1))
	tecnico := entity.Actor{UserID: uuid.NewString(), Username: "tec", Role: entity.RoleTecnico}

	_, err := f.engine.Create(ctx, tecnico, dto.CreateQuoteRequest{ClientName: "c", Items: []dto.QuoteItemRequest{line("", 1, 1)}})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.ErrorIs(t, f.engine.Approve(ctx, tecnico, id), domain.ErrForbidden)
	assert.ErrorIs(t, f.engine.Revert(ctx, tecnico, id), domain.ErrForbidden)
	assert.ErrorIs(t, f.engine.Delete(ctx, tecnico, id), domain.ErrForbidden)
	_, err = f.engine.List(ctx, tecnico)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.engine.Get(ctx, tecnico, id)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	assert.Equal(t, entity.QuoteStatusRevision, f.status(t, id))
}

func TestApprove_DebitsStock(t *testing.T) {
	f := newFixture(t, true, nil)
	ctx := context.Background()
	a := f.addProduct(t, "A", 10)
	b := f.addProduct(t, "B", 4)
	id := f.create(t, line(a, 3, 1), line(b, 4, 1), line("", 7, 1))

	require.NoError(t, f.engine.Approve(ctx, f.admin, id))

	assert.Equal(t, 7, f.stock(t, a))
	assert.Equal(t, 0, f.stock(t, b))
	assert.Equal(t, entity.QuoteStatusApproved, f.status(t, id))
	assert.Equal(t, []string{entity.AuditApproveQuote, entity.AuditCreateQuote}, f.auditActions(t))
}

func TestApprove_InsufficientStockChangesNothing(t *testing.T) {
	f := newFixture(t, true, nil)
	ctx := context.Background()
	enough := f.addProduct(t, "Bomba", 10)
	short := f.addProduct(t, "Válvula", 1)
	id := f.create(t, line(enough, 5, 1), line(short, 2, 1))

	err := f.engine.Approve(ctx, f.admin, id)

	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, "Válvula", stockErr.ProductName)
	assert.Equal(t, 2, stockErr.Requested)
	assert.Equal(t, 1, stockErr.Available)
	assert.Contains(t, err.Error(), "Válvula")

	assert.Equal(t, 10, f.stock(t, enough))
	assert.Equal(t, 1, f.stock(t, short))
	assert.Equal(t, entity.QuoteStatusRevision, f.status(t, id))
	assert.NotContains(t, f.auditActions(t), entity.AuditApproveQuote)
}

func TestApprove_AggregatesLinesOfSameProduct(t *testing.T) {
	f := newFixture(t, true, nil)
	p := f.addProduct(t, "Correa", 5)
	id := f.create(t, line(p, 3, 1), line(p, 3, 1))

	err := f.engine.Approve(context.Background(), f.admin, id)

	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 6, stockErr.Requested)
	assert.Equal(t, 5, f.stock(t, p))
}

func TestApprove_MissingProductReportsQuestionMark(t *testing.T) {
	f := newFixture(t, true, nil)
	ctx := context.Background()
	p := f.addProduct(t, "Temporal", 5)
	id := f.create(t, line(p, 1, 1))
	require.NoError(t, f.store.Inventory().Delete(ctx, p))

	err := f.engine.Approve(ctx, f.admin, id)

	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "?", stockErr.ProductName)
	assert.Equal(t, entity.QuoteStatusRevision, f.status(t, id))
}

func TestApprove_ManualItemsOnly(t *testing.T) {
	f := newFixture(t, true, nil)
	p := f.addProduct(t, "Sin tocar", 3)
	id := f.create(t, line("", 50, 1))

	require.NoError(t, f.engine.Approve(context.Background(), f.admin, id))
	assert.Equal(t, entity.QuoteStatusApproved, f.status(t, id))
	assert.Equal(t, 3, f.stock(t, p))
}

func TestApprove_NotFoundAndEmpty(t *testing.T) {
	f := newFixture(t, true, nil)
	ctx := context.Background()
	assert.ErrorIs(t, f.engine.Approve(ctx, f.admin, uuid.NewString()), domain.ErrNotFound)

	empty := &entity.Quote{ID: uuid.NewString(), ClientName: "x", Status: entity.QuoteStatusRevision, CreatedAt: time.Now()}
	require.NoError(t, f.store.Quotes().Create(ctx, empty))
	assert.ErrorIs(t, f.engine.Approve(ctx, f.admin, empty.ID), domain.ErrEmptyQuote)
	assert.Equal(t, entity.QuoteStatusRevision, f.status(t, empty.ID))
}

func TestApprove_StatusFailureRollsBackDebits(t *testing.T) {
	f := newFixture(t, true, nil)
	p := f.addProduct(t, "A", 10)
	id := f.create(t, line(p, 4, 1))
	f.store.FailOn("quotes.update_status", errors.New("conexión perdida"))

	require.Error(t, f.engine.Approve(context.Background(), f.admin, id))
	assert.Equal(t, 10, f.stock(t, p))

	f.store.FailOn("quotes.update_status", nil)
	require.NoError(t, f.engine.Approve(context.Background(), f.admin, id))
	assert.Equal(t, 6, f.stock(t, p))
}

func TestRevert_CreditsStockAndSkipsMissingProducts(t *testing.T) {
	f := newFixture(t, true, nil)
	ctx := context.Background()
	a := f.addProduct(t, "A", 10)
	gone := f.addProduct(t, "B", 10)
	id := f.create(t, line(a, 4, 1), line(gone, 2, 1))
	require.NoError(t, f.engine.Approve(ctx, f.admin, id))
	require.NoError(t, f.store.Inventory().Delete(ctx, gone))

	require.NoError(t, f.engine.Revert(ctx, f.admin, id))

	assert.Equal(t, 10, f.stock(t, a))
	assert.Equal(t, entity.QuoteStatusRevision, f.status(t, id))
	assert.Contains(t, f.auditActions(t), entity.AuditRevertQuote)
}

func TestApproveRevertCycleRestoresStock(t *testing.T) {
	f := newFixture(t, true, nil)
	ctx := context.Background()
	p := f.addProduct(t, "A", 9)
	id := f.create(t, line(p, 3, 1))

	for i := 0; i < 3; i++ {
		require.NoError(t, f.engine.Approve(ctx, f.admin, id))
		assert.Equal(t, 6, f.stock(t, p))
		require.NoError(t, f.engine.Revert(ctx, f.admin, id))
		assert.Equal(t, 9, f.stock(t, p))
	}
}

func TestStrictTransitions(t *testing.T) {
	f := newFixture(t, true, nil)
	ctx := context.Background()
	p := f.addProduct(t, "A", 10)
	id := f.create(t, line(p, 3, 1))

	assert.ErrorIs(t, f.engine.Revert(ctx, f.admin, id), domain.ErrInvalidTransition)
	assert.Equal(t, 10, f.stock(t, p))

	require.NoError(t, f.engine.Approve(ctx, f.admin, id))
	assert.ErrorIs(t, f.engine.Approve(ctx, f.admin, id), domain.ErrInvalidTransition)
	assert.Equal(t, 7, f.stock(t, p))
}

func TestLegacyTransitions(t *testing.T) {
	f := newFixture(t, false, nil)
	ctx := context.Background()
	p := f.addProduct(t, "A", 10)
	id := f.create(t, line(p, 3, 1))

	require.NoError(t, f.engine.Approve(ctx, f.admin, id))
	require.NoError(t, f.engine.Approve(ctx, f.admin, id))
	assert.Equal(t, 4, f.stock(t, p), "la segunda aprobación vuelve a descontar")

	other := f.create(t, line(p, 5, 1))
	require.NoError(t, f.engine.Revert(ctx, f.admin, other))
	assert.Equal(t, 9, f.stock(t, p), "revertir sin aprobar abona igual")
}

func TestDelete_KeepsStockAndBypassesRecycleBin(t *testing.T) {
	f := newFixture(t, true, nil)
	ctx := context.Background()
	p := f.addProduct(t, "A", 10)
	id := f.create(t, line(p, 4, 1))
	require.NoError(t, f.engine.Approve(ctx, f.admin, id))

	require.NoError(t, f.engine.Delete(ctx, f.admin, id))

	assert.Equal(t, 6, f.stock(t, p))
	_, err := f.engine.Get(ctx, f.admin, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	items, err := f.store.Quotes().ListItems(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, items)
	bin, err := f.store.RecycleBin().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, bin)
	assert.Contains(t, f.auditActions(t), entity.AuditDeleteQuote)

	assert.ErrorIs(t, f.engine.Delete(ctx, f.admin, id), domain.ErrNotFound)
}

func TestDelete_MissingQuoteIsNotFound(t *testing.T) {
	f := newFixture(t, true, nil)
	err := f.engine.Delete(context.Background(), f.admin, uuid.NewString())
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, f.auditActions(t))
}

func TestDelete_ArchivesWhenPolicyEnabled(t *testing.T) {
	policy := recycle.DefaultPolicy()
	policy[entity.KindQuote] = true
	f := newFixture(t, true, policy)
	ctx := context.Background()
	id := f.create(t, line("", 2, 10))

	require.NoError(t, f.engine.Delete(ctx, f.admin, id))

	bin, err := f.store.RecycleBin().List(ctx)
	require.NoError(t, err)
	require.Len(t, bin, 1)
	assert.Equal(t, entity.KindQuote, bin[0].Kind)
	assert.Equal(t, id, bin[0].OriginalID)
	assert.Contains(t, string(bin[0].Data), `"items"`)
}

func TestAuditFailureDoesNotFailOperation(t *testing.T) {
	f := newFixture(t, true, nil)
	f.store.FailOn("audit_logs.insert", errors.New("audit caído"))

	id := f.create(t, line("", 1, 1))
	require.NoError(t, f.engine.Approve(context.Background(), f.admin, id))
	assert.Equal(t, entity.QuoteStatusApproved, f.status(t, id))
	assert.Empty(t, f.auditActions(t))
}

func TestConcurrentApprovalsNeverOversell(t *testing.T) {
	f := newFixture(t, true, nil)
	ctx := context.Background()
	p := f.addProduct(t, "Único", 5)
	ids := []string{f.create(t, line(p, 5, 1)), f.create(t, line(p, 5, 1))}

	var wg sync.WaitGroup
	errs := make([]error, len(ids))
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			errs[i] = f.engine.Approve(ctx, f.admin, id)
		}(i, id)
	}
	wg.Wait()

	var ok, short int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientStock):
			short++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, short)
	assert.Equal(t, 0, f.stock(t, p))
}

func TestObserverOutcomes(t *testing.T) {
	f := newFixture(t, true, nil)
	ctx := context.Background()
	p := f.addProduct(t, "A", 1)
	id := f.create(t, line(p, 2, 1))
	_ = f.engine.Approve(ctx, f.admin, id)

	assert.Equal(t, []string{"create:ok", "approve:rejected"}, f.observer.events)
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", quote.Outcome(nil))
	assert.Equal(t, "rejected", quote.Outcome(&domain.InsufficientStockError{ProductName: "x"}))
	assert.Equal(t, "rejected", quote.Outcome(domain.ErrInvalidTransition))
	assert.Equal(t, "error", quote.Outcome(errors.New("db")))
}

type fakePDF struct {
	quote *entity.Quote
	items []*entity.QuoteItem
}

func (g *fakePDF) GenerateQuotePDF(ctx context.Context, q *entity.Quote, items []*entity.QuoteItem) ([]byte, error) {
	g.quote, g.items = q, items
	return []byte("%PDF-fake"), nil
}

func TestPDF_LoadsQuoteAndItems(t *testing.T) {
	store := memory.New()
	gen := &fakePDF{}
	engine := quote.NewEngine(store, store.Quotes(), audit.NewRecorder(store.Audit(), nil), quote.Options{PDF: gen})
	admin := entity.Actor{UserID: uuid.NewString(), Username: "a", Role: entity.RoleAdmin}
	ctx := context.Background()

	id, err := engine.Create(ctx, admin, dto.CreateQuoteRequest{ClientName: "c", Items: []dto.QuoteItemRequest{line("", 1, 1)}})
	require.NoError(t, err)

	out, err := engine.PDF(ctx, admin, id)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-fake", string(out))
	require.NotNil(t, gen.quote)
	assert.Equal(t, id, gen.quote.ID)
	assert.Len(t, gen.items, 1)

	_, err = engine.PDF(ctx, admin, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
