package quote

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Cotizaciones-api/internal/application/audit"
	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
	"github.com/jhoicas/Cotizaciones-api/internal/application/recycle"
	"github.com/jhoicas/Cotizaciones-api/internal/domain"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/repository"
	"github.com/jhoicas/Cotizaciones-api/pkg/logger"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Acciones reportadas al Observer.
const (
	ActionCreate  = "create"
	ActionApprove = "approve"
	ActionRevert  = "revert"
	ActionDelete  = "delete"
)

const dateLayout = "2006-01-02"

// moneyScale decimales con los que se guardan precios y totales.
const moneyScale = 2

// Options configuración opcional del Engine.
type Options struct {
	// StrictTransitions rechaza aprobar dos veces y revertir una cotización en revisión.
	StrictTransitions bool
	Policy            recycle.Policy
	PDF               PDFGenerator
	Observer          Observer
	Logger            *logger.Logger
}

// Engine flujo de cotizaciones: crear, aprobar (descuenta stock), revertir (repone stock) y borrar.
// Todas las operaciones son solo para admin y reciben el actor explícitamente.
type Engine struct {
	txRunner TxRunner
	quotes   repository.QuoteRepository
	audit    audit.Sink
	policy   recycle.Policy
	pdf      PDFGenerator
	observer Observer
	log      *logger.Logger
	strict   bool
	now      func() time.Time
}

// NewEngine construye el motor. quotes se usa para lecturas fuera de transacción.
func NewEngine(txRunner TxRunner, quotes repository.QuoteRepository, sink audit.Sink, opts Options) *Engine {
	e := &Engine{
		txRunner: txRunner,
		quotes:   quotes,
		audit:    sink,
		policy:   opts.Policy,
		pdf:      opts.PDF,
		observer: opts.Observer,
		log:      opts.Logger,
		strict:   opts.StrictTransitions,
		now:      time.Now,
	}
	if e.policy == nil {
		e.policy = recycle.DefaultPolicy()
	}
	if e.observer == nil {
		e.observer = nopObserver{}
	}
	if e.log == nil {
		e.log = logger.Nop()
	}
	e.log = e.log.Component("quotes")
	return e
}

// Create valida las líneas, recalcula el total y guarda cabecera y líneas en una transacción.
func (e *Engine) Create(ctx context.Context, actor entity.Actor, in dto.CreateQuoteRequest) (string, error) {
	if !actor.IsAdmin() {
		return "", domain.ErrForbidden
	}
	quote, items, err := e.buildQuote(actor, in)
	if err != nil {
		e.observe(ActionCreate, err)
		return "", err
	}

	err = e.txRunner.RunQuote(ctx, func(quoteRepo repository.QuoteRepository, _ repository.InventoryRepository, _ repository.RecycleBinRepository) error {
		if err := quoteRepo.Create(ctx, quote); err != nil {
			return err
		}
		for _, it := range items {
			if err := quoteRepo.AddItem(ctx, it); err != nil {
				return err
			}
		}
		return nil
	})
	e.observe(ActionCreate, err)
	if err != nil {
		return "", err
	}
	e.audit.Record(ctx, actor, entity.AuditCreateQuote, "ID: "+quote.ID)
	return quote.ID, nil
}

func (e *Engine) buildQuote(actor entity.Actor, in dto.CreateQuoteRequest) (*entity.Quote, []*entity.QuoteItem, error) {
	if len(in.Items) == 0 {
		return nil, nil, domain.ErrEmptyQuote
	}
	clientName := strings.TrimSpace(in.ClientName)
	if clientName == "" || in.ValidityDays < 0 {
		return nil, nil, domain.ErrInvalidInput
	}
	now := e.now()
	quoteDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if in.QuoteDate != "" {
		d, err := time.Parse(dateLayout, in.QuoteDate)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: quote_date debe tener formato %s", domain.ErrInvalidInput, dateLayout)
		}
		quoteDate = d
	}

	quote := &entity.Quote{
		ID:           uuid.New().String(),
		ClientName:   clientName,
		QuoteDate:    quoteDate,
		ValidityDays: in.ValidityDays,
		Status:       entity.QuoteStatusRevision,
		CreatedBy:    actor.UserID,
		Author:       actor.Username,
		CreatedAt:    now,
	}

	total := decimal.Zero
	items := make([]*entity.QuoteItem, 0, len(in.Items))
	for i, it := range in.Items {
		description := strings.TrimSpace(it.Description)
		if description == "" || it.Quantity <= 0 || it.UnitPrice.IsNegative() {
			return nil, nil, fmt.Errorf("%w: ítem %d", domain.ErrInvalidInput, i+1)
		}
		// Con más decimales la base redondearía cada columna por separado y las líneas dejarían de sumar el total.
		if !it.UnitPrice.Equal(it.UnitPrice.Round(moneyScale)) {
			return nil, nil, fmt.Errorf("%w: ítem %d unit_price admite máximo %d decimales", domain.ErrInvalidInput, i+1, moneyScale)
		}
		productID := strings.TrimSpace(it.ProductID)
		if productID != "" {
			if _, err := uuid.Parse(productID); err != nil {
				return nil, nil, fmt.Errorf("%w: ítem %d product_id", domain.ErrInvalidInput, i+1)
			}
		}
		lineTotal := entity.LineTotal(it.Quantity, it.UnitPrice)
		total = total.Add(lineTotal)
		items = append(items, &entity.QuoteItem{
			ID:          uuid.New().String(),
			QuoteID:     quote.ID,
			ProductID:   productID,
			Description: description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Total:       lineTotal,
		})
	}
	// El cliente suma con float; se compara a la escala de dinero.
	if in.TotalAmount != nil && !in.TotalAmount.Round(moneyScale).Equal(total) {
		return nil, nil, fmt.Errorf("%w: enviado %s, calculado %s", domain.ErrTotalMismatch, in.TotalAmount.String(), total.String())
	}
	quote.TotalAmount = total
	return quote, items, nil
}

// demand cantidad total pedida de un producto en una cotización.
type demand struct {
	productID string
	quantity  int
}

// productDemand agrupa las líneas por producto, ordenado por id para bloquear siempre en el mismo orden.
func productDemand(items []*entity.QuoteItem) []demand {
	totals := make(map[string]int)
	for _, it := range items {
		if it.HasProduct() {
			totals[it.ProductID] += it.Quantity
		}
	}
	out := make([]demand, 0, len(totals))
	for id, qty := range totals {
		out = append(out, demand{productID: id, quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].productID < out[j].productID })
	return out
}

// Approve descuenta el stock de todas las líneas con producto y marca la cotización como aprobada.
// Primero valida todo (con las filas bloqueadas) y solo después modifica; si algo falla no cambia nada.
func (e *Engine) Approve(ctx context.Context, actor entity.Actor, id string) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	err := e.txRunner.RunQuote(ctx, func(quoteRepo repository.QuoteRepository, inventoryRepo repository.InventoryRepository, _ repository.RecycleBinRepository) error {
		quote, err := quoteRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if quote == nil {
			return domain.ErrNotFound
		}
		if e.strict && quote.IsApproved() {
			return fmt.Errorf("%w: la cotización ya está aprobada", domain.ErrInvalidTransition)
		}
		items, err := quoteRepo.ListItems(ctx, id)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return domain.ErrEmptyQuote
		}

		needs := productDemand(items)
		names := make(map[string]string, len(needs))
		for _, d := range needs {
			product, err := inventoryRepo.GetForUpdate(ctx, d.productID)
			if err != nil {
				return err
			}
			if product == nil {
				return &domain.InsufficientStockError{ProductID: d.productID, ProductName: "?", Requested: d.quantity}
			}
			if product.Stock < d.quantity {
				return &domain.InsufficientStockError{
					ProductID:   d.productID,
					ProductName: product.Name,
					Requested:   d.quantity,
					Available:   product.Stock,
				}
			}
			names[d.productID] = product.Name
		}

		for _, d := range needs {
			ok, err := inventoryRepo.DebitStock(ctx, d.productID, d.quantity)
			if err != nil {
				return err
			}
			if !ok {
				return &domain.InsufficientStockError{ProductID: d.productID, ProductName: names[d.productID], Requested: d.quantity}
			}
		}
		return quoteRepo.UpdateStatus(ctx, id, entity.QuoteStatusApproved)
	})
	e.observe(ActionApprove, err)
	if err != nil {
		return err
	}
	e.audit.Record(ctx, actor, entity.AuditApproveQuote, "ID: "+id)
	return nil
}

// Revert repone el stock de las líneas con producto y devuelve la cotización a revisión.
// Los productos que ya no existen se omiten.
func (e *Engine) Revert(ctx context.Context, actor entity.Actor, id string) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	err := e.txRunner.RunQuote(ctx, func(quoteRepo repository.QuoteRepository, inventoryRepo repository.InventoryRepository, _ repository.RecycleBinRepository) error {
		quote, err := quoteRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if quote == nil {
			return domain.ErrNotFound
		}
		if e.strict && !quote.IsApproved() {
			return fmt.Errorf("%w: la cotización no está aprobada", domain.ErrInvalidTransition)
		}
		items, err := quoteRepo.ListItems(ctx, id)
		if err != nil {
			return err
		}
		for _, d := range productDemand(items) {
			ok, err := inventoryRepo.CreditStock(ctx, d.productID, d.quantity)
			if err != nil {
				return err
			}
			if !ok {
				e.log.Debug().Str("quote_id", id).Str("product_id", d.productID).Msg("producto inexistente, se omite reposición")
			}
		}
		return quoteRepo.UpdateStatus(ctx, id, entity.QuoteStatusRevision)
	})
	e.observe(ActionRevert, err)
	if err != nil {
		return err
	}
	e.audit.Record(ctx, actor, entity.AuditRevertQuote, "ID: "+id)
	return nil
}

// quoteSnapshot contenido archivado cuando la política manda las cotizaciones a la papelera.
type quoteSnapshot struct {
	*entity.Quote
	Items []*entity.QuoteItem `json:"items"`
}

// Delete borra la cotización y sus líneas. No toca el stock aunque estuviera aprobada.
func (e *Engine) Delete(ctx context.Context, actor entity.Actor, id string) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	err := e.txRunner.RunQuote(ctx, func(quoteRepo repository.QuoteRepository, _ repository.InventoryRepository, binRepo repository.RecycleBinRepository) error {
		quote, err := quoteRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if quote == nil {
			return domain.ErrNotFound
		}
		if e.policy.SoftDelete(entity.KindQuote) {
			items, err := quoteRepo.ListItems(ctx, id)
			if err != nil {
				return err
			}
			entry, err := recycle.NewEntry(entity.KindQuote, quote.ID, actor.UserID, quoteSnapshot{Quote: quote, Items: items})
			if err != nil {
				return err
			}
			if err := binRepo.Create(ctx, entry); err != nil {
				return err
			}
		}
		deleted, err := quoteRepo.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return domain.ErrNotFound
		}
		return nil
	})
	e.observe(ActionDelete, err)
	if err != nil {
		return err
	}
	e.audit.Record(ctx, actor, entity.AuditDeleteQuote, "ID: "+id)
	return nil
}

// List todas las cotizaciones, más recientes primero.
func (e *Engine) List(ctx context.Context, actor entity.Actor) ([]dto.QuoteResponse, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	quotes, err := e.quotes.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.QuoteResponse, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, toQuoteResponse(q))
	}
	return out, nil
}

// Get cabecera y líneas; ambas consultas van en paralelo.
func (e *Engine) Get(ctx context.Context, actor entity.Actor, id string) (*dto.QuoteDetailResponse, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	quote, items, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := &dto.QuoteDetailResponse{QuoteResponse: toQuoteResponse(quote), Items: make([]dto.QuoteItemResponse, 0, len(items))}
	for _, it := range items {
		resp.Items = append(resp.Items, dto.QuoteItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Total:       it.Total,
		})
	}
	return resp, nil
}

// PDF genera el documento de la cotización.
func (e *Engine) PDF(ctx context.Context, actor entity.Actor, id string) ([]byte, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if e.pdf == nil {
		return nil, errors.New("pdf: generador no configurado")
	}
	quote, items, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return e.pdf.GenerateQuotePDF(ctx, quote, items)
}

func (e *Engine) load(ctx context.Context, id string) (*entity.Quote, []*entity.QuoteItem, error) {
	var (
		quote *entity.Quote
		items []*entity.QuoteItem
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		quote, err = e.quotes.GetByID(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		items, err = e.quotes.ListItems(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if quote == nil {
		return nil, nil, domain.ErrNotFound
	}
	return quote, items, nil
}

func (e *Engine) observe(action string, err error) {
	e.observer.ObserveTransition(action, Outcome(err))
}

// Outcome clasifica el resultado para métricas: ok, rejected (error de negocio) o error.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrEmptyQuote),
		errors.Is(err, domain.ErrTotalMismatch),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrInsufficientStock):
		return "rejected"
	default:
		return "error"
	}
}

func toQuoteResponse(q *entity.Quote) dto.QuoteResponse {
	return dto.QuoteResponse{
		ID:           q.ID,
		ClientName:   q.ClientName,
		QuoteDate:    q.QuoteDate.Format(dateLayout),
		ValidityDays: q.ValidityDays,
		TotalAmount:  q.TotalAmount,
		Status:       q.Status,
		CreatedBy:    q.CreatedBy,
		Author:       q.Author,
		CreatedAt:    q.CreatedAt,
	}
}
