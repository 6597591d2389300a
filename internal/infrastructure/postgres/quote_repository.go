package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/repository"
)

var _ repository.QuoteRepository = (*QuoteRepo)(nil)

// QuoteRepo persistencia de cotizaciones y sus líneas.
type QuoteRepo struct {
	q Querier
}

// NewQuoteRepository construye el adaptador. Pasar pool o tx (Querier).
func NewQuoteRepository(q Querier) *QuoteRepo {
	return &QuoteRepo{q: q}
}

const quoteSelect = `
	SELECT q.id, q.client_name, q.quote_date, q.validity_days, q.total_amount, q.status,
	       q.created_by, COALESCE(u.username, ''), q.created_at
	FROM quotes q
	LEFT JOIN users u ON u.id = q.created_by`

func scanQuote(row pgx.Row) (*entity.Quote, error) {
	var (
		q         entity.Quote
		createdBy *string
	)
	err := row.Scan(&q.ID, &q.ClientName, &q.QuoteDate, &q.ValidityDays, &q.TotalAmount, &q.Status,
		&createdBy, &q.Author, &q.CreatedAt)
	if err != nil {
		return nil, err
	}
	q.CreatedBy = derefString(createdBy)
	return &q, nil
}

// Create inserta la cabecera.
func (r *QuoteRepo) Create(ctx context.Context, quote *entity.Quote) error {
	query := `
		INSERT INTO quotes (id, client_name, quote_date, validity_days, total_amount, status, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		quote.ID, quote.ClientName, quote.QuoteDate, quote.ValidityDays, quote.TotalAmount,
		quote.Status, nullableID(quote.CreatedBy), quote.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert quote: %w", err)
	}
	return nil
}

// AddItem inserta una línea.
func (r *QuoteRepo) AddItem(ctx context.Context, item *entity.QuoteItem) error {
	query := `
		INSERT INTO quote_items (id, quote_id, product_id, description, quantity, unit_price, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.QuoteID, nullableID(item.ProductID), item.Description, item.Quantity, item.UnitPrice, item.Total,
	)
	if err != nil {
		return fmt.Errorf("insert quote item: %w", err)
	}
	return nil
}

// GetByID obtiene la cabecera con el username del autor.
func (r *QuoteRepo) GetByID(ctx context.Context, id string) (*entity.Quote, error) {
	q, err := scanQuote(r.q.QueryRow(ctx, quoteSelect+` WHERE q.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get quote: %w", err)
	}
	return q, nil
}

// GetForUpdate bloquea solo la fila de quotes (FOR UPDATE OF q; el LEFT JOIN no admite bloquear users).
func (r *QuoteRepo) GetForUpdate(ctx context.Context, id string) (*entity.Quote, error) {
	q, err := scanQuote(r.q.QueryRow(ctx, quoteSelect+` WHERE q.id = $1 FOR UPDATE OF q`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get quote for update: %w", err)
	}
	return q, nil
}

// ListItems devuelve las líneas en orden de inserción.
func (r *QuoteRepo) ListItems(ctx context.Context, quoteID string) ([]*entity.QuoteItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, quote_id, product_id, description, quantity, unit_price, total
		FROM quote_items WHERE quote_id = $1 ORDER BY created_at, id`, quoteID)
	if err != nil {
		return nil, fmt.Errorf("list quote items: %w", err)
	}
	defer rows.Close()

	var items []*entity.QuoteItem
	for rows.Next() {
		var (
			it        entity.QuoteItem
			productID *string
		)
		if err := rows.Scan(&it.ID, &it.QuoteID, &productID, &it.Description, &it.Quantity, &it.UnitPrice, &it.Total); err != nil {
			return nil, fmt.Errorf("scan quote item: %w", err)
		}
		it.ProductID = derefString(productID)
		items = append(items, &it)
	}
	return items, rows.Err()
}

// List todas las cotizaciones, más recientes primero.
func (r *QuoteRepo) List(ctx context.Context) ([]*entity.Quote, error) {
	rows, err := r.q.Query(ctx, quoteSelect+` ORDER BY q.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	defer rows.Close()

	var list []*entity.Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		list = append(list, q)
	}
	return list, rows.Err()
}

// UpdateStatus cambia el estado de la cotización.
func (r *QuoteRepo) UpdateStatus(ctx context.Context, id, status string) error {
	if _, err := r.q.Exec(ctx, `UPDATE quotes SET status = $2 WHERE id = $1`, id, status); err != nil {
		return fmt.Errorf("update quote status: %w", err)
	}
	return nil
}

// Delete borra la cabecera; las líneas caen por ON DELETE CASCADE.
func (r *QuoteRepo) Delete(ctx context.Context, id string) (bool, error) {
	cmd, err := r.q.Exec(ctx, `DELETE FROM quotes WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete quote: %w", err)
	}
	return cmd.RowsAffected() > 0, nil
}
