package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/Cotizaciones-api/internal/application/quote"
	"github.com/jhoicas/Cotizaciones-api/internal/application/recycle"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/repository"
)

var _ quote.TxRunner = (*TxRunner)(nil)
var _ recycle.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// run abre la tx, ejecuta fn y hace Commit; ante cualquier error el Rollback diferido deshace todo.
func (r *TxRunner) run(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunQuote transacción con repos de cotizaciones, inventario y papelera (flujo de cotizaciones).
func (r *TxRunner) RunQuote(ctx context.Context, fn func(
	quoteRepo repository.QuoteRepository,
	inventoryRepo repository.InventoryRepository,
	binRepo repository.RecycleBinRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewQuoteRepository(tx), NewInventoryRepository(tx), NewRecycleBinRepository(tx))
	})
}

// RunArchive transacción para mover registros a la papelera o restaurarlos.
func (r *TxRunner) RunArchive(ctx context.Context, fn func(
	binRepo repository.RecycleBinRepository,
	inventoryRepo repository.InventoryRepository,
	userRepo repository.UserRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewRecycleBinRepository(tx), NewInventoryRepository(tx), NewUserRepository(tx))
	})
}
