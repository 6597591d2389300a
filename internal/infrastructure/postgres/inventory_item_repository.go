package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Cotizaciones-api/internal/domain"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/repository"
)

var _ repository.InventoryRepository = (*InventoryRepo)(nil)

const inventoryColumns = `id, name, description, price, stock, category, created_at, updated_at`

// InventoryRepo implementación del puerto InventoryRepository sobre PostgreSQL (usable con pool o tx).
type InventoryRepo struct {
	q Querier
}

// NewInventoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryRepository(q Querier) *InventoryRepo {
	return &InventoryRepo{q: q}
}

func scanInventoryItem(row pgx.Row) (*entity.InventoryItem, error) {
	var it entity.InventoryItem
	err := row.Scan(&it.ID, &it.Name, &it.Description, &it.Price, &it.Stock, &it.Category, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// Create persiste un nuevo producto.
func (r *InventoryRepo) Create(ctx context.Context, item *entity.InventoryItem) error {
	query := `
		INSERT INTO inventory_items (` + inventoryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.Name, item.Description, item.Price, item.Stock, item.Category, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isCheckViolation(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("insert inventory item: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *InventoryRepo) GetByID(ctx context.Context, id string) (*entity.InventoryItem, error) {
	return r.get(ctx, `SELECT `+inventoryColumns+` FROM inventory_items WHERE id = $1`, id)
}

// GetForUpdate igual que GetByID pero bloquea la fila hasta el fin de la transacción.
func (r *InventoryRepo) GetForUpdate(ctx context.Context, id string) (*entity.InventoryItem, error) {
	return r.get(ctx, `SELECT `+inventoryColumns+` FROM inventory_items WHERE id = $1 FOR UPDATE`, id)
}

func (r *InventoryRepo) get(ctx context.Context, query, id string) (*entity.InventoryItem, error) {
	it, err := scanInventoryItem(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory item: %w", err)
	}
	return it, nil
}

// Update sobrescribe los campos editables, stock incluido (edición manual del admin).
func (r *InventoryRepo) Update(ctx context.Context, item *entity.InventoryItem) error {
	query := `
		UPDATE inventory_items
		SET name = $2, description = $3, price = $4, stock = $5, category = $6, updated_at = $7
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		item.ID, item.Name, item.Description, item.Price, item.Stock, item.Category, item.UpdatedAt,
	)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("update inventory item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List devuelve el inventario ordenado por nombre.
func (r *InventoryRepo) List(ctx context.Context) ([]*entity.InventoryItem, error) {
	rows, err := r.q.Query(ctx, `SELECT `+inventoryColumns+` FROM inventory_items ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	defer rows.Close()

	var list []*entity.InventoryItem
	for rows.Next() {
		it, err := scanInventoryItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

// Delete elimina el producto. Las líneas de cotización que lo referencian no se tocan.
func (r *InventoryRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM inventory_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete inventory item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DebitStock descuenta qty solo si alcanza; la condición en el WHERE impide dejar stock negativo.
func (r *InventoryRepo) DebitStock(ctx context.Context, id string, qty int) (bool, error) {
	cmd, err := r.q.Exec(ctx,
		`UPDATE inventory_items SET stock = stock - $2, updated_at = now() WHERE id = $1 AND stock >= $2`,
		id, qty,
	)
	if err != nil {
		return false, fmt.Errorf("debit stock: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

// CreditStock suma qty al stock.
func (r *InventoryRepo) CreditStock(ctx context.Context, id string, qty int) (bool, error) {
	cmd, err := r.q.Exec(ctx,
		`UPDATE inventory_items SET stock = stock + $2, updated_at = now() WHERE id = $1`,
		id, qty,
	)
	if err != nil {
		return false, fmt.Errorf("credit stock: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}
