package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/storefront-inventory/internal/domain"
	"github.com/jhoicas/storefront-inventory/internal/domain/entity"
	"github.com/jhoicas/storefront-inventory/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

const stockColumns = `product_id, quantity, low_stock_threshold, initial_quantity, created_at, updated_at`

// StockRepo implementación de StockRepository sobre SQLite (usable con db o tx).
type StockRepo struct {
	q querier
}

// NewStockRepository construye el adaptador. Pasar *sql.DB o *sql.Tx.
func NewStockRepository(q querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene el stock actual de un producto.
func (r *StockRepo) Get(ctx context.Context, productID string) (*entity.StockRecord, error) {
	s, err := scanStock(r.q.QueryRowContext(ctx, `SELECT `+stockColumns+` FROM inventory WHERE product_id = ?`, productID))
	if err != nil {
		return nil, fmt.Errorf("get stock: %w", storeErr(err))
	}
	return s, nil
}

// GetForUpdate en SQLite la transacción ya tiene el lock de escritura (BEGIN IMMEDIATE),
// así que equivale a Get dentro de la tx.
func (r *StockRepo) GetForUpdate(ctx context.Context, productID string) (*entity.StockRecord, error) {
	s, err := scanStock(r.q.QueryRowContext(ctx, `SELECT `+stockColumns+` FROM inventory WHERE product_id = ?`, productID))
	if err != nil {
		return nil, fmt.Errorf("get stock for update: %w", storeErr(err))
	}
	return s, nil
}

// Create inserta el StockRecord. ErrDuplicate si el producto ya tiene registro.
func (r *StockRepo) Create(ctx context.Context, stock *entity.StockRecord) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO inventory (`+stockColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		stock.ProductID, stock.Quantity, stock.LowStockThreshold, stock.InitialQuantity,
		toUnix(stock.CreatedAt), toUnix(stock.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert stock: %w", storeErr(err))
	}
	return nil
}

// UpdateQuantity fija la cantidad; el CHECK (quantity >= 0) se traduce a ErrInsufficientStock.
func (r *StockRepo) UpdateQuantity(ctx context.Context, productID string, quantity int, updatedAt time.Time) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE inventory SET quantity = ?, updated_at = ? WHERE product_id = ?`,
		quantity, toUnix(updatedAt), productID,
	)
	if err != nil {
		return fmt.Errorf("update stock: %w", storeErr(err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista registros ordenados por product_id.
func (r *StockRepo) List(ctx context.Context, limit, offset int) ([]*entity.StockRecord, error) {
	return r.list(ctx, "list stock",
		`SELECT `+stockColumns+` FROM inventory ORDER BY product_id LIMIT ? OFFSET ?`, limit, offset)
}

// Count total de registros de stock.
func (r *StockRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRowContext(ctx, `SELECT count(*) FROM inventory`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count stock: %w", storeErr(err))
	}
	return n, nil
}

// ListLowStock registros con quantity <= low_stock_threshold, los más críticos primero.
func (r *StockRepo) ListLowStock(ctx context.Context) ([]*entity.StockRecord, error) {
	return r.list(ctx, "list low stock", `
		SELECT `+stockColumns+` FROM inventory
		WHERE quantity <= low_stock_threshold
		ORDER BY quantity - low_stock_threshold, product_id`)
}

func (r *StockRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.StockRecord, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storeErr(err))
	}
	defer rows.Close()
	var list []*entity.StockRecord
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, storeErr(err))
	}
	return list, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStock(row rowScanner) (*entity.StockRecord, error) {
	var (
		s                    entity.StockRecord
		createdAt, updatedAt int64
	)
	err := row.Scan(&s.ProductID, &s.Quantity, &s.LowStockThreshold, &s.InitialQuantity, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	s.CreatedAt = fromUnix(createdAt)
	s.UpdatedAt = fromUnix(updatedAt)
	return &s, nil
}
