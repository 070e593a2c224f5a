package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/storefront-inventory/internal/domain"
	"github.com/jhoicas/storefront-inventory/internal/domain/entity"
	"github.com/jhoicas/storefront-inventory/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

const stockColumns = `product_id, quantity, low_stock_threshold, initial_quantity, created_at, updated_at`

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene el stock actual de un producto.
func (r *StockRepo) Get(ctx context.Context, productID string) (*entity.StockRecord, error) {
	query := `SELECT ` + stockColumns + ` FROM inventory WHERE product_id = $1`
	s, err := scanStock(r.q.QueryRow(ctx, query, productID))
	if err != nil {
		return nil, fmt.Errorf("get stock: %w", storeErr(err))
	}
	return s, nil
}

// GetForUpdate obtiene el stock y bloquea la fila para update (SELECT FOR UPDATE).
func (r *StockRepo) GetForUpdate(ctx context.Context, productID string) (*entity.StockRecord, error) {
	query := `SELECT ` + stockColumns + ` FROM inventory WHERE product_id = $1 FOR UPDATE`
	s, err := scanStock(r.q.QueryRow(ctx, query, productID))
	if err != nil {
		return nil, fmt.Errorf("get stock for update: %w", storeErr(err))
	}
	return s, nil
}

// Create inserta el StockRecord. ErrDuplicate si el producto ya tiene registro.
func (r *StockRepo) Create(ctx context.Context, stock *entity.StockRecord) error {
	query := `
		INSERT INTO inventory (` + stockColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query,
		stock.ProductID, stock.Quantity, stock.LowStockThreshold, stock.InitialQuantity,
		stock.CreatedAt, stock.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert stock: %w", storeErr(err))
	}
	return nil
}

// UpdateQuantity fija la cantidad. El CHECK (quantity >= 0) de la tabla es la última barrera:
// su violación se traduce a ErrInsufficientStock.
func (r *StockRepo) UpdateQuantity(ctx context.Context, productID string, quantity int, updatedAt time.Time) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE inventory SET quantity = $2, updated_at = $3 WHERE product_id = $1`,
		productID, quantity, updatedAt,
	)
	if err != nil {
		return fmt.Errorf("update stock: %w", storeErr(err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista registros ordenados por product_id.
func (r *StockRepo) List(ctx context.Context, limit, offset int) ([]*entity.StockRecord, error) {
	query := `SELECT ` + stockColumns + ` FROM inventory ORDER BY product_id LIMIT $1 OFFSET $2`
	return r.list(ctx, "list stock", query, limit, offset)
}

// Count total de registros de stock.
func (r *StockRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM inventory`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count stock: %w", storeErr(err))
	}
	return n, nil
}

// ListLowStock registros con quantity <= low_stock_threshold, los más críticos primero.
func (r *StockRepo) ListLowStock(ctx context.Context) ([]*entity.StockRecord, error) {
	query := `
		SELECT ` + stockColumns + ` FROM inventory
		WHERE quantity <= low_stock_threshold
		ORDER BY quantity - low_stock_threshold, product_id`
	return r.list(ctx, "list low stock", query)
}

func (r *StockRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.StockRecord, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storeErr(err))
	}
	defer rows.Close()
	var list []*entity.StockRecord
	for rows.Next() {
		var s entity.StockRecord
		if err := rows.Scan(&s.ProductID, &s.Quantity, &s.LowStockThreshold, &s.InitialQuantity, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, storeErr(err))
	}
	return list, nil
}

func scanStock(row pgx.Row) (*entity.StockRecord, error) {
	var s entity.StockRecord
	err := row.Scan(&s.ProductID, &s.Quantity, &s.LowStockThreshold, &s.InitialQuantity, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	s.CreatedAt = s.CreatedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	return &s, nil
}
