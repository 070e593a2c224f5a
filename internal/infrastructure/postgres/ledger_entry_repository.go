package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/storefront-inventory/internal/domain/entity"
	"github.com/jhoicas/storefront-inventory/internal/domain/repository"
)

var _ repository.LedgerEntryRepository = (*LedgerEntryRepo)(nil)

// LedgerEntryRepo implementación append-only sobre PostgreSQL (usable con pool o tx).
type LedgerEntryRepo struct {
	q Querier
}

// NewLedgerEntryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerEntryRepository(q Querier) *LedgerEntryRepo {
	return &LedgerEntryRepo{q: q}
}

// Append persiste una entrada del ledger y completa entry.Seq con el valor asignado por la secuencia.
func (r *LedgerEntryRepo) Append(ctx context.Context, entry *entity.LedgerEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	query := `
		INSERT INTO inventory_transactions (id, product_id, quantity_change, kind, notes, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		entry.ID, entry.ProductID, entry.QuantityChange, entry.Kind, entry.Notes, entry.CreatedBy, entry.CreatedAt,
	).Scan(&entry.Seq)
	if err != nil {
		return fmt.Errorf("append ledger entry: %w", storeErr(err))
	}
	return nil
}

// LatestCreatedAt created_at de la última entrada del producto.
func (r *LedgerEntryRepo) LatestCreatedAt(ctx context.Context, productID string) (time.Time, bool, error) {
	var t time.Time
	err := r.q.QueryRow(ctx, `
		SELECT created_at FROM inventory_transactions
		WHERE product_id = $1
		ORDER BY created_at DESC, seq DESC
		LIMIT 1`, productID).Scan(&t)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("latest ledger entry: %w", storeErr(err))
	}
	return t.UTC(), true, nil
}

// ListByProduct historial del producto, más reciente primero; seq desempata created_at iguales.
func (r *LedgerEntryRepo) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.LedgerEntry, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, seq, product_id, quantity_change, kind, notes, created_by, created_at
		FROM inventory_transactions
		WHERE product_id = $1
		ORDER BY created_at DESC, seq DESC
		LIMIT $2 OFFSET $3`, productID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", storeErr(err))
	}
	defer rows.Close()
	var list []*entity.LedgerEntry
	for rows.Next() {
		var e entity.LedgerEntry
		if err := rows.Scan(&e.ID, &e.Seq, &e.ProductID, &e.QuantityChange, &e.Kind, &e.Notes, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		e.CreatedAt = e.CreatedAt.UTC()
		list = append(list, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", storeErr(err))
	}
	return list, nil
}

// CountByProduct total de entradas del producto.
func (r *LedgerEntryRepo) CountByProduct(ctx context.Context, productID string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM inventory_transactions WHERE product_id = $1`, productID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count ledger entries: %w", storeErr(err))
	}
	return n, nil
}

// SumByProduct suma de quantity_change del producto (0 si no hay entradas).
func (r *LedgerEntryRepo) SumByProduct(ctx context.Context, productID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity_change), 0)::bigint FROM inventory_transactions WHERE product_id = $1`,
		productID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sum ledger entries: %w", storeErr(err))
	}
	return n, nil
}
