package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/storefront-inventory/internal/domain/entity"
	"github.com/jhoicas/storefront-inventory/internal/domain/repository"
)

var _ repository.LedgerEntryRepository = (*LedgerEntryRepo)(nil)

// LedgerEntryRepo ledger append-only sobre SQLite (usable con db o tx).
type LedgerEntryRepo struct {
	q querier
}

// NewLedgerEntryRepository construye el adaptador. Pasar *sql.DB o *sql.Tx.
func NewLedgerEntryRepository(q querier) *LedgerEntryRepo {
	return &LedgerEntryRepo{q: q}
}

// Append persiste la entrada y completa entry.Seq con el rowid asignado.
func (r *LedgerEntryRepo) Append(ctx context.Context, entry *entity.LedgerEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO inventory_transactions (id, product_id, quantity_change, kind, notes, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.ProductID, entry.QuantityChange, entry.Kind, entry.Notes, entry.CreatedBy, toUnix(entry.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("append ledger entry: %w", storeErr(err))
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}
	entry.Seq = seq
	return nil
}

// LatestCreatedAt created_at de la última entrada del producto.
func (r *LedgerEntryRepo) LatestCreatedAt(ctx context.Context, productID string) (time.Time, bool, error) {
	var n int64
	err := r.q.QueryRowContext(ctx, `
		SELECT created_at FROM inventory_transactions
		WHERE product_id = ?
		ORDER BY created_at DESC, seq DESC
		LIMIT 1`, productID).Scan(&n)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("latest ledger entry: %w", storeErr(err))
	}
	return fromUnix(n), true, nil
}

// ListByProduct historial del producto, más reciente primero; seq desempata created_at iguales.
func (r *LedgerEntryRepo) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.LedgerEntry, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, seq, product_id, quantity_change, kind, notes, created_by, created_at
		FROM inventory_transactions
		WHERE product_id = ?
		ORDER BY created_at DESC, seq DESC
		LIMIT ? OFFSET ?`, productID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", storeErr(err))
	}
	defer rows.Close()
	var list []*entity.LedgerEntry
	for rows.Next() {
		var (
			e         entity.LedgerEntry
			createdAt int64
		)
		if err := rows.Scan(&e.ID, &e.Seq, &e.ProductID, &e.QuantityChange, &e.Kind, &e.Notes, &e.CreatedBy, &createdAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		e.CreatedAt = fromUnix(createdAt)
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
	if err := r.q.QueryRowContext(ctx, `SELECT count(*) FROM inventory_transactions WHERE product_id = ?`, productID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count ledger entries: %w", storeErr(err))
	}
	return n, nil
}

// SumByProduct suma de quantity_change del producto (0 si no hay entradas).
func (r *LedgerEntryRepo) SumByProduct(ctx context.Context, productID string) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(quantity_change), 0) FROM inventory_transactions WHERE product_id = ?`, productID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sum ledger entries: %w", storeErr(err))
	}
	return n, nil
}
