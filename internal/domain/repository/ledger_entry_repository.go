package repository

import (
	"context"
	"time"

	"github.com/jhoicas/storefront-inventory/internal/domain/entity"
)

// LedgerEntryRepository define el puerto append-only del ledger de inventario.
// No existen operaciones de actualización ni de borrado.
type LedgerEntryRepository interface {
	Append(ctx context.Context, entry *entity.LedgerEntry) error
	// LatestCreatedAt devuelve el created_at más reciente del producto; ok=false si no hay entradas.
	LatestCreatedAt(ctx context.Context, productID string) (t time.Time, ok bool, err error)
	// ListByProduct ordena por created_at DESC, seq DESC.
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.LedgerEntry, error)
	CountByProduct(ctx context.Context, productID string) (int, error)
	SumByProduct(ctx context.Context, productID string) (int, error)
}
