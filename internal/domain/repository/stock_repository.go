package repository

import (
	"context"
	"time"

	"github.com/jhoicas/storefront-inventory/internal/domain/entity"
)

// StockRepository define el puerto para consultar/actualizar el stock por producto.
// Get y GetForUpdate devuelven (nil, nil) si el producto no tiene StockRecord.
type StockRepository interface {
	Get(ctx context.Context, productID string) (*entity.StockRecord, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, productID string) (*entity.StockRecord, error)
	Create(ctx context.Context, stock *entity.StockRecord) error
	UpdateQuantity(ctx context.Context, productID string, quantity int, updatedAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]*entity.StockRecord, error)
	Count(ctx context.Context) (int, error)
	// ListLowStock filtra en el store los registros con quantity <= low_stock_threshold.
	ListLowStock(ctx context.Context) ([]*entity.StockRecord, error)
}
