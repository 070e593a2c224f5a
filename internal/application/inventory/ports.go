package inventory

import (
	"context"

	"github.com/jhoicas/storefront-inventory/internal/domain/entity"
	"github.com/jhoicas/storefront-inventory/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción del store, pasando repositorios atados a esa tx.
// Garantiza que la escritura del contador y el append al ledger se confirmen juntos o no se confirmen.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		stockRepo repository.StockRepository,
		ledgerRepo repository.LedgerEntryRepository,
	) error) error
}

// StockReportGenerator genera la tarjeta de stock (kardex) en PDF de un producto.
// entries llega ordenado del más antiguo al más reciente.
type StockReportGenerator interface {
	GenerateStockCard(ctx context.Context, stock *entity.StockRecord, entries []*entity.LedgerEntry) ([]byte, error)
}
