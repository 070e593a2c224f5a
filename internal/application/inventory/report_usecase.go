package inventory

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jhoicas/storefront-inventory/internal/domain"
	"github.com/jhoicas/storefront-inventory/internal/domain/entity"
	"github.com/jhoicas/storefront-inventory/internal/domain/repository"
)

const stockCardBatch = 200

// StockCardUseCase genera la tarjeta de stock (kardex) de un producto: el historial completo
// del ledger en orden cronológico más el saldo actual.
type StockCardUseCase struct {
	stockRepo  repository.StockRepository
	ledgerRepo repository.LedgerEntryRepository
	generator  StockReportGenerator
	log        zerolog.Logger
}

// NewStockCardUseCase construye el caso de uso.
func NewStockCardUseCase(
	stockRepo repository.StockRepository,
	ledgerRepo repository.LedgerEntryRepository,
	generator StockReportGenerator,
	log zerolog.Logger,
) *StockCardUseCase {
	return &StockCardUseCase{stockRepo: stockRepo, ledgerRepo: ledgerRepo, generator: generator, log: log}
}

// Generate devuelve el PDF de la tarjeta de stock.
func (uc *StockCardUseCase) Generate(ctx context.Context, productID string) ([]byte, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	stock, err := uc.stockRepo.Get(ctx, productID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if stock == nil {
		return nil, domain.ErrNotFound
	}

	var entries []*entity.LedgerEntry
	for offset := 0; ; offset += stockCardBatch {
		batch, err := uc.ledgerRepo.ListByProduct(ctx, productID, stockCardBatch, offset)
		if err != nil {
			return nil, mapStoreError(err)
		}
		entries = append(entries, batch...)
		if len(batch) < stockCardBatch {
			break
		}
	}
	// ListByProduct entrega más reciente primero; el kardex se lee del más antiguo al más reciente.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}

	pdf, err := uc.generator.GenerateStockCard(ctx, stock, entries)
	if err != nil {
		uc.log.Error().Err(err).Str("product_id", productID).Msg("error generando tarjeta de stock")
		return nil, err
	}
	return pdf, nil
}
