package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/storefront-inventory/internal/application/dto"
	"github.com/jhoicas/storefront-inventory/internal/domain"
	"github.com/jhoicas/storefront-inventory/internal/domain/entity"
	"github.com/jhoicas/storefront-inventory/internal/domain/ledger"
	"github.com/jhoicas/storefront-inventory/internal/domain/repository"
)

// DefaultStoreTimeout tiempo máximo por operación contra el store si no se configura otro.
const DefaultStoreTimeout = 5 * time.Second

// LedgerUseCase expone las operaciones del ledger de inventario: consultas de stock,
// disponibilidad, historial y bajo stock, y la mutación transaccional del contador con su
// entrada de auditoría. No guarda estado entre llamadas: cada consulta relee el store.
type LedgerUseCase struct {
	txRunner   TxRunner
	stockRepo  repository.StockRepository
	ledgerRepo repository.LedgerEntryRepository
	log        zerolog.Logger
	timeout    time.Duration
	now        func() time.Time
	tel        *instruments
}

// Option configura LedgerUseCase.
type Option func(*LedgerUseCase)

// WithLogger inyecta el logger estructurado.
func WithLogger(l zerolog.Logger) Option {
	return func(uc *LedgerUseCase) { uc.log = l }
}

// WithTimeout fija el timeout por operación contra el store (0 = sin timeout).
func WithTimeout(d time.Duration) Option {
	return func(uc *LedgerUseCase) { uc.timeout = d }
}

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(uc *LedgerUseCase) { uc.now = now }
}

// NewLedgerUseCase construye el caso de uso. stockRepo y ledgerRepo se usan para lecturas fuera
// de transacción; las mutaciones usan siempre los repos que entrega txRunner.
func NewLedgerUseCase(
	txRunner TxRunner,
	stockRepo repository.StockRepository,
	ledgerRepo repository.LedgerEntryRepository,
	opts ...Option,
) *LedgerUseCase {
	uc := &LedgerUseCase{
		txRunner:   txRunner,
		stockRepo:  stockRepo,
		ledgerRepo: ledgerRepo,
		log:        zerolog.Nop(),
		timeout:    DefaultStoreTimeout,
		now:        time.Now,
		tel:        newInstruments(),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// GetStock devuelve el StockRecord actual del producto. ErrNotFound si no existe.
func (uc *LedgerUseCase) GetStock(ctx context.Context, productID string) (*dto.StockResponse, error) {
	ctx, end := uc.begin(ctx, "GetStock", productID)
	stock, err := uc.getStock(ctx, productID)
	end(err)
	if err != nil {
		return nil, err
	}
	out := toStockResponse(stock)
	return &out, nil
}

// CheckAvailability lectura pura: in_stock = quantity >= requested; is_low_stock = quantity <= threshold.
// requested < 1 es ErrInvalidInput.
func (uc *LedgerUseCase) CheckAvailability(ctx context.Context, productID string, requested int) (*dto.AvailabilityResponse, error) {
	if requested < 1 {
		return nil, domain.ErrInvalidInput
	}
	ctx, end := uc.begin(ctx, "CheckAvailability", productID)
	stock, err := uc.getStock(ctx, productID)
	end(err)
	if err != nil {
		return nil, err
	}
	av := ledger.CheckAvailability(stock, requested)
	return &dto.AvailabilityResponse{
		ProductID:         stock.ProductID,
		RequestedQuantity: requested,
		InStock:           av.InStock,
		IsLowStock:        av.IsLowStock,
		AvailableQuantity: av.AvailableQuantity,
	}, nil
}

// ListTransactions devuelve una página del historial del producto, más reciente primero.
func (uc *LedgerUseCase) ListTransactions(ctx context.Context, productID string, page dto.PageRequest) (*dto.TransactionListResponse, error) {
	if err := page.Normalize(); err != nil {
		return nil, err
	}
	ctx, end := uc.begin(ctx, "ListTransactions", productID)
	out, err := uc.listTransactions(ctx, productID, page)
	end(err)
	return out, err
}

func (uc *LedgerUseCase) listTransactions(ctx context.Context, productID string, page dto.PageRequest) (*dto.TransactionListResponse, error) {
	if _, err := uc.getStock(ctx, productID); err != nil {
		return nil, err
	}
	total, err := uc.ledgerRepo.CountByProduct(ctx, productID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	entries, err := uc.ledgerRepo.ListByProduct(ctx, productID, page.Limit, page.Offset)
	if err != nil {
		return nil, mapStoreError(err)
	}
	items := make([]dto.LedgerEntryDTO, 0, len(entries))
	for _, e := range entries {
		items = append(items, toLedgerEntryDTO(e))
	}
	return &dto.TransactionListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// ListLowStock devuelve los registros con quantity <= low_stock_threshold (filtro resuelto en el store).
func (uc *LedgerUseCase) ListLowStock(ctx context.Context) ([]dto.StockResponse, error) {
	ctx, end := uc.begin(ctx, "ListLowStock", "")
	list, err := uc.stockRepo.ListLowStock(ctx)
	err = mapStoreError(err)
	end(err)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockResponse, 0, len(list))
	for _, s := range list {
		out = append(out, toStockResponse(s))
	}
	return out, nil
}

// ListInventory página de todos los StockRecord con su etiqueta de estado (pantalla de administración).
func (uc *LedgerUseCase) ListInventory(ctx context.Context, page dto.PageRequest) (*dto.StockListResponse, error) {
	if err := page.Normalize(); err != nil {
		return nil, err
	}
	ctx, end := uc.begin(ctx, "ListInventory", "")
	out, err := uc.listInventory(ctx, page)
	end(err)
	return out, err
}

func (uc *LedgerUseCase) listInventory(ctx context.Context, page dto.PageRequest) (*dto.StockListResponse, error) {
	total, err := uc.stockRepo.Count(ctx)
	if err != nil {
		return nil, mapStoreError(err)
	}
	list, err := uc.stockRepo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, mapStoreError(err)
	}
	items := make([]dto.StockResponse, 0, len(list))
	for _, s := range list {
		items = append(items, toStockResponse(s))
	}
	return &dto.StockListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// Onboard da de alta el StockRecord de un producto. No escribe entrada de ledger: la cantidad
// inicial queda en InitialQuantity y es la base del invariante de auditoría.
func (uc *LedgerUseCase) Onboard(ctx context.Context, in dto.OnboardStockRequest) (*dto.StockResponse, error) {
	productID := strings.TrimSpace(in.ProductID)
	if productID == "" || ledger.ValidateQuantity(in.Quantity) != nil || ledger.ValidateQuantity(in.LowStockThreshold) != nil {
		return nil, domain.ErrInvalidInput
	}
	ctx, end := uc.begin(ctx, "Onboard", productID)
	now := uc.clock()
	stock := &entity.StockRecord{
		ProductID:         productID,
		Quantity:          in.Quantity,
		LowStockThreshold: in.LowStockThreshold,
		InitialQuantity:   in.Quantity,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	err := mapStoreError(uc.stockRepo.Create(ctx, stock))
	end(err)
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("product_id", productID).
		Int("quantity", in.Quantity).
		Int("low_stock_threshold", in.LowStockThreshold).
		Msg("stock dado de alta")
	out := toStockResponse(stock)
	return &out, nil
}

// Reconcile verifica sum(quantity_change) == quantity - initial_quantity para el producto.
func (uc *LedgerUseCase) Reconcile(ctx context.Context, productID string) (*dto.ReconciliationResponse, error) {
	ctx, end := uc.begin(ctx, "Reconcile", productID)
	out, err := uc.reconcile(ctx, productID)
	end(err)
	return out, err
}

func (uc *LedgerUseCase) reconcile(ctx context.Context, productID string) (*dto.ReconciliationResponse, error) {
	var result ledger.Reconciliation
	// Dentro de una transacción para que contador y suma se lean del mismo estado.
	err := uc.txRunner.Run(ctx, func(stockRepo repository.StockRepository, ledgerRepo repository.LedgerEntryRepository) error {
		stock, err := stockRepo.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if stock == nil {
			return domain.ErrNotFound
		}
		sum, err := ledgerRepo.SumByProduct(ctx, productID)
		if err != nil {
			return err
		}
		result = ledger.Reconcile(stock, sum)
		return nil
	})
	if err != nil {
		return nil, mapStoreError(err)
	}
	if !result.Consistent {
		uc.log.Error().
			Str("product_id", productID).
			Int("quantity", result.Quantity).
			Int("initial_quantity", result.InitialQuantity).
			Int("ledger_sum", result.LedgerSum).
			Msg("contador y ledger no coinciden")
	}
	return &dto.ReconciliationResponse{
		ProductID:       productID,
		Quantity:        result.Quantity,
		InitialQuantity: result.InitialQuantity,
		LedgerSum:       result.LedgerSum,
		Consistent:      result.Consistent,
	}, nil
}

func (uc *LedgerUseCase) getStock(ctx context.Context, productID string) (*entity.StockRecord, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, domain.ErrInvalidInput
	}
	stock, err := uc.stockRepo.Get(ctx, productID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if stock == nil {
		return nil, domain.ErrNotFound
	}
	return stock, nil
}

// begin abre el span de la operación y aplica el timeout del store. end cierra ambos.
func (uc *LedgerUseCase) begin(ctx context.Context, op, productID string) (context.Context, func(error)) {
	ctx, span := uc.tel.start(ctx, op, productID)
	cancel := func() {}
	if uc.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, uc.timeout)
	}
	return ctx, func(err error) {
		cancel()
		finishSpan(span, err)
	}
}

// clock devuelve la hora actual en UTC con precisión de microsegundos (la de timestamptz).
func (uc *LedgerUseCase) clock() time.Time {
	return uc.now().UTC().Truncate(time.Microsecond)
}

// mapStoreError convierte timeouts y cancelaciones en ErrStoreUnavailable. Los errores de dominio
// y los ya marcados como ErrStoreUnavailable pasan sin cambios.
func mapStoreError(err error) error {
	if err == nil || errors.Is(err, domain.ErrStoreUnavailable) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return err
}

func toStockResponse(s *entity.StockRecord) dto.StockResponse {
	return dto.StockResponse{
		ProductID:         s.ProductID,
		Quantity:          s.Quantity,
		LowStockThreshold: s.LowStockThreshold,
		Status:            ledger.StatusOf(s),
		UpdatedAt:         s.UpdatedAt,
	}
}

func toLedgerEntryDTO(e *entity.LedgerEntry) dto.LedgerEntryDTO {
	return dto.LedgerEntryDTO{
		ID:             e.ID,
		ProductID:      e.ProductID,
		QuantityChange: e.QuantityChange,
		Kind:           e.Kind,
		Notes:          e.Notes,
		CreatedBy:      e.CreatedBy,
		CreatedAt:      e.CreatedAt,
	}
}
