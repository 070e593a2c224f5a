package inventory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/storefront-inventory/internal/application/dto"
	"github.com/jhoicas/storefront-inventory/internal/domain"
	"github.com/jhoicas/storefront-inventory/internal/domain/entity"
	"github.com/jhoicas/storefront-inventory/internal/domain/ledger"
	"github.com/jhoicas/storefront-inventory/internal/domain/repository"
)

// MaxNotesLength límite de caracteres (runas) de las notas de una entrada del ledger.
const MaxNotesLength = 500

// MutationInput entrada para ApplyMutation.
// ActorID identifica al llamador autenticado y queda como created_by de la entrada.
type MutationInput struct {
	ActorID        string
	ProductID      string
	QuantityChange int
	Kind           string
	Notes          string
}

// ApplyMutationFromRequest adapta el request HTTP al caso de uso ApplyMutation.
func (uc *LedgerUseCase) ApplyMutationFromRequest(ctx context.Context, actorID, productID string, in dto.ApplyMutationRequest) (*dto.MutationResponse, error) {
	return uc.ApplyMutation(ctx, MutationInput{
		ActorID:        actorID,
		ProductID:      productID,
		QuantityChange: in.QuantityChange,
		Kind:           in.Kind,
		Notes:          in.Notes,
	})
}

// ApplyMutation inicia una transacción, bloquea la fila del producto (SELECT FOR UPDATE),
// calcula quantity + change y, si no queda negativo, persiste el contador y agrega la entrada
// al ledger. Commit o Rollback los hace TxRunner.Run: nunca queda uno sin el otro.
func (uc *LedgerUseCase) ApplyMutation(ctx context.Context, in MutationInput) (*dto.MutationResponse, error) {
	if strings.TrimSpace(in.ActorID) == "" {
		uc.tel.countMutation(ctx, in.Kind, domain.ErrUnauthorized)
		return nil, domain.ErrUnauthorized
	}
	productID := strings.TrimSpace(in.ProductID)
	notes, err := normalizeNotes(in.Notes)
	if err == nil && productID == "" {
		err = domain.ErrInvalidInput
	}
	if err == nil {
		err = ledger.ValidateChange(in.Kind, in.QuantityChange)
	}
	if err != nil {
		uc.tel.countMutation(ctx, in.Kind, err)
		return nil, err
	}

	ctx, end := uc.begin(ctx, "ApplyMutation", productID)
	var (
		entry  *entity.LedgerEntry
		newQty int
	)
	err = uc.txRunner.Run(ctx, func(stockRepo repository.StockRepository, ledgerRepo repository.LedgerEntryRepository) error {
		var txErr error
		entry, newQty, txErr = uc.applyInTx(ctx, stockRepo, ledgerRepo, productID, in.QuantityChange, in.Kind, notes, in.ActorID)
		return txErr
	})
	err = mapStoreError(err)
	end(err)
	uc.tel.countMutation(ctx, in.Kind, err)
	if err != nil {
		uc.logRejected(productID, in.Kind, in.QuantityChange, err)
		return nil, err
	}

	uc.log.Info().
		Str("product_id", productID).
		Str("kind", in.Kind).
		Int("quantity_change", in.QuantityChange).
		Int("new_quantity", newQty).
		Str("actor", in.ActorID).
		Msg("mutación de inventario aplicada")

	return &dto.MutationResponse{
		ProductID:   productID,
		NewQuantity: newQty,
		Entry:       toLedgerEntryDTO(entry),
	}, nil
}

// Checkout descuenta todas las líneas del carrito como compras en UNA transacción.
// Las filas se bloquean en orden de product_id para que dos checkouts concurrentes no se
// bloqueen mutuamente. Si una línea no alcanza, no se aplica ninguna.
func (uc *LedgerUseCase) Checkout(ctx context.Context, actorID string, in dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	if strings.TrimSpace(actorID) == "" {
		uc.tel.countMutation(ctx, entity.LedgerKindPurchase, domain.ErrUnauthorized)
		return nil, domain.ErrUnauthorized
	}
	lines, err := mergeCheckoutItems(in.Items)
	if err != nil {
		return nil, err
	}
	notes, err := normalizeNotes(in.Notes)
	if err != nil {
		return nil, err
	}

	ctx, end := uc.begin(ctx, "Checkout", "")
	out := &dto.CheckoutResponse{Lines: make([]dto.MutationResponse, 0, len(lines))}
	err = uc.txRunner.Run(ctx, func(stockRepo repository.StockRepository, ledgerRepo repository.LedgerEntryRepository) error {
		out.Lines = out.Lines[:0]
		for _, line := range lines {
			if txErr := ledger.ValidateChange(entity.LedgerKindPurchase, -line.Quantity); txErr != nil {
				return txErr
			}
			entry, newQty, txErr := uc.applyInTx(ctx, stockRepo, ledgerRepo,
				line.ProductID, -line.Quantity, entity.LedgerKindPurchase, notes, actorID)
			if txErr != nil {
				return txErr
			}
			out.Lines = append(out.Lines, dto.MutationResponse{
				ProductID:   line.ProductID,
				NewQuantity: newQty,
				Entry:       toLedgerEntryDTO(entry),
			})
		}
		return nil
	})
	err = mapStoreError(err)
	end(err)
	uc.tel.countMutation(ctx, entity.LedgerKindPurchase, err)
	if err != nil {
		uc.log.Warn().Err(err).Int("lines", len(lines)).Str("actor", actorID).Msg("checkout rechazado")
		return nil, err
	}
	uc.log.Info().Int("lines", len(lines)).Str("actor", actorID).Msg("checkout aplicado")
	return out, nil
}

// applyInTx pasos 1-3 de la mutación, con los repos atados a la transacción del llamador.
func (uc *LedgerUseCase) applyInTx(
	ctx context.Context,
	stockRepo repository.StockRepository,
	ledgerRepo repository.LedgerEntryRepository,
	productID string,
	change int,
	kind, notes, actorID string,
) (*entity.LedgerEntry, int, error) {
	// Bloquea la fila del producto para evitar lecturas concurrentes del mismo valor inicial
	stock, err := stockRepo.GetForUpdate(ctx, productID)
	if err != nil {
		return nil, 0, err
	}
	if stock == nil {
		return nil, 0, domain.ErrNotFound
	}
	newQty, err := ledger.NextQuantity(stock.Quantity, change)
	if err != nil {
		return nil, stock.Quantity, err
	}
	last, hasLast, err := ledgerRepo.LatestCreatedAt(ctx, productID)
	if err != nil {
		return nil, 0, err
	}
	createdAt := ledger.NextTimestamp(uc.clock(), last, hasLast)

	if err := stockRepo.UpdateQuantity(ctx, productID, newQty, createdAt); err != nil {
		return nil, 0, err
	}
	entry := &entity.LedgerEntry{
		ID:             uuid.New().String(),
		ProductID:      productID,
		QuantityChange: change,
		Kind:           kind,
		Notes:          notes,
		CreatedBy:      actorID,
		CreatedAt:      createdAt,
	}
	if err := ledgerRepo.Append(ctx, entry); err != nil {
		return nil, 0, err
	}
	return entry, newQty, nil
}

func (uc *LedgerUseCase) logRejected(productID, kind string, change int, err error) {
	ev := uc.log.Warn()
	if errors.Is(err, domain.ErrStoreUnavailable) {
		ev = uc.log.Error()
	}
	ev.Err(err).
		Str("product_id", productID).
		Str("kind", kind).
		Int("quantity_change", change).
		Msg("mutación de inventario rechazada")
}

// normalizeNotes recorta espacios y normaliza a NFC; más de MaxNotesLength runas es ErrInvalidInput.
func normalizeNotes(notes string) (string, error) {
	notes = norm.NFC.String(strings.TrimSpace(notes))
	if utf8.RuneCountInString(notes) > MaxNotesLength {
		return "", domain.ErrInvalidInput
	}
	return notes, nil
}

// mergeCheckoutItems valida las líneas, suma las repetidas y las ordena por product_id.
// Cada línea y cada total por producto quedan en [1, ledger.MaxQuantity].
func mergeCheckoutItems(items []dto.CheckoutItem) ([]dto.CheckoutItem, error) {
	if len(items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	byProduct := make(map[string]int, len(items))
	for _, it := range items {
		id := strings.TrimSpace(it.ProductID)
		if id == "" || it.Quantity < 1 || it.Quantity > ledger.MaxQuantity-byProduct[id] {
			return nil, domain.ErrInvalidInput
		}
		byProduct[id] += it.Quantity
	}
	merged := make([]dto.CheckoutItem, 0, len(byProduct))
	for id, qty := range byProduct {
		merged = append(merged, dto.CheckoutItem{ProductID: id, Quantity: qty})
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].ProductID < merged[j].ProductID })
	return merged, nil
}
