package inventory_test

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/storefront-inventory/internal/application/dto"
	"github.com/jhoicas/storefront-inventory/internal/application/inventory"
	"github.com/jhoicas/storefront-inventory/internal/domain"
	"github.com/jhoicas/storefront-inventory/internal/domain/entity"
	"github.com/jhoicas/storefront-inventory/internal/domain/ledger"
)

var fixedNow = time.Date(2026, 5, 4, 10, 30, 0, 123456789, time.UTC)

type fixture struct {
	stock  *MockStockRepository
	ledger *MockLedgerRepository
	tx     *fakeTxRunner
	uc     *inventory.LedgerUseCase
}

func newFixture() *fixture {
	f := &fixture{stock: &MockStockRepository{}, ledger: &MockLedgerRepository{}}
	f.tx = &fakeTxRunner{stock: f.stock, ledger: f.ledger}
	f.uc = inventory.NewLedgerUseCase(f.tx, f.stock, f.ledger,
		inventory.WithClock(func() time.Time { return fixedNow }))
	return f
}

func TestApplyMutation_Compra(t *testing.T) {
	f := newFixture()
	createdAt := fixedNow.Truncate(time.Microsecond)

	f.stock.On("GetForUpdate", mock.Anything, "p1").
		Return(&entity.StockRecord{ProductID: "p1", Quantity: 10, LowStockThreshold: 5}, nil)
	f.ledger.On("LatestCreatedAt", mock.Anything, "p1").Return(time.Time{}, false, nil)
	f.stock.On("UpdateQuantity", mock.Anything, "p1", 7, createdAt).Return(nil)
	f.ledger.On("Append", mock.Anything, mock.MatchedBy(func(e *entity.LedgerEntry) bool {
		return e.ProductID == "p1" && e.QuantityChange == -3 && e.Kind == entity.LedgerKindPurchase &&
			e.CreatedBy == "u1" && e.CreatedAt.Equal(createdAt) && e.ID != ""
	})).Return(nil)

	out, err := f.uc.ApplyMutation(context.Background(), inventory.MutationInput{
		ActorID: "u1", ProductID: "p1", QuantityChange: -3, Kind: entity.LedgerKindPurchase,
	})

	require.NoError(t, err)
	assert.Equal(t, 7, out.NewQuantity)
	assert.Equal(t, -3, out.Entry.QuantityChange)
	assert.Equal(t, 1, f.tx.runs)
	f.stock.AssertExpectations(t)
	f.ledger.AssertExpectations(t)
}

func TestApplyMutation_StockInsuficienteNoEscribe(t *testing.T) {
	f := newFixture()
	f.stock.On("GetForUpdate", mock.Anything, "p1").
		Return(&entity.StockRecord{ProductID: "p1", Quantity: 4, LowStockThreshold: 5}, nil)

	out, err := f.uc.ApplyMutation(context.Background(), inventory.MutationInput{
		ActorID: "u1", ProductID: "p1", QuantityChange: -10, Kind: entity.LedgerKindPurchase,
	})

	assert.Nil(t, out)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	f.stock.AssertNotCalled(t, "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.ledger.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestApplyMutation_SinActorEsUnauthorized(t *testing.T) {
	f := newFixture()

	_, err := f.uc.ApplyMutation(context.Background(), inventory.MutationInput{
		ProductID: "p1", QuantityChange: 5, Kind: entity.LedgerKindRestock,
	})

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Zero(t, f.tx.runs, "no debe abrir transacción")
}

func TestApplyMutation_EntradaInvalida(t *testing.T) {
	cases := []struct {
		name string
		in   inventory.MutationInput
	}{
		{"cambio cero", inventory.MutationInput{ActorID: "u1", ProductID: "p1", QuantityChange: 0, Kind: entity.LedgerKindAdjustment}},
		{"restock negativo", inventory.MutationInput{ActorID: "u1", ProductID: "p1", QuantityChange: -2, Kind: entity.LedgerKindRestock}},
		{"compra positiva", inventory.MutationInput{ActorID: "u1", ProductID: "p1", QuantityChange: 2, Kind: entity.LedgerKindPurchase}},
		{"tipo desconocido", inventory.MutationInput{ActorID: "u1", ProductID: "p1", QuantityChange: 2, Kind: "gift"}},
		{"producto vacío", inventory.MutationInput{ActorID: "u1", ProductID: "  ", QuantityChange: 2, Kind: entity.LedgerKindRestock}},
		{"notas demasiado largas", inventory.MutationInput{ActorID: "u1", ProductID: "p1", QuantityChange: 2, Kind: entity.LedgerKindRestock,
			Notes: strings.Repeat("ñ", inventory.MaxNotesLength+1)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.uc.ApplyMutation(context.Background(), tc.in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Zero(t, f.tx.runs)
		})
	}
}

func TestApplyMutation_NotasEnLimiteSeAceptan(t *testing.T) {
	f := newFixture()
	notes := strings.Repeat("é", inventory.MaxNotesLength)
	f.stock.On("GetForUpdate", mock.Anything, "p1").Return(&entity.StockRecord{ProductID: "p1", Quantity: 1}, nil)
	f.ledger.On("LatestCreatedAt", mock.Anything, "p1").Return(time.Time{}, false, nil)
	f.stock.On("UpdateQuantity", mock.Anything, "p1", 3, mock.Anything).Return(nil)
	f.ledger.On("Append", mock.Anything, mock.Anything).Return(nil)

	out, err := f.uc.ApplyMutation(context.Background(), inventory.MutationInput{
		ActorID: "u1", ProductID: "p1", QuantityChange: 2, Kind: entity.LedgerKindRestock, Notes: "  " + notes + "  ",
	})

	require.NoError(t, err)
	assert.Equal(t, notes, out.Entry.Notes)
}

func TestApplyMutation_ProductoInexistente(t *testing.T) {
	f := newFixture()
	f.stock.On("GetForUpdate", mock.Anything, "nope").Return(nil, nil)

	_, err := f.uc.ApplyMutation(context.Background(), inventory.MutationInput{
		ActorID: "u1", ProductID: "nope", QuantityChange: 1, Kind: entity.LedgerKindRestock,
	})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApplyMutation_TimeoutEsStoreUnavailable(t *testing.T) {
	f := newFixture()
	f.stock.On("GetForUpdate", mock.Anything, "p1").Return(nil, context.DeadlineExceeded)

	_, err := f.uc.ApplyMutation(context.Background(), inventory.MutationInput{
		ActorID: "u1", ProductID: "p1", QuantityChange: 1, Kind: entity.LedgerKindRestock,
	})

	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestApplyMutation_FalloDelAppendSePropaga(t *testing.T) {
	f := newFixture()
	appendErr := errors.New("disco lleno")
	f.stock.On("GetForUpdate", mock.Anything, "p1").Return(&entity.StockRecord{ProductID: "p1", Quantity: 5}, nil)
	f.ledger.On("LatestCreatedAt", mock.Anything, "p1").Return(time.Time{}, false, nil)
	f.stock.On("UpdateQuantity", mock.Anything, "p1", 6, mock.Anything).Return(nil)
	f.ledger.On("Append", mock.Anything, mock.Anything).Return(appendErr)

	out, err := f.uc.ApplyMutation(context.Background(), inventory.MutationInput{
		ActorID: "u1", ProductID: "p1", QuantityChange: 1, Kind: entity.LedgerKindAdjustment,
	})

	assert.Nil(t, out)
	assert.ErrorIs(t, err, appendErr)
}

func TestApplyMutation_RelojQueRetrocedeReutilizaUltimoCreatedAt(t *testing.T) {
	f := newFixture()
	last := fixedNow.Add(time.Hour).Truncate(time.Microsecond)
	f.stock.On("GetForUpdate", mock.Anything, "p1").Return(&entity.StockRecord{ProductID: "p1", Quantity: 5}, nil)
	f.ledger.On("LatestCreatedAt", mock.Anything, "p1").Return(last, true, nil)
	f.stock.On("UpdateQuantity", mock.Anything, "p1", 4, last).Return(nil)
	f.ledger.On("Append", mock.Anything, mock.Anything).Return(nil)

	out, err := f.uc.ApplyMutation(context.Background(), inventory.MutationInput{
		ActorID: "u1", ProductID: "p1", QuantityChange: -1, Kind: entity.LedgerKindPurchase,
	})

	require.NoError(t, err)
	assert.True(t, out.Entry.CreatedAt.Equal(last))
}

func TestApplyMutationFromRequest(t *testing.T) {
	f := newFixture()
	f.stock.On("GetForUpdate", mock.Anything, "p1").Return(&entity.StockRecord{ProductID: "p1", Quantity: 0}, nil)
	f.ledger.On("LatestCreatedAt", mock.Anything, "p1").Return(time.Time{}, false, nil)
	f.stock.On("UpdateQuantity", mock.Anything, "p1", 12, mock.Anything).Return(nil)
	f.ledger.On("Append", mock.Anything, mock.Anything).Return(nil)

	out, err := f.uc.ApplyMutationFromRequest(context.Background(), "admin-1", "p1", dto.ApplyMutationRequest{
		QuantityChange: 12, Kind: entity.LedgerKindRestock, Notes: "llegó proveedor",
	})

	require.NoError(t, err)
	assert.Equal(t, 12, out.NewQuantity)
	assert.Equal(t, "admin-1", out.Entry.CreatedBy)
	assert.Equal(t, "llegó proveedor", out.Entry.Notes)
}

func TestCheckout_AgrupaYBloqueaEnOrden(t *testing.T) {
	f := newFixture()
	var locked []string
	lock := func(args mock.Arguments) { locked = append(locked, args.String(1)) }
	f.stock.On("GetForUpdate", mock.Anything, "b").Run(lock).Return(&entity.StockRecord{ProductID: "b", Quantity: 5}, nil)
	f.stock.On("GetForUpdate", mock.Anything, "a").Run(lock).Return(&entity.StockRecord{ProductID: "a", Quantity: 5}, nil)
	f.ledger.On("LatestCreatedAt", mock.Anything, mock.Anything).Return(time.Time{}, false, nil)
	f.stock.On("UpdateQuantity", mock.Anything, "a", 4, mock.Anything).Return(nil)
	f.stock.On("UpdateQuantity", mock.Anything, "b", 2, mock.Anything).Return(nil)
	f.ledger.On("Append", mock.Anything, mock.Anything).Return(nil)

	out, err := f.uc.Checkout(context.Background(), "u1", dto.CheckoutRequest{Items: []dto.CheckoutItem{
		{ProductID: "b", Quantity: 1},
		{ProductID: "a", Quantity: 1},
		{ProductID: "b", Quantity: 2},
	}})

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, locked)
	require.Len(t, out.Lines, 2)
	assert.Equal(t, 4, out.Lines[0].NewQuantity)
	assert.Equal(t, 2, out.Lines[1].NewQuantity)
	assert.Equal(t, -3, out.Lines[1].Entry.QuantityChange)
	assert.Equal(t, 1, f.tx.runs, "todas las líneas en una sola transacción")
}

func TestCheckout_UnaLineaSinStockFallaTodo(t *testing.T) {
	f := newFixture()
	f.stock.On("GetForUpdate", mock.Anything, "a").Return(&entity.StockRecord{ProductID: "a", Quantity: 5}, nil)
	f.stock.On("GetForUpdate", mock.Anything, "b").Return(&entity.StockRecord{ProductID: "b", Quantity: 0}, nil)
	f.ledger.On("LatestCreatedAt", mock.Anything, mock.Anything).Return(time.Time{}, false, nil)
	f.stock.On("UpdateQuantity", mock.Anything, "a", 4, mock.Anything).Return(nil)
	f.ledger.On("Append", mock.Anything, mock.Anything).Return(nil)

	out, err := f.uc.Checkout(context.Background(), "u1", dto.CheckoutRequest{Items: []dto.CheckoutItem{
		{ProductID: "a", Quantity: 1},
		{ProductID: "b", Quantity: 1},
	}})

	assert.Nil(t, out)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestCheckout_Validaciones(t *testing.T) {
	f := newFixture()

	_, err := f.uc.Checkout(context.Background(), "", dto.CheckoutRequest{Items: []dto.CheckoutItem{{ProductID: "a", Quantity: 1}}})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = f.uc.Checkout(context.Background(), "u1", dto.CheckoutRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.Checkout(context.Background(), "u1", dto.CheckoutRequest{Items: []dto.CheckoutItem{{ProductID: "a", Quantity: 0}}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Zero(t, f.tx.runs)
}

func TestCheckout_LineasRepetidasQueDesbordanSonInvalidas(t *testing.T) {
	f := newFixture()

	_, err := f.uc.Checkout(context.Background(), "u1", dto.CheckoutRequest{Items: []dto.CheckoutItem{
		{ProductID: "sku", Quantity: math.MaxInt64},
		{ProductID: "sku", Quantity: math.MaxInt64},
	}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.Checkout(context.Background(), "u1", dto.CheckoutRequest{Items: []dto.CheckoutItem{
		{ProductID: "sku", Quantity: ledger.MaxQuantity},
		{ProductID: "sku", Quantity: 1},
	}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "el total por producto tampoco puede superar el tope")

	assert.Zero(t, f.tx.runs)
	f.stock.AssertNotCalled(t, "GetForUpdate", mock.Anything, mock.Anything)
	f.stock.AssertNotCalled(t, "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.ledger.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestApplyMutation_CambioFueraDeRango(t *testing.T) {
	f := newFixture()

	_, err := f.uc.ApplyMutation(context.Background(), inventory.MutationInput{
		ActorID: "u1", ProductID: "p1", QuantityChange: math.MaxInt64, Kind: entity.LedgerKindRestock,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, f.tx.runs)

	f.stock.On("GetForUpdate", mock.Anything, "p1").
		Return(&entity.StockRecord{ProductID: "p1", Quantity: 1}, nil)

	_, err = f.uc.ApplyMutation(context.Background(), inventory.MutationInput{
		ActorID: "u1", ProductID: "p1", QuantityChange: ledger.MaxQuantity, Kind: entity.LedgerKindRestock,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "el nuevo total no cabe")
	f.stock.AssertNotCalled(t, "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.ledger.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}
