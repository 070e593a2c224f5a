package ledger_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/storefront-inventory/internal/domain"
	"github.com/jhoicas/storefront-inventory/internal/domain/entity"
	"github.com/jhoicas/storefront-inventory/internal/domain/ledger"
)

func TestCheckAvailability_InStockSiCantidadAlcanza(t *testing.T) {
	stock := &entity.StockRecord{ProductID: "p1", Quantity: 7, LowStockThreshold: 5}

	assert.True(t, ledger.CheckAvailability(stock, 7).InStock)
	assert.False(t, ledger.CheckAvailability(stock, 8).InStock)
	assert.Equal(t, 7, ledger.CheckAvailability(stock, 1).AvailableQuantity)
}

// isLowStock es independiente de inStock.
func TestCheckAvailability_LowStockIndependienteDeInStock(t *testing.T) {
	cases := []struct {
		name      string
		quantity  int
		threshold int
		requested int
		inStock   bool
		lowStock  bool
	}{
		{"sobre el umbral", 10, 5, 1, true, false},
		{"justo en el umbral", 5, 5, 1, true, true},
		{"bajo el umbral pero disponible", 4, 5, 4, true, true},
		{"bajo el umbral y no alcanza", 4, 5, 8, false, true},
		{"no alcanza y sin umbral", 3, 0, 8, false, false},
		{"agotado con umbral cero", 0, 0, 1, false, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stock := &entity.StockRecord{Quantity: tc.quantity, LowStockThreshold: tc.threshold}
			got := ledger.CheckAvailability(stock, tc.requested)
			assert.Equal(t, tc.inStock, got.InStock)
			assert.Equal(t, tc.lowStock, got.IsLowStock)
		})
	}
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, ledger.StatusLowStock, ledger.StatusOf(&entity.StockRecord{Quantity: 2, LowStockThreshold: 2}))
	assert.Equal(t, ledger.StatusInStock, ledger.StatusOf(&entity.StockRecord{Quantity: 3, LowStockThreshold: 2}))
}

func TestNextQuantity(t *testing.T) {
	next, err := ledger.NextQuantity(10, -3)
	require.NoError(t, err)
	assert.Equal(t, 7, next)

	next, err = ledger.NextQuantity(1, -1)
	require.NoError(t, err)
	assert.Equal(t, 0, next, "llegar exactamente a cero es válido")

	next, err = ledger.NextQuantity(4, -10)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 4, next, "en error se devuelve la cantidad sin cambios")
}

func TestNextQuantity_Limites(t *testing.T) {
	next, err := ledger.NextQuantity(0, ledger.MaxQuantity)
	require.NoError(t, err)
	assert.Equal(t, ledger.MaxQuantity, next)

	next, err = ledger.NextQuantity(1, ledger.MaxQuantity)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "el resultado no cabe en la columna")
	assert.Equal(t, 1, next)

	_, err = ledger.NextQuantity(1, math.MaxInt64)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin desbordamiento a negativo")

	_, err = ledger.NextQuantity(5, math.MinInt64+2)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	next, err = ledger.NextQuantity(ledger.MaxQuantity, -ledger.MaxQuantity)
	require.NoError(t, err)
	assert.Equal(t, 0, next)
}

func TestValidateQuantity(t *testing.T) {
	assert.NoError(t, ledger.ValidateQuantity(0))
	assert.NoError(t, ledger.ValidateQuantity(ledger.MaxQuantity))
	assert.ErrorIs(t, ledger.ValidateQuantity(-1), domain.ErrInvalidInput)
	assert.ErrorIs(t, ledger.ValidateQuantity(ledger.MaxQuantity+1), domain.ErrInvalidInput)
}

func TestValidateChange(t *testing.T) {
	cases := []struct {
		kind   string
		change int
		valid  bool
	}{
		{entity.LedgerKindRestock, 5, true},
		{entity.LedgerKindRestock, -5, false},
		{entity.LedgerKindPurchase, -1, true},
		{entity.LedgerKindPurchase, 1, false},
		{entity.LedgerKindAdjustment, 3, true},
		{entity.LedgerKindAdjustment, -3, true},
		{entity.LedgerKindAdjustment, 0, false},
		{entity.LedgerKindRestock, 0, false},
		{entity.LedgerKindRestock, ledger.MaxQuantity, true},
		{entity.LedgerKindRestock, ledger.MaxQuantity + 1, false},
		{entity.LedgerKindPurchase, -ledger.MaxQuantity, true},
		{entity.LedgerKindPurchase, -ledger.MaxQuantity - 1, false},
		{entity.LedgerKindAdjustment, math.MaxInt64, false},
		{entity.LedgerKindAdjustment, math.MinInt64, false},
		{"gift", 1, false},
		{"", -1, false},
	}
	for _, tc := range cases {
		err := ledger.ValidateChange(tc.kind, tc.change)
		if tc.valid {
			assert.NoError(t, err, "%s %d", tc.kind, tc.change)
		} else {
			assert.ErrorIs(t, err, domain.ErrInvalidInput, "%s %d", tc.kind, tc.change)
		}
	}
}

func TestNextTimestamp_NuncaRetrocede(t *testing.T) {
	last := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, last, ledger.NextTimestamp(last.Add(-time.Second), last, true),
		"si el reloj retrocede se reutiliza el último created_at")

	later := last.Add(time.Minute)
	assert.Equal(t, later, ledger.NextTimestamp(later, last, true))

	early := last.Add(-time.Hour)
	assert.Equal(t, early, ledger.NextTimestamp(early, time.Time{}, false),
		"sin entradas previas se usa now")
}

func TestReconcile(t *testing.T) {
	stock := &entity.StockRecord{Quantity: 4, InitialQuantity: 10}

	ok := ledger.Reconcile(stock, -6)
	assert.True(t, ok.Consistent)
	assert.Equal(t, -6, ok.LedgerSum)

	broken := ledger.Reconcile(stock, -3)
	assert.False(t, broken.Consistent)
}
