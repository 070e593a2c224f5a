// Package ledger contiene las reglas puras del ledger de inventario (servicio de dominio):
// disponibilidad, guarda de stock no negativo, validación de tipos y orden temporal del log.
package ledger

import (
	"math"
	"time"

	"github.com/jhoicas/storefront-inventory/internal/domain"
	"github.com/jhoicas/storefront-inventory/internal/domain/entity"
)

// Etiquetas de estado para la pantalla de inventario.
const (
	StatusLowStock = "low_stock"
	StatusInStock  = "in_stock"
)

// MaxQuantity tope de cantidades, umbrales y cambios. Las columnas son INTEGER en PostgreSQL.
const MaxQuantity = math.MaxInt32

// Availability resultado de CheckAvailability.
type Availability struct {
	InStock           bool
	IsLowStock        bool
	AvailableQuantity int
}

// CheckAvailability: InStock = quantity >= requested; IsLowStock = quantity <= threshold.
// Ambas banderas son independientes.
func CheckAvailability(stock *entity.StockRecord, requested int) Availability {
	return Availability{
		InStock:           stock.Quantity >= requested,
		IsLowStock:        IsLowStock(stock),
		AvailableQuantity: stock.Quantity,
	}
}

// IsLowStock usa <= (un producto justo en el umbral ya cuenta como bajo stock).
func IsLowStock(stock *entity.StockRecord) bool {
	return stock.Quantity <= stock.LowStockThreshold
}

// StatusOf devuelve la etiqueta de estado del registro.
func StatusOf(stock *entity.StockRecord) string {
	if IsLowStock(stock) {
		return StatusLowStock
	}
	return StatusInStock
}

// ValidateQuantity exige 0 <= q <= MaxQuantity (cantidad o umbral de alta).
func ValidateQuantity(q int) error {
	if q < 0 || q > MaxQuantity {
		return domain.ErrInvalidInput
	}
	return nil
}

// NextQuantity calcula current + change. Si el resultado es negativo devuelve ErrInsufficientStock;
// si supera MaxQuantity, o change está fuera de rango, ErrInvalidInput. En error el llamador no
// debe escribir nada.
func NextQuantity(current, change int) (int, error) {
	if change < -MaxQuantity || change > MaxQuantity {
		return current, domain.ErrInvalidInput
	}
	next := current + change
	if next < 0 {
		return current, domain.ErrInsufficientStock
	}
	if next > MaxQuantity {
		return current, domain.ErrInvalidInput
	}
	return next, nil
}

// ValidateChange valida el signo del cambio según el tipo:
// restock > 0, purchase < 0, adjustment != 0. Cero nunca es válido, y |change| <= MaxQuantity.
func ValidateChange(kind string, change int) error {
	if change == 0 || change < -MaxQuantity || change > MaxQuantity {
		return domain.ErrInvalidInput
	}
	switch kind {
	case entity.LedgerKindRestock:
		if change < 0 {
			return domain.ErrInvalidInput
		}
	case entity.LedgerKindPurchase:
		if change > 0 {
			return domain.ErrInvalidInput
		}
	case entity.LedgerKindAdjustment:
	default:
		return domain.ErrInvalidInput
	}
	return nil
}

// NextTimestamp devuelve el created_at para una nueva entrada del producto: now, salvo que el reloj
// haya retrocedido respecto a la última entrada, en cuyo caso se reutiliza last.
// Garantiza created_at no decreciente por producto en orden de log.
func NextTimestamp(now, last time.Time, hasLast bool) time.Time {
	if hasLast && now.Before(last) {
		return last
	}
	return now
}

// Reconciliation resultado de verificar el invariante de auditoría:
// sum(quantity_change) == quantity - initial_quantity.
type Reconciliation struct {
	Quantity        int
	InitialQuantity int
	LedgerSum       int
	Consistent      bool
}

// Reconcile compara el contador con la suma del log.
func Reconcile(stock *entity.StockRecord, ledgerSum int) Reconciliation {
	return Reconciliation{
		Quantity:        stock.Quantity,
		InitialQuantity: stock.InitialQuantity,
		LedgerSum:       ledgerSum,
		Consistent:      stock.Quantity-stock.InitialQuantity == ledgerSum,
	}
}
