package entity

import "time"

// Tipos de movimiento del ledger de inventario.
const (
	LedgerKindRestock    = "restock"    // reposición (siempre positiva)
	LedgerKindPurchase   = "purchase"   // compra del storefront (siempre negativa)
	LedgerKindAdjustment = "adjustment" // ajuste manual, cualquier signo
)

// LedgerEntry registro inmutable de una mutación de stock. Se crea una sola vez por
// mutación exitosa y nunca se actualiza ni se elimina.
type LedgerEntry struct {
	ID             string
	Seq            int64 // orden de inserción asignado por el store
	ProductID      string
	QuantityChange int // positivo entrada, negativo salida
	Kind           string
	Notes          string
	CreatedBy      string
	CreatedAt      time.Time
}

// IsValidLedgerKind indica si kind es uno de los tipos soportados.
func IsValidLedgerKind(kind string) bool {
	switch kind {
	case LedgerKindRestock, LedgerKindPurchase, LedgerKindAdjustment:
		return true
	}
	return false
}
