package entity

import "time"

// StockRecord representa el stock actual de un producto del catálogo (una fila por producto).
// Quantity nunca queda negativa después de una mutación confirmada.
type StockRecord struct {
	ProductID         string
	Quantity          int
	LowStockThreshold int // advertencia; no es invariante
	InitialQuantity   int // cantidad al dar de alta el producto, ancla la auditoría
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
