package dto

import "time"

// StockResponse salida de un StockRecord.
type StockResponse struct {
	ProductID         string    `json:"product_id"`
	Quantity          int       `json:"quantity"`
	LowStockThreshold int       `json:"low_stock_threshold"`
	Status            string    `json:"status"` // low_stock | in_stock
	UpdatedAt         time.Time `json:"updated_at"`
}

// OnboardStockRequest body para POST /api/inventory (alta del stock de un producto).
type OnboardStockRequest struct {
	ProductID         string `json:"product_id" yaml:"product_id"`
	Quantity          int    `json:"quantity" yaml:"quantity"`
	LowStockThreshold int    `json:"low_stock_threshold" yaml:"low_stock_threshold"`
}

// AvailabilityResponse salida de GET /api/inventory/:productId/availability.
type AvailabilityResponse struct {
	ProductID         string `json:"product_id"`
	RequestedQuantity int    `json:"requested_quantity"`
	InStock           bool   `json:"in_stock"`
	IsLowStock        bool   `json:"is_low_stock"`
	AvailableQuantity int    `json:"available_quantity"`
}

// ApplyMutationRequest body para POST /api/inventory/:productId/mutations.
type ApplyMutationRequest struct {
	QuantityChange int    `json:"quantity_change"`
	Kind           string `json:"kind"` // restock | purchase | adjustment
	Notes          string `json:"notes,omitempty"`
}

// MutationResponse resultado de una mutación confirmada.
type MutationResponse struct {
	ProductID   string         `json:"product_id"`
	NewQuantity int            `json:"new_quantity"`
	Entry       LedgerEntryDTO `json:"entry"`
}

// CheckoutItem línea del carrito a descontar.
type CheckoutItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CheckoutRequest body para POST /api/inventory/checkout.
type CheckoutRequest struct {
	Items []CheckoutItem `json:"items"`
	Notes string         `json:"notes,omitempty"`
}

// CheckoutResponse cantidades resultantes por producto, en el orden en que se aplicaron.
type CheckoutResponse struct {
	Lines []MutationResponse `json:"lines"`
}

// LedgerEntryDTO salida de una entrada del ledger.
type LedgerEntryDTO struct {
	ID             string    `json:"id"`
	ProductID      string    `json:"product_id"`
	QuantityChange int       `json:"quantity_change"`
	Kind           string    `json:"kind"`
	Notes          string    `json:"notes,omitempty"`
	CreatedBy      string    `json:"created_by,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// TransactionListResponse página del historial de un producto (más reciente primero).
type TransactionListResponse struct {
	Items []LedgerEntryDTO `json:"items"`
	Page  PageResponse     `json:"page"`
}

// StockListResponse página de la pantalla de inventario.
type StockListResponse struct {
	Items []StockResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// ReconciliationResponse resultado de verificar sum(quantity_change) == quantity - initial_quantity.
type ReconciliationResponse struct {
	ProductID       string `json:"product_id"`
	Quantity        int    `json:"quantity"`
	InitialQuantity int    `json:"initial_quantity"`
	LedgerSum       int    `json:"ledger_sum"`
	Consistent      bool   `json:"consistent"`
}
