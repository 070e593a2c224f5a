package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/jhoicas/storefront-inventory/internal/application/dto"
	"github.com/jhoicas/storefront-inventory/internal/domain"
)

// Códigos de salida.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // el ledger rechazó la operación (stock insuficiente, no encontrado, inválido)
	ExitCommandError = 2 // flags, configuración o store inaccesible
)

// ExitError error con código de salida.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError crea un ExitError sin causa.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError envuelve err con un código de salida.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extrae el código de salida. Store no disponible es error de comando;
// el resto de errores de dominio son ExitFailure.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if errors.Is(err, domain.ErrStoreUnavailable) {
		return ExitCommandError
	}
	return ExitFailure
}

// printer escribe resultados en texto de ancho fijo o JSON.
type printer struct {
	format string
	w      io.Writer
}

func (p printer) json(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p printer) stocks(list []dto.StockResponse) error {
	if p.format == "json" {
		return p.json(list)
	}
	if len(list) == 0 {
		_, err := fmt.Fprintln(p.w, "sin productos")
		return err
	}
	fmt.Fprintf(p.w, "%-24s %8s %8s  %s\n", "PRODUCTO", "CANTIDAD", "UMBRAL", "ESTADO")
	for _, s := range list {
		fmt.Fprintf(p.w, "%-24s %8d %8d  %s\n", s.ProductID, s.Quantity, s.LowStockThreshold, s.Status)
	}
	return nil
}

func (p printer) availability(av *dto.AvailabilityResponse) error {
	if p.format == "json" {
		return p.json(av)
	}
	_, err := fmt.Fprintf(p.w, "%s: pedido=%d disponible=%d en_stock=%s bajo_stock=%s\n",
		av.ProductID, av.RequestedQuantity, av.AvailableQuantity, yesNo(av.InStock), yesNo(av.IsLowStock))
	return err
}

func (p printer) mutation(m *dto.MutationResponse) error {
	if p.format == "json" {
		return p.json(m)
	}
	_, err := fmt.Fprintf(p.w, "%s: %+d (%s) -> %d\n", m.ProductID, m.Entry.QuantityChange, m.Entry.Kind, m.NewQuantity)
	return err
}

func (p printer) history(productID string, list *dto.TransactionListResponse) error {
	if p.format == "json" {
		return p.json(list)
	}
	fmt.Fprintf(p.w, "%-19s  %-10s %7s  %-16s %s\n", "FECHA", "TIPO", "CAMBIO", "USUARIO", "NOTAS")
	for _, e := range list.Items {
		fmt.Fprintf(p.w, "%-19s  %-10s %+7d  %-16s %s\n",
			e.CreatedAt.UTC().Format("2006-01-02 15:04:05"), e.Kind, e.QuantityChange, e.CreatedBy, e.Notes)
	}
	_, err := fmt.Fprintf(p.w, "%s: %d de %d movimientos (offset %d)\n", productID, len(list.Items), list.Page.Total, list.Page.Offset)
	return err
}

func (p printer) reconciliation(r *dto.ReconciliationResponse) error {
	if p.format == "json" {
		return p.json(r)
	}
	_, err := fmt.Fprintf(p.w, "%s: cantidad=%d inicial=%d suma_ledger=%+d consistente=%s\n",
		r.ProductID, r.Quantity, r.InitialQuantity, r.LedgerSum, yesNo(r.Consistent))
	return err
}

func yesNo(b bool) string {
	if b {
		return "si"
	}
	return "no"
}
