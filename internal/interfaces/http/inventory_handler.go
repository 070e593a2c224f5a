package http

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/storefront-inventory/internal/application/dto"
	"github.com/jhoicas/storefront-inventory/internal/application/inventory"
)

// InventoryHandler maneja las peticiones HTTP del ledger de inventario.
type InventoryHandler struct {
	uc        *inventory.LedgerUseCase
	stockCard *inventory.StockCardUseCase
	log       zerolog.Logger
}

// NewInventoryHandler construye el handler. stockCard puede ser nil si no hay generador de PDF.
func NewInventoryHandler(uc *inventory.LedgerUseCase, stockCard *inventory.StockCardUseCase, log zerolog.Logger) *InventoryHandler {
	return &InventoryHandler{uc: uc, stockCard: stockCard, log: log}
}

// GetStock godoc
// @Summary      Stock actual de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  true  "ID del producto"
// @Success      200  {object}  dto.StockResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/inventory/{productId} [get]
func (h *InventoryHandler) GetStock(c *fiber.Ctx) error {
	out, err := h.uc.GetStock(c.UserContext(), c.Params("productId"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// CheckAvailability godoc
// @Summary      Disponibilidad para una cantidad
// @Description  Lectura pura, sin reserva: in_stock indica si hoy alcanza la cantidad pedida.
// @Tags         inventory
// @Produce      json
// @Param        productId  path   string  true   "ID del producto"
// @Param        quantity   query  int     false  "Cantidad pedida (por defecto 1)"
// @Success      200  {object}  dto.AvailabilityResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/{productId}/availability [get]
func (h *InventoryHandler) CheckAvailability(c *fiber.Ctx) error {
	requested := 1
	if raw := c.Query("quantity"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "quantity debe ser un entero"})
		}
		requested = n
	}
	out, err := h.uc.CheckAvailability(c.UserContext(), c.Params("productId"), requested)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// ListTransactions godoc
// @Summary      Historial de transacciones del producto
// @Description  Más reciente primero. limit por defecto 20, máximo 100.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        productId  path   string  true   "ID del producto"
// @Param        limit      query  int     false  "Tamaño de página"
// @Param        offset     query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.TransactionListResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/{productId}/transactions [get]
func (h *InventoryHandler) ListTransactions(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "limit y offset deben ser enteros"})
	}
	out, err := h.uc.ListTransactions(c.UserContext(), c.Params("productId"), page)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// ListLowStock godoc
// @Summary      Productos con bajo stock
// @Description  Registros con quantity <= low_stock_threshold, los más comprometidos primero.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.StockResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) ListLowStock(c *fiber.Ctx) error {
	out, err := h.uc.ListLowStock(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// ListInventory godoc
// @Summary      Listado de inventario
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Tamaño de página"
// @Param        offset  query  int  false  "Desplazamiento"
// @Success      200  {object}  dto.StockListResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/inventory [get]
func (h *InventoryHandler) ListInventory(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "limit y offset deben ser enteros"})
	}
	out, err := h.uc.ListInventory(c.UserContext(), page)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Onboard godoc
// @Summary      Alta de stock de un producto
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OnboardStockRequest  true  "product_id, quantity, low_stock_threshold"
// @Success      201   {object}  dto.StockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory [post]
func (h *InventoryHandler) Onboard(c *fiber.Ctx) error {
	var in dto.OnboardStockRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Onboard(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ApplyMutation godoc
// @Summary      Aplicar mutación de stock
// @Description  Reposición, compra o ajuste. Contador y entrada del ledger se confirman juntos.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        productId  path  string                    true  "ID del producto"
// @Param        body       body  dto.ApplyMutationRequest  true  "quantity_change, kind, notes"
// @Success      201  {object}  dto.MutationResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/inventory/{productId}/mutations [post]
func (h *InventoryHandler) ApplyMutation(c *fiber.Ctx) error {
	var in dto.ApplyMutationRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.ApplyMutationFromRequest(c.UserContext(), GetUserID(c), c.Params("productId"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Checkout godoc
// @Summary      Descontar el carrito
// @Description  Todas las líneas se aplican como compras en una sola transacción: o todas o ninguna.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CheckoutRequest  true  "items"
// @Success      201   {object}  dto.CheckoutResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/checkout [post]
func (h *InventoryHandler) Checkout(c *fiber.Ctx) error {
	var in dto.CheckoutRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Checkout(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Reconcile godoc
// @Summary      Conciliar contador y ledger
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  true  "ID del producto"
// @Success      200  {object}  dto.ReconciliationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/{productId}/reconcile [get]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	out, err := h.uc.Reconcile(c.UserContext(), c.Params("productId"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// StockCard godoc
// @Summary      Tarjeta de stock en PDF
// @Tags         inventory
// @Security     Bearer
// @Produce      application/pdf
// @Param        productId  path  string  true  "ID del producto"
// @Success      200  {file}    file
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/{productId}/stock-card.pdf [get]
func (h *InventoryHandler) StockCard(c *fiber.Ctx) error {
	if h.stockCard == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(dto.ErrorResponse{Code: "NOT_IMPLEMENTED", Message: "generador de PDF no configurado"})
	}
	productID := c.Params("productId")
	pdf, err := h.stockCard.Generate(c.UserContext(), productID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+stockCardFilename(productID)+`"`)
	return c.Send(pdf)
}

// stockCardFilename conserva solo [A-Za-z0-9._-] del product_id (máximo 64) y reemplaza el resto
// por '_', así el id no puede cerrar las comillas ni partir el header.
func stockCardFilename(productID string) string {
	var b strings.Builder
	for _, r := range productID {
		if b.Len() >= 64 {
			break
		}
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return "stock-card-" + b.String() + ".pdf"
}
