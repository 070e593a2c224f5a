package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/storefront-inventory/internal/application/auth"
	"github.com/jhoicas/storefront-inventory/internal/application/inventory"
	"github.com/jhoicas/storefront-inventory/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	LedgerUC    *inventory.LedgerUseCase
	StockCardUC *inventory.StockCardUseCase
	AuthUC      *auth.AuthUseCase
	JWTSecret   string
	Logger      zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", RequestLogger(deps.Logger))

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC, deps.Logger)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	authn := AuthMiddleware(deps.JWTSecret)
	admin := RequireRole(entity.RoleAdmin)
	anyRole := RequireRole(entity.RoleAdmin, entity.RoleCustomer)

	inv := api.Group("/inventory")
	h := NewInventoryHandler(deps.LedgerUC, deps.StockCardUC, deps.Logger)

	// Rutas estáticas antes que /:productId
	inv.Get("/", authn, admin, h.ListInventory)
	inv.Post("/", authn, admin, h.Onboard)
	inv.Get("/low-stock", authn, admin, h.ListLowStock)
	inv.Post("/checkout", authn, anyRole, h.Checkout)

	// Disponibilidad (público, la consulta el storefront)
	inv.Get("/:productId/availability", h.CheckAvailability)

	inv.Get("/:productId", authn, anyRole, h.GetStock)
	inv.Get("/:productId/transactions", authn, admin, h.ListTransactions)
	inv.Post("/:productId/mutations", authn, admin, h.ApplyMutation)
	inv.Get("/:productId/reconcile", authn, admin, h.Reconcile)
	inv.Get("/:productId/stock-card.pdf", authn, admin, h.StockCard)
}
