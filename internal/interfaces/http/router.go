package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/dispatch-api/internal/application/dispatch"
	"github.com/jhoicas/dispatch-api/internal/application/inventory"
	"github.com/jhoicas/dispatch-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Reconciliation *dispatch.ReconciliationUseCase
	Orders         *dispatch.OrderUseCase
	Stock          *inventory.StockUseCase
	Idempotency    IdempotencyStore // nil = sin idempotencia
	JWTSecret      string
	Logger         *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	idem := Idempotency(deps.Idempotency, log)
	warehouseRoles := RequireRole(RoleAdmin, RoleBodeguero)

	// Instalación / devoluciones
	installationHandler := NewInstallationHandler(deps.Reconciliation, log)
	protected.Post("/installation/action",
		RequireRole(RoleAdmin, RoleBodeguero, RoleInstalador), idem, installationHandler.Action)

	// Órdenes y despacho
	orders := protected.Group("/orders")
	orderHandler := NewOrderHandler(deps.Orders, log)
	orders.Post("/", warehouseRoles, idem, orderHandler.Create)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Post("/:id/dispatch", warehouseRoles, idem, orderHandler.AddDispatchItem)
	orders.Post("/:id/dispatch/complete", warehouseRoles, idem, orderHandler.CompleteDispatch)
	orders.Get("/:id/returns", orderHandler.ListReturns)

	// Stock
	stock := protected.Group("/stock")
	stockHandler := NewStockHandler(deps.Stock, log)
	stock.Post("/inward", warehouseRoles, idem, stockHandler.RegisterInward)
	stock.Get("/summary", stockHandler.ListSummaries)
	stock.Get("/summary/export", stockHandler.Export)
	stock.Get("/summary/:code", stockHandler.GetSummary)
	stock.Get("/ledger/:code", stockHandler.ListLedger)
	stock.Get("/reconciliation", stockHandler.Reconciliation)
}
