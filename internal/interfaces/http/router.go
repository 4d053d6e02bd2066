package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/ntorres/acopio-api/internal/application/inventory"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Submit    *inventory.SubmitMovementUseCase
	Stock     *inventory.StockUseCase
	Reconcile *inventory.ReconcileUseCase
	Catalog   *inventory.CatalogUseCase
}

// Router registra las rutas de la API. Los handlers no contienen lógica de
// negocio: validan el transporte y delegan en los casos de uso.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	movementHandler := NewMovementHandler(deps.Submit, deps.Stock)
	movements := api.Group("/movements")
	movements.Post("/", movementHandler.Submit)
	movements.Get("/", movementHandler.List)

	stockHandler := NewStockHandler(deps.Stock)
	stock := api.Group("/stock")
	stock.Get("/", stockHandler.List)
	stock.Get("/alerts", stockHandler.Alerts)
	stock.Get("/:productId/:warehouseId", stockHandler.Get)

	catalogHandler := NewCatalogHandler(deps.Catalog)
	api.Get("/products", catalogHandler.Products)
	api.Get("/warehouses", catalogHandler.Warehouses)

	// Operaciones administrativas: rebuild, verificación de deriva,
	// eliminación de movimientos y totales con signo para auditoría.
	adminHandler := NewAdminHandler(deps.Reconcile, deps.Stock)
	admin := api.Group("/admin")
	admin.Post("/rebuild", adminHandler.Rebuild)
	admin.Get("/verify", adminHandler.Verify)
	admin.Delete("/movements/:id", adminHandler.RemoveMovement)
	admin.Get("/ledger-totals", adminHandler.LedgerTotals)
}
