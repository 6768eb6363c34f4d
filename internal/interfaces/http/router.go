package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-tracker/internal/application/inventory"
	"github.com/jhoicas/stock-tracker/internal/application/report"
	"github.com/jhoicas/stock-tracker/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC     *usecase.ProductUseCase
	TransactionUC *usecase.TransactionUseCase
	ApplyUC       *inventory.ApplyTransactionUseCase
	QueryUC       *inventory.InventoryQueryUseCase
	Replenishment *inventory.ReplenishmentUseCase
	ReportUC      *report.StockReportUseCase
	// JWTSecret vacío deja la API abierta.
	JWTSecret string
	JWTIssuer string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	if deps.JWTSecret != "" {
		api.Use(AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))
	}

	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Patch("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)

	transactions := api.Group("/transactions")
	transactionHandler := NewTransactionHandler(deps.ApplyUC, deps.TransactionUC)
	transactions.Post("/", transactionHandler.Apply)
	transactions.Get("/", transactionHandler.List)
	transactions.Get("/:id", transactionHandler.GetByID)

	inv := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.QueryUC, deps.Replenishment, deps.ReportUC)
	inv.Get("/", inventoryHandler.List)
	inv.Get("/reconciliation", inventoryHandler.Reconcile)
	inv.Get("/replenishment", inventoryHandler.Replenishment)
	inv.Get("/report.pdf", inventoryHandler.ReportPDF)
	inv.Get("/check/:id", inventoryHandler.Check)
}
