package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/disfruleg/disfruleg-api/internal/domain/entity"
	"github.com/disfruleg/disfruleg-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Auth      AuthService
	Elevation ElevationVerifier
	Folios    FolioService
	Orders    SavedOrders
	Committer OrderCommitter
	Debts     DebtLedger
	Catalog   Catalog
	Prices    PriceLookup
	Reports   Reports
	JWTSecret string
	Log       *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.Auth, log.Component("http.auth"))
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	protected.Post("/auth/elevate", authHandler.Elevate)
	protected.Post("/users", RequireRole(entity.RoleAdmin), authHandler.CreateUser)

	// Folios y órdenes guardadas
	orderHandler := NewOrderHandler(deps.Folios, deps.Orders, deps.Committer, deps.Elevation, log.Component("http.orders"))
	protected.Post("/folios/next", orderHandler.NextFolio)
	orders := protected.Group("/orders")
	orders.Post("/", orderHandler.ReserveNext)
	orders.Get("/", orderHandler.List)
	orders.Get("/history", orderHandler.History)
	orders.Post("/:folio", orderHandler.Reserve)
	orders.Get("/:folio", orderHandler.Get)
	orders.Put("/:folio", orderHandler.Update)
	orders.Delete("/:folio", orderHandler.Delete)
	orders.Post("/:folio/items", orderHandler.AddItem)
	orders.Post("/:folio/commit", orderHandler.Commit)
	orders.Post("/:folio/duplicate", orderHandler.Duplicate)

	// Deudas y abonos
	debtHandler := NewDebtHandler(deps.Debts, log.Component("http.debts"))
	debts := protected.Group("/debts")
	debts.Get("/clients", debtHandler.ClientsWithDebt)
	debts.Get("/stats", debtHandler.Stats)
	debts.Get("/history", debtHandler.History)
	debts.Get("/:id", debtHandler.Get)
	debts.Post("/:id/payments", debtHandler.RecordPayment)

	// Catálogo
	catalogHandler := NewCatalogHandler(deps.Catalog, deps.Prices, deps.Elevation, log.Component("http.catalog"))
	products := protected.Group("/products")
	products.Get("/", catalogHandler.ListProducts)
	products.Post("/", catalogHandler.CreateProduct)
	products.Get("/:id", catalogHandler.GetProduct)
	products.Put("/:id", catalogHandler.UpdateProduct)
	products.Put("/:id/prices", catalogHandler.SetPrice)
	protected.Get("/prices", catalogHandler.Quote)

	// Clientes, estado de cuenta y recibos
	reportHandler := NewReportHandler(deps.Reports, log.Component("http.reports"))
	clients := protected.Group("/clients")
	clients.Get("/", catalogHandler.ListClients)
	clients.Get("/:id", catalogHandler.GetClient)
	clients.Get("/:id/prices", catalogHandler.ClientPrices)
	clients.Get("/:id/debts", debtHandler.ClientDebts)
	clients.Post("/:id/payments", debtHandler.PayClient)
	clients.Get("/:id/statement.xlsx", reportHandler.Statement)
	protected.Get("/invoices/:id/receipt.pdf", reportHandler.Receipt)
}
