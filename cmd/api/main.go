package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/disfruleg/disfruleg-api/internal/application/auth"
	"github.com/disfruleg/disfruleg-api/internal/application/catalog"
	"github.com/disfruleg/disfruleg-api/internal/application/debts"
	"github.com/disfruleg/disfruleg-api/internal/application/orders"
	"github.com/disfruleg/disfruleg-api/internal/application/pricing"
	"github.com/disfruleg/disfruleg-api/internal/application/reports"
	"github.com/disfruleg/disfruleg-api/internal/infrastructure/cache"
	"github.com/disfruleg/disfruleg-api/internal/infrastructure/excel"
	infrapdf "github.com/disfruleg/disfruleg-api/internal/infrastructure/pdf"
	"github.com/disfruleg/disfruleg-api/internal/infrastructure/postgres"
	httpRouter "github.com/disfruleg/disfruleg-api/internal/interfaces/http"
	"github.com/disfruleg/disfruleg-api/pkg/config"
	"github.com/disfruleg/disfruleg-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Redis opcional: caché de precios y registro de elevaciones usadas. Sin Redis los precios
	// se calculan en cada consulta y las elevaciones se registran en memoria.
	var priceCache pricing.Cache
	redisClient, err := cache.NewClient(ctx, cfg.Redis)
	switch {
	case err != nil:
		log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no disponible, caché de precios desactivada")
	case redisClient != nil:
		defer redisClient.Close()
		priceCache = cache.NewCache(redisClient, cfg.Redis.PriceCacheTTL)
	}

	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	clientRepo := postgres.NewClientRepository(pool)
	pricingRepo := postgres.NewPricingRepository(pool)
	savedOrderRepo := postgres.NewSavedOrderRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	debtRepo := postgres.NewDebtRepository(pool)
	txRunner := postgres.NewTxRunner(pool, log.Component("postgres.tx"))

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:           cfg.JWT.Secret,
		ExpMinutes:       cfg.JWT.Expiration,
		ElevationMinutes: cfg.JWT.ElevationMinutes,
		Issuer:           cfg.JWT.Issuer,
	}, log.Component("auth"))
	if redisClient != nil {
		authUC.WithElevationStore(cache.NewElevationStore(redisClient))
	}

	resolver := pricing.NewResolver(pricingRepo, clientRepo, priceCache, log.Component("pricing"))
	folios := orders.NewFolioAllocator(txRunner, log.Component("folios"))
	savedOrders := orders.NewSavedOrderService(savedOrderRepo, productRepo, folios, resolver,
		log.Component("orders"), cfg.Business.HistoryDefaultLimit)
	committer := orders.NewInvoiceCommitter(txRunner, log.Component("commit"))
	ledger := debts.NewLedger(txRunner, debtRepo, log.Component("debts"))
	catalogSvc := catalog.NewService(productRepo, clientRepo, resolver, log.Component("catalog"))

	reportUC := reports.NewReportUseCase(
		invoiceRepo, clientRepo, ledger,
		infrapdf.NewMarotoReceiptGenerator(), excel.NewStatementExporter(),
		reports.Empresa{Nombre: cfg.Business.NombreEmpresa, Telefono: cfg.Business.TelefonoEmpresa},
		log.Component("reports"),
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "DISFRULEG API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Auth:      authUC,
		Elevation: authUC,
		Folios:    folios,
		Orders:    savedOrders,
		Committer: committer,
		Debts:     ledger,
		Catalog:   catalogSvc,
		Prices:    resolver,
		Reports:   reportUC,
		JWTSecret: cfg.JWT.Secret,
		Log:       log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
