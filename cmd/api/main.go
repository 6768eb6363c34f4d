package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/stock-tracker/internal/application/inventory"
	"github.com/jhoicas/stock-tracker/internal/application/report"
	"github.com/jhoicas/stock-tracker/internal/application/usecase"
	infracache "github.com/jhoicas/stock-tracker/internal/infrastructure/cache"
	infrakafka "github.com/jhoicas/stock-tracker/internal/infrastructure/kafka"
	inframetrics "github.com/jhoicas/stock-tracker/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/stock-tracker/internal/infrastructure/pdf"
	"github.com/jhoicas/stock-tracker/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/stock-tracker/internal/interfaces/http"
	"github.com/jhoicas/stock-tracker/pkg/config"
	"github.com/jhoicas/stock-tracker/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

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

	productRepo := postgres.NewProductRepository(pool)
	transactionRepo := postgres.NewTransactionRepository(pool)
	levelRepo := postgres.NewInventoryLevelRepository(pool)
	txRunner := postgres.NewTxRunner(pool, cfg.DB.LockTimeout)

	// Caché de la vista de inventario: opcional.
	var invCache inventory.InventoryCache
	if cfg.Redis.Enabled() {
		redisCache, err := infracache.NewRedisInventoryCache(ctx, infracache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.TTL,
		})
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no disponible, se sigue sin caché")
		} else {
			defer redisCache.Close()
			invCache = redisCache
		}
	}

	// Alertas de umbral a Kafka: sin brokers solo quedan en el log.
	var notifier inventory.ThresholdNotifier
	if cfg.Kafka.Enabled() {
		kn, err := infrakafka.NewThresholdNotifier(cfg.Kafka.Brokers, cfg.Kafka.ThresholdTopic, log.Component("kafka"))
		if err != nil {
			log.Warn().Err(err).Strs("brokers", cfg.Kafka.Brokers).Msg("kafka no disponible, alertas solo en log")
		} else {
			defer kn.Close()
			notifier = kn
		}
	}

	invMetrics := inframetrics.NewInventoryMetrics(prometheus.DefaultRegisterer)

	applyUC := inventory.NewApplyTransactionUseCase(txRunner, notifier, invCache, invMetrics, log.Component("inventory"))
	queryUC := inventory.NewInventoryQueryUseCase(levelRepo, productRepo, invCache, log.Component("inventory"))
	productUC := usecase.NewProductUseCase(productRepo, invCache, log.Component("products"))
	transactionUC := usecase.NewTransactionUseCase(transactionRepo)
	reportUC := report.NewStockReportUseCase(queryUC, infrapdf.NewMarotoReportGenerator(), cfg.App.Name)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())

	// Swagger UI en local: http://localhost:<port>/docs (generado con swag init).
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Stock Tracker API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:     productUC,
		TransactionUC: transactionUC,
		ApplyUC:       applyUC,
		QueryUC:       queryUC,
		Replenishment: inventory.NewReplenishmentUseCase(levelRepo),
		ReportUC:      reportUC,
		JWTSecret:     cfg.JWT.Secret,
		JWTIssuer:     cfg.JWT.Issuer,
	})
	if cfg.JWT.Secret == "" {
		log.Warn().Msg("JWT_SECRET vacío: API sin autenticación")
	}

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
	applyUC.Wait()

	log.Info().Msg("aplicación detenida")
}
