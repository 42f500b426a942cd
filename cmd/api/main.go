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
	"github.com/fieldops/stock-ledger-api/internal/application/auth"
	appledger "github.com/fieldops/stock-ledger-api/internal/application/ledger"
	infrapdf "github.com/fieldops/stock-ledger-api/internal/infrastructure/pdf"
	"github.com/fieldops/stock-ledger-api/internal/infrastructure/postgres"
	httpRouter "github.com/fieldops/stock-ledger-api/internal/interfaces/http"
	"github.com/fieldops/stock-ledger-api/pkg/config"
	"github.com/fieldops/stock-ledger-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	}).Component("api")
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

	locationRepo := postgres.NewLocationRepository(pool)
	balanceRepo := postgres.NewBalanceRepository(pool)
	movementRepo := postgres.NewMovementRepository(pool)
	partRepo := postgres.NewPartRepository(pool)
	catalogRepo := postgres.NewCatalogRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	guard := appledger.NewGuardrailValidator(appledger.PolicyFlags{
		AllowBackgroundWrites: cfg.Ledger.AllowBackgroundWrites,
		MaxUnconfirmedQty:     cfg.Ledger.MaxUnconfirmedQty,
	})

	registryUC := appledger.NewRegistryUseCase(locationRepo)
	transferUC := appledger.NewTransferUseCase(txRunner, locationRepo, catalogRepo, movementRepo, guard)
	seedUC := appledger.NewSeedUseCase(locationRepo, movementRepo, transferUC)
	queryUC := appledger.NewQueryUseCase(balanceRepo, movementRepo, locationRepo)
	auditUC := appledger.NewAuditUseCase(balanceRepo, movementRepo, locationRepo, partRepo, catalogRepo)

	// PDF: representación imprimible del informe de auditoría
	pdfGenerator := infrapdf.NewMarotoReportGenerator()

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Stock Ledger API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		RegistryUC: registryUC,
		TransferUC: transferUC,
		SeedUC:     seedUC,
		QueryUC:    queryUC,
		AuditUC:    auditUC,
		PDFGen:     pdfGenerator,
		AuthUC:     authUC,
		JWTSecret:  cfg.JWT.Secret,
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
