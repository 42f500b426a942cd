package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/fieldops/stock-ledger-api/internal/application/auth"
	"github.com/fieldops/stock-ledger-api/internal/application/ledger"
	"github.com/fieldops/stock-ledger-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	RegistryUC *ledger.RegistryUseCase
	TransferUC *ledger.TransferUseCase
	SeedUC     *ledger.SeedUseCase
	QueryUC    *ledger.QueryUseCase
	AuditUC    *ledger.AuditUseCase
	PDFGen     ledger.AuditPDFGenerator
	AuthUC     *auth.AuthUseCase
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Locations (protegido; dedup solo admin)
	locations := protected.Group("/locations")
	locationHandler := NewLocationHandler(deps.RegistryUC)
	locations.Put("/ensure", locationHandler.Ensure)
	locations.Get("/", locationHandler.List)
	locations.Post("/dedup", RequireRole(entity.RoleAdmin), locationHandler.Dedup)
	locations.Post("/:id/deactivate", RequireRole(entity.RoleAdmin), locationHandler.Deactivate)

	// Ledger (protegido)
	ledgerGroup := protected.Group("/ledger")
	ledgerHandler := NewLedgerHandler(deps.TransferUC, deps.SeedUC, deps.QueryUC)
	ledgerGroup.Post("/transfers", ledgerHandler.Transfer)
	ledgerGroup.Post("/seed", RequireRole(entity.RoleAdmin), ledgerHandler.Seed)
	ledgerGroup.Get("/balances/:itemID/:locationID", ledgerHandler.GetBalance)
	ledgerGroup.Get("/movements", ledgerHandler.ListMovements)

	// Auditoría (protegido, solo admin)
	auditGroup := protected.Group("/audit", RequireRole(entity.RoleAdmin))
	auditHandler := NewAuditHandler(deps.AuditUC, deps.PDFGen)
	auditGroup.Get("/", auditHandler.Run)
	auditGroup.Get("/pdf", auditHandler.RunPDF)
}
