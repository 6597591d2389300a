package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Cotizaciones-api/internal/application/audit"
	"github.com/jhoicas/Cotizaciones-api/internal/application/auth"
	"github.com/jhoicas/Cotizaciones-api/internal/application/inventory"
	"github.com/jhoicas/Cotizaciones-api/internal/application/quote"
	"github.com/jhoicas/Cotizaciones-api/internal/application/recycle"
	"github.com/jhoicas/Cotizaciones-api/internal/application/usecase"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	QuoteEngine *quote.Engine
	InventoryUC *inventory.UseCase
	UserUC      *usecase.UserUseCase
	AuditUC     *audit.UseCase
	RecycleUC   *recycle.UseCase
	Idempotency IdempotencyStore // opcional
	LoginLimit  fiber.Handler    // opcional: limitador de intentos de login
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	if deps.LoginLimit != nil {
		api.Post("/auth/login", deps.LoginLimit, authHandler.Login)
	} else {
		api.Post("/auth/login", authHandler.Login)
	}

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	adminOnly := RequireRole(entity.RoleAdmin)

	// Inventario: lectura para cualquier rol, escritura solo admin
	inventoryHandler := NewInventoryHandler(deps.InventoryUC)
	protected.Get("/inventory", RequireRole(entity.RoleAdmin, entity.RoleTecnico), inventoryHandler.List)
	protected.Post("/inventory", adminOnly, inventoryHandler.Create)
	protected.Put("/inventory/:id", adminOnly, inventoryHandler.Update)
	protected.Delete("/inventory/:id", adminOnly, inventoryHandler.Delete)

	// Cotizaciones (admin)
	quotes := protected.Group("/quotes", adminOnly)
	quoteHandler := NewQuoteHandler(deps.QuoteEngine, deps.Idempotency)
	quotes.Post("/", quoteHandler.Create)
	quotes.Get("/", quoteHandler.List)
	quotes.Get("/:id", quoteHandler.Get)
	quotes.Get("/:id/pdf", quoteHandler.PDF)
	quotes.Put("/:id/approve", quoteHandler.Approve)
	quotes.Put("/:id/revert", quoteHandler.Revert)
	quotes.Delete("/:id", quoteHandler.Delete)

	// Usuarios (admin)
	users := protected.Group("/users", adminOnly)
	userHandler := NewUserHandler(deps.UserUC)
	users.Get("/", userHandler.List)
	users.Post("/", userHandler.Create)
	users.Put("/:id", userHandler.Update)
	users.Delete("/:id", userHandler.Delete)

	// Auditoría y papelera (admin)
	adminHandler := NewAdminHandler(deps.AuditUC, deps.RecycleUC)
	protected.Get("/audit-logs", adminOnly, adminHandler.AuditLogs)
	protected.Get("/recycle-bin", adminOnly, adminHandler.RecycleBin)
	protected.Post("/recycle-bin/restore/:id", adminOnly, adminHandler.Restore)
}
