package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/httprate"
	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/swaggo/swag"
	"github.com/unrolled/secure"
	"golang.org/x/crypto/bcrypt"

	_ "github.com/jhoicas/Cotizaciones-api/docs"
	"github.com/jhoicas/Cotizaciones-api/internal/application/audit"
	"github.com/jhoicas/Cotizaciones-api/internal/application/auth"
	"github.com/jhoicas/Cotizaciones-api/internal/application/inventory"
	"github.com/jhoicas/Cotizaciones-api/internal/application/quote"
	"github.com/jhoicas/Cotizaciones-api/internal/application/recycle"
	"github.com/jhoicas/Cotizaciones-api/internal/application/usecase"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/infrastructure/cache"
	"github.com/jhoicas/Cotizaciones-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/Cotizaciones-api/internal/infrastructure/pdf"
	httpRouter "github.com/jhoicas/Cotizaciones-api/internal/interfaces/http"
	"github.com/jhoicas/Cotizaciones-api/pkg/config"
	"github.com/jhoicas/Cotizaciones-api/pkg/logger"
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
		Str("storage", cfg.Storage.Driver).
		Bool("strict_transitions", cfg.Quotes.StrictTransitions).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Warn().Msg("JWT_SECRET vacío: se usa un secret de desarrollo")
		cfg.JWT.Secret = "dev-secret-no-usar-en-produccion"
	}

	ctx := context.Background()
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer store.close()

	if cfg.Seed.Password != "" {
		n, err := usecase.SeedDefaultUsers(ctx, store.users, cfg.Seed.Password, bcrypt.DefaultCost,
			usecase.SeedAccount{Username: cfg.Seed.AdminUsername, Role: entity.RoleAdmin},
			usecase.SeedAccount{Username: cfg.Seed.TecnicoUsername, Role: entity.RoleTecnico},
		)
		if err != nil {
			log.Fatal().Err(err).Msg("sembrar usuarios iniciales")
		}
		if n > 0 {
			log.Info().Int("usuarios", n).Msg("usuarios iniciales creados")
		}
	}

	// Idempotencia de POST /api/quotes solo si hay Redis configurado
	var idem httpRouter.IdempotencyStore
	if cfg.Redis.Enabled() {
		rdb, err := cache.New(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		idem = cache.NewIdempotencyStore(rdb, "quotes", time.Duration(cfg.Redis.IdempotencyTTL)*time.Minute)
	}

	m := metrics.New()
	sink := audit.NewRecorder(store.audit, log.Component("audit"))
	policy := recycle.DefaultPolicy()
	recycleUC := recycle.NewUseCase(store.archiveTx, store.bin, sink, policy)

	engine := quote.NewEngine(store.quoteTx, store.quotes, sink, quote.Options{
		StrictTransitions: cfg.Quotes.StrictTransitions,
		Policy:            policy,
		PDF:               infrapdf.NewMarotoPDFGenerator(cfg.App.Name),
		Observer:          m,
		Logger:            log,
	})
	authUC := auth.NewAuthUseCase(store.users, auth.JWTConfig{
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
	app.Use(adaptor.HTTPMiddleware(secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		IsDevelopment:      !cfg.App.IsProduction(),
	}).Handler))
	app.Use(m.Middleware())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.HTTP.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.SwaggerFile,
			Path:     "docs",
			Title:    "Cotizaciones API",
		}))
	} else {
		log.Warn().Str("file", cfg.HTTP.SwaggerFile).Msg("swagger deshabilitado: archivo no encontrado")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	app.Get("/swagger.json", func(c *fiber.Ctx) error {
		doc, err := swag.ReadDoc()
		if err != nil {
			return fiber.ErrNotFound
		}
		c.Type("json")
		return c.SendString(doc)
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		QuoteEngine: engine,
		InventoryUC: inventory.NewUseCase(store.inventory, recycleUC, sink),
		UserUC:      usecase.NewUserUseCase(store.users, recycleUC, sink),
		AuditUC:     audit.NewUseCase(store.audit),
		RecycleUC:   recycleUC,
		Idempotency: idem,
		LoginLimit:  adaptor.HTTPMiddleware(httprate.LimitByIP(cfg.Security.LoginRateLimit, time.Minute)),
		JWTSecret:   cfg.JWT.Secret,
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
