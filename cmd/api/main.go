package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"soundapi/docs"
	"soundapi/internal/auth"
	"soundapi/internal/config"
	"soundapi/internal/database"
	"soundapi/internal/database/migration"
	handlers "soundapi/internal/http/handler"
	"soundapi/internal/http/middleware"
	"soundapi/internal/otel"
	"soundapi/internal/repository/postgres"
	"soundapi/internal/service"
	"soundapi/internal/storage"
)

// @title Sound API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	ctx := context.Background()
	loc := time.UTC

	// Tracing: OTLP exporter, degrades to noop when the collector is unreachable
	shutdownTracing, err := otel.Init(ctx, loc)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(shutdownCtx)
	}()

	// PostgreSQL connection (pooled, instrumented via otelsql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, loc, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// S3-compatible blob store for audio payloads (MinIO)
	blobStore, err := storage.NewMinIO(cfg.MinIO, cfg.Upload)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	tokens, err := auth.NewTokenManager(cfg.Auth)
	if err != nil {
		log.Fatalf("failed to initialize token manager: %v", err)
	}

	// Repositories and services
	soundRepo := postgres.NewSoundPostgres(db)
	userRepo := postgres.NewUserPostgres(db)
	commentRepo := postgres.NewCommentPostgres(db)

	svcs := handlers.Services{
		Auth:    service.NewAuthService(userRepo, tokens),
		User:    service.NewUserService(userRepo, soundRepo, blobStore),
		Sound:   service.NewSoundService(blobStore, soundRepo, cfg.Upload.DefaultContentType),
		Comment: service.NewCommentService(commentRepo, soundRepo),
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		// Let the transport reject oversized uploads before they reach MinIO.
		// Some slack on top of the cap so the storage gate returns 413 with
		// its own message for payloads near the limit.
		BodyLimit:   int(cfg.Upload.MaxSizeBytes) + 1<<20,
		IdleTimeout: cfg.Upload.IdleTimeout,
	})

	// Global middleware: request id, JSON request logs, traces, metrics
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())

	promMW, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("failed to register prometheus metrics: %v", err)
	}
	app.Use(promMW.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	handlers.RegisterRoutes(app, db, svcs, tokens)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
