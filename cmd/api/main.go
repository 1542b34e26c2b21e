package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_catalog/internal/cache"
	"github.com/GTDGit/gtd_catalog/internal/config"
	"github.com/GTDGit/gtd_catalog/internal/database"
	"github.com/GTDGit/gtd_catalog/internal/handler"
	"github.com/GTDGit/gtd_catalog/internal/middleware"
	"github.com/GTDGit/gtd_catalog/internal/repository"
	"github.com/GTDGit/gtd_catalog/internal/service"
	"github.com/GTDGit/gtd_catalog/internal/sse"
	"github.com/GTDGit/gtd_catalog/internal/utils"
	"github.com/GTDGit/gtd_catalog/internal/worker"
)

// main is the entrypoint for the GTD catalog variant service.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger and JWT signing
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting gtd catalog")
	utils.InitJWT(cfg.JWTSecret, cfg.JWTTTL)

	// 3. Connect database
	connectCtx, connectCancel := context.WithTimeout(context.Background(), time.Minute)
	db, err := database.Connect(connectCtx, &cfg.DB)
	connectCancel()
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := runMigrations(db.DB); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect to Redis
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Error().Err(err).Msg("redis connection failed")
		fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected successfully")

	// 3c. Initialize snapshot cache
	snapshotCache := cache.NewSnapshotCache(redisClient, cfg.Cache.SnapshotTTL)

	// 4. Initialize repositories
	catalogRepo := repository.NewCatalogRepository(db)
	adminRepo := repository.NewAdminUserRepository(db)

	// 5. Initialize SSE hub for catalog integrity events
	hub := sse.NewHub()
	notifier := sse.NewHubNotifier(hub)

	// 6. Initialize services
	catalogSvc := service.NewCatalogService(catalogRepo, snapshotCache, notifier)
	variantSvc := service.NewVariantService(catalogSvc, cfg.Cache.MemoSize, cfg.Cache.MemoTTL, notifier)
	adminAuthSvc := service.NewAdminAuthService(adminRepo)

	// 7. Initialize handlers
	loginLimiter := middleware.NewInvalidAuthRateLimiter(5, time.Minute)
	defer loginLimiter.Close()

	handlers := &Handlers{
		Health: handler.NewHealthHandler(map[string]handler.Pinger{
			"database": handler.PingFunc(db.PingContext),
			"redis":    redisClient,
		}),
		Variant:           handler.NewVariantHandler(variantSvc),
		CatalogManagement: handler.NewCatalogManagementHandler(catalogSvc),
		Auth:              handler.NewAuthHandler(adminAuthSvc, loginLimiter),
		SSE:               handler.NewSSEHandler(hub, 30*time.Second),
	}

	// 8. Initialize middleware
	jwtMw := middleware.NewJWTMiddleware()

	// 9. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.CORSAllowedHosts))
	router.Use(middleware.LoggingMiddleware())
	setupRoutes(router, handlers, jwtMw)

	// 10. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 11. Start workers
	go worker.NewCatalogAuditWorker(catalogSvc, notifier, cfg.Worker.AuditInterval).Start(ctx)

	// 12. Start HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 13. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 14. Cancel context to stop workers
	cancel()

	// 15. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health            *handler.HealthHandler
	Variant           *handler.VariantHandler
	CatalogManagement *handler.CatalogManagementHandler
	Auth              *handler.AuthHandler
	SSE               *handler.SSEHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, jwtMiddleware *middleware.JWTMiddleware) {
	router.GET("/v1/health", handlers.Health.GetHealth)

	// Storefront variant picker (public)
	products := router.Group("/v1/products/:id/variants")
	{
		products.GET("", handlers.Variant.GetVariants)
		products.POST("/resolve", handlers.Variant.Resolve)
		products.POST("/estimate", handlers.Variant.Estimate)
		products.POST("/options", handlers.Variant.Options)
	}

	// Admin routes
	admin := router.Group("/v1/admin")
	admin.POST("/auth/login", handlers.Auth.Login)
	// EventSource cannot send headers; the stream checks ?token= itself.
	admin.GET("/sse", handlers.SSE.Stream)
	admin.Use(jwtMiddleware.Handle())
	{
		admin.POST("/products/:id/attributes", handlers.CatalogManagement.CreateAttribute)
		admin.POST("/attributes/:id/values", handlers.CatalogManagement.AddAttributeValue)
		admin.POST("/products/:id/combinations", handlers.CatalogManagement.CreateCombination)
		admin.PUT("/products/:id/combinations/:combinationId/default", handlers.CatalogManagement.SetDefaultCombination)
		admin.GET("/products/:id/audit", handlers.CatalogManagement.Audit)
	}
}

// runMigrations runs database migrations using golang-migrate.
func runMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
