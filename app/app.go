// File: app/app.go
package app

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"storefront-api/common"
	"storefront-api/config"
	"storefront-api/db"
	"storefront-api/handler"
	"storefront-api/logger"
	"storefront-api/repository"
	"storefront-api/router"
	"storefront-api/service"
	"syscall"
	"time"
)

// App bundles the wired layers so Run and the integration tests share one
// construction path.
type App struct {
	Router  http.Handler
	Auth    *service.AuthService
	Cleaner *service.TokenCleaner
}

// Build wires repositories, services and handlers on top of an open
// database and cache. It fails only on configuration errors.
func Build(cfg *config.Config, database *sql.DB, cache service.ICacheClient) (*App, error) {
	tokenCfg, err := cfg.TokenConfig()
	if err != nil {
		return nil, err
	}
	hasher, err := service.NewPasswordHasher(cfg.Password.Cost)
	if err != nil {
		return nil, err
	}

	tokenRepo := repository.NewTokenRepository(database)
	var userRepo repository.IUserRepository = repository.NewUserRepository(database)
	if cache != nil {
		userRepo = service.NewCachedUserRepository(userRepo, cache, cfg.UserCacheTTL())
	}

	authService := service.NewAuthService(
		userRepo,
		hasher,
		service.NewTokenIssuer(tokenCfg),
		service.NewRefreshTokenStore(tokenRepo, cfg.RefreshTTL()),
	)
	userHandler := handler.NewUserHandler(authService)

	return &App{
		Router:  router.NewRouter(userHandler, handler.NewHealthHandler(database), tokenCfg),
		Auth:    authService,
		Cleaner: service.NewTokenCleaner(tokenRepo, cfg.CleanupInterval(), cfg.CleanupRetention()),
	}, nil
}

func Run() {
	logger.Init()
	logger.Log.Info("Logger initialized")

	if err := config.LoadConfig("."); err != nil {
		logger.Log.Fatalf("Invalid configuration: %v", err)
	}
	cfg := &config.AppConfig
	common.DebugMode = cfg.Server.Debug
	logger.Log.Info("Configuration loaded successfully")

	if err := db.Migrate(cfg.Database.MigrationsPath, cfg.DatabaseURL()); err != nil {
		logger.Log.Fatalf("Error running migrations: %v", err)
	}

	database, err := db.Connect(cfg)
	if err != nil {
		logger.Log.Fatalf("Error connecting to the database: %v", err)
	}
	defer database.Close()

	redisClient, err := db.ConnectRedis(cfg)
	if err != nil {
		logger.Log.Fatalf("Error connecting to redis: %v", err)
	}
	defer redisClient.Close()

	application, err := Build(cfg, database, redisClient)
	if err != nil {
		logger.Log.Fatalf("Error wiring application: %v", err)
	}

	cleanupCtx, stopCleanup := context.WithCancel(context.Background())
	defer stopCleanup()
	go application.Cleaner.Run(cleanupCtx)

	// --- Start the Server with Graceful Shutdown ---
	port := cfg.Server.Port
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           application.Router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	go func() {
		logger.Log.Infof("Server starting on port :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Warn("Shutdown signal received. Starting graceful shutdown...")
	stopCleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Log.Info("Server exited properly")
}
