package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"project_tracker/internal/cache"
	"project_tracker/internal/config"
	"project_tracker/internal/handler"
	"project_tracker/internal/logging"
	"project_tracker/internal/middleware"
	"project_tracker/internal/repository"
	"project_tracker/internal/service"
	"project_tracker/internal/storage"
	"project_tracker/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, relying on environment variables")
	}

	// --- Configuration ---
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	dbCfg, err := config.LoadDBConfig()
	if err != nil {
		logger.Error("failed to load DB config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database Connection ---
	dbPool, err := config.ConnectDB(ctx, dbCfg, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := config.AutoMigrate(ctx, dbPool, logger); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	// --- Image storage ---
	images, err := newImageStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to initialise image storage", "backend", cfg.StorageBackend, "error", err)
		os.Exit(1)
	}

	healthChecks := map[string]handler.HealthCheck{"db": dbPool.Ping}

	// --- Optional Redis ---
	var projectCache cache.Client
	var signinLimiter gin.HandlerFunc
	if cfg.RedisAddr != "" {
		redisClient, err := cache.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Error("failed to connect to redis", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()

		projectCache = redisClient
		signinLimiter = middleware.RateLimit(redisClient, "signin", cfg.SigninRateLimit, cfg.SigninRatePeriod)
		healthChecks["redis"] = redisClient.Ping
		logger.Info("redis enabled", "addr", cfg.RedisAddr)
	}

	jwtUtil := utils.NewJWTUtil(cfg.JWTSecret, cfg.JWTIssuer)

	userRepo := repository.NewUserRepository(dbPool)
	projectRepo := repository.NewProjectRepository(dbPool)

	authService := service.NewAuthService(userRepo, jwtUtil, cfg.InitialAdminEmail, logger)
	projectService := service.NewProjectService(projectRepo, images, service.ProjectServiceOptions{
		Cache:         projectCache,
		CacheTTL:      cfg.ProjectCacheTTL,
		MaxImageBytes: cfg.MaxImageBytes,
	}, logger)

	gin.SetMode(gin.ReleaseMode)
	router := handler.NewRouter(handler.RouterDeps{
		Auth:               authService,
		Projects:           projectService,
		Tokens:             jwtUtil,
		Logger:             logger,
		SigninLimiter:      signinLimiter,
		HealthChecks:       healthChecks,
		MaxMultipartMemory: cfg.MaxImageBytes + 1<<16,
		TrustedProxies:     cfg.TrustedProxies,
	})

	// --- Start Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.ServerPort, "issuer", jwtUtil.Issuer(), "storage", cfg.StorageBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen failed", "error", err)
			stop()
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exiting")
}

func newImageStore(ctx context.Context, cfg *config.Config) (storage.ImageStore, error) {
	if cfg.StorageBackend == config.StorageS3 {
		return storage.NewS3Store(ctx, storage.S3Options{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
		})
	}
	return storage.NewLocalStore(cfg.UploadsDir)
}
