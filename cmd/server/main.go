package main

// @title           Polls Service API
// @version         1.0
// @description     Time-boxed poll questions with one vote per user
// @host            localhost:8080
// @BasePath        /api/v1
// @schemes         http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"polls-service/internal/adapters/audit"
	"polls-service/internal/adapters/database"
	"polls-service/internal/adapters/kafka"
	"polls-service/internal/adapters/storage"
	"polls-service/internal/config"
	"polls-service/internal/server"
	"polls-service/internal/server/service"
	"polls-service/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	gin.SetMode(cfg.Server.Mode)
	logger.Setup(cfg.SlogLevel(), cfg.Server.Mode == gin.ReleaseMode)
	slog.Info("Starting polls server")

	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.UsesDefaultJWTSecret() {
		slog.Warn("POLLS_JWT_SECRET is not set, tokens are signed with the development secret")
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		slog.Error("Failed to migrate database", "error", err)
		os.Exit(1)
	}

	authLog := service.AuthEventLoggers{service.NewSlogAuthEventLogger(slog.Default())}
	if cfg.Mongo.URI != "" {
		auditLog, err := audit.NewMongoAuditLog(context.Background(), cfg.Mongo)
		if err != nil {
			slog.Warn("MongoDB unavailable, auth audit log disabled", "error", err)
		} else {
			defer auditLog.Close(context.Background())
			authLog = append(authLog, auditLog)
		}
	}

	deps := server.Dependencies{
		DB:      db,
		AuthLog: authLog,
		Clock:   time.Now,
	}

	redisClient, err := database.NewRedisClient(cfg.Redis)
	if err != nil {
		slog.Warn("Redis unavailable, rate limiting disabled", "error", err)
	} else if redisClient != nil {
		defer redisClient.Close()
		deps.Limiter = service.NewRedisRateLimiter(redisClient, time.Now)
	}

	if cfg.Kafka.Enabled {
		publisher, err := kafka.NewPublisher(cfg.Kafka)
		if err != nil {
			slog.Warn("Kafka unavailable, vote events disabled", "error", err)
		} else {
			defer publisher.Close()
			deps.Publisher = publisher
			slog.Info("Publishing vote events", "driver", cfg.Kafka.Driver, "topic", cfg.Kafka.Topic)
		}
	}

	if cfg.MinIO.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		images, err := storage.NewMinIOClient(ctx, cfg.MinIO)
		cancel()
		if err != nil {
			slog.Warn("MinIO unavailable, image upload disabled", "error", err)
		} else {
			deps.Images = images
		}
	}

	app, err := server.NewApp(cfg, deps)
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}

	appCtx, stopApp := context.WithCancel(context.Background())
	defer stopApp()
	app.Start(appCtx)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      app.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("Server starting", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stop the results hub before draining connections
	stopApp()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server stopped")
}
