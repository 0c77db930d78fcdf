package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/JaligamRishitha/renewmart-sub003/internal/api"
	"github.com/JaligamRishitha/renewmart-sub003/internal/config"
	"github.com/JaligamRishitha/renewmart-sub003/internal/db"
	"github.com/JaligamRishitha/renewmart-sub003/internal/notify"
	"github.com/JaligamRishitha/renewmart-sub003/internal/services"
	"github.com/JaligamRishitha/renewmart-sub003/pkg/logger"
	"github.com/JaligamRishitha/renewmart-sub003/pkg/metrics"
)

func main() {
	cfg := config.Load()

	zapLogger, err := logger.NewLogger(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()
	zap.ReplaceGlobals(zapLogger)

	config.LogConfig(cfg, zapLogger)

	database, err := db.Initialize(cfg)
	if err != nil {
		zapLogger.Fatal("Failed to initialize database", zap.Error(err))
	}

	metricsCollector := metrics.NewMetricsCollector()

	var publisher notify.Publisher = notify.NopPublisher{}
	if cfg.Notify.Enabled {
		redisPublisher, err := notify.NewRedisPublisher(cfg.Notify.RedisAddr, cfg.Notify.RedisPassword, zapLogger)
		if err != nil {
			zapLogger.Fatal("Failed to connect notification backend", zap.Error(err))
		}
		publisher = redisPublisher
	}
	defer publisher.Close()

	auditService := services.NewAuditService(database, zapLogger, publisher, cfg.Notify.Channel)
	versionService := services.NewVersionService(database, auditService, zapLogger, metricsCollector)
	reviewService := services.NewReviewService(database, auditService, zapLogger, metricsCollector)
	assignmentService := services.NewAssignmentService(database, auditService, zapLogger, metricsCollector)

	router := api.NewRouter(zapLogger, metricsCollector,
		versionService, reviewService, assignmentService, auditService,
		cfg.Server.CORSOrigins)
	router.SetupRoutes()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Server.Port
	}
	go func() {
		if err := router.Run(":" + port); err != nil {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()
	zapLogger.Info("Server started", zap.String("port", port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	sqlDB, err := database.DB()
	if err == nil {
		sqlDB.Close()
	}
	zapLogger.Info("Server gracefully stopped")
}
