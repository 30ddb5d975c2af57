package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/glenjamindle/solartrack-pro/config"
	"github.com/glenjamindle/solartrack-pro/internal/api"
	"github.com/glenjamindle/solartrack-pro/internal/repository"
	"github.com/glenjamindle/solartrack-pro/internal/service"
	"github.com/glenjamindle/solartrack-pro/pkg/db"
	"github.com/glenjamindle/solartrack-pro/pkg/logger"
	"github.com/glenjamindle/solartrack-pro/pkg/mq"
	"github.com/glenjamindle/solartrack-pro/pkg/outbox"
	redisclient "github.com/glenjamindle/solartrack-pro/pkg/redis"
)

func main() {
	// 1. Load config
	cfg := config.Load()

	zapLogger := logger.NewLogger()
	defer zapLogger.Sync()

	// 2. Init DB
	dbConn, err := db.NewConnection(cfg.DB, zapLogger)
	if err != nil {
		zapLogger.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	// 3. Init Redis
	rdb := redisclient.NewRedisClient(cfg.Redis)
	defer rdb.Close()

	// 4. Init RabbitMQ Publisher
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatalf("failed to init publisher: %v", err)
	}
	defer publisher.Close()

	// 5. Init Repositories
	userRepo := repository.NewUserRepository(dbConn)
	projectRepo := repository.NewProjectRepository(dbConn)
	entryRepo := repository.NewEntryRepository(dbConn)
	inspectionRepo := repository.NewInspectionRepository(dbConn)
	refusalRepo := repository.NewRefusalRepository(dbConn)
	outboxRepo := outbox.NewRepository(dbConn)

	// 6. Init Services
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret)
	entryService := service.NewEntryService(entryRepo, outboxRepo, zapLogger)
	forecastService := service.NewForecastService(
		projectRepo, entryRepo, rdb, zapLogger,
		time.Duration(cfg.Forecast.CacheTTLSeconds)*time.Second,
	)
	reportService := service.NewReportService(projectRepo, entryRepo, zapLogger)
	refusalService := service.NewRefusalService(refusalRepo, entryRepo, outboxRepo, zapLogger)
	replayService := outbox.NewReplayService(outboxRepo, publisher)

	// 7. Start outbox dispatcher (事务里写入的事件由它异步发布)
	dispatcher := outbox.NewDispatcher(outboxRepo, publisher, zapLogger)
	dispatcherCtx, cancelDispatcher := context.WithCancel(context.Background())
	defer cancelDispatcher()
	go dispatcher.Start(dispatcherCtx)

	// 8. Init Handlers
	authHandler := api.NewAuthHandler(authService)
	projectHandler := api.NewProjectHandler(projectRepo, forecastService, zapLogger)
	entryHandler := api.NewEntryHandler(entryService, entryRepo, zapLogger)
	forecastHandler := api.NewForecastHandler(forecastService, reportService, zapLogger)
	inspectionHandler := api.NewInspectionHandler(inspectionRepo, zapLogger)
	refusalHandler := api.NewRefusalHandler(refusalService, zapLogger)
	adminHandler := api.NewAdminHandler(outboxRepo, replayService, zapLogger)

	// 9. Router
	router := api.NewRouter(
		authHandler,
		projectHandler,
		entryHandler,
		forecastHandler,
		inspectionHandler,
		refusalHandler,
		adminHandler,
		cfg.JWT.Secret,
		zapLogger,
		dbConn,
	)

	// Start API server
	zapLogger.Info("Starting API server", zap.String("port", cfg.Server.Port))
	if err := router.Run(cfg.Server.Port); err != nil {
		zapLogger.Fatal("server start failed", zap.Error(err))
	}
}
