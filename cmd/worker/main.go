package main

import (
	"time"

	"go.uber.org/zap"

	"github.com/glenjamindle/solartrack-pro/config"
	"github.com/glenjamindle/solartrack-pro/internal/event"
	"github.com/glenjamindle/solartrack-pro/internal/mqhandler"
	"github.com/glenjamindle/solartrack-pro/internal/repository"
	"github.com/glenjamindle/solartrack-pro/internal/service"
	"github.com/glenjamindle/solartrack-pro/pkg/db"
	"github.com/glenjamindle/solartrack-pro/pkg/logger"
	"github.com/glenjamindle/solartrack-pro/pkg/mq"
	redisclient "github.com/glenjamindle/solartrack-pro/pkg/redis"
	"github.com/glenjamindle/solartrack-pro/pkg/util"
)

func main() {
	// Load config
	cfg := config.Load()

	zapLogger := logger.NewLogger()
	defer zapLogger.Sync()

	zapLogger.Info("Starting worker service...")

	// Init Redis
	rdb := redisclient.NewRedisClient(cfg.Redis)
	defer rdb.Close()

	deduper := util.NewDeduper(rdb, time.Hour)
	retryCounter := util.NewRetryCounter(rdb, time.Hour)

	// Init DB
	dbConn, err := db.NewConnection(cfg.DB, zapLogger)
	if err != nil {
		zapLogger.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	zapLogger.Info("Database connection established")

	// Init RabbitMQ Publisher (死信投递用)
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		zapLogger.Fatal("failed to init publisher", zap.Error(err))
	}
	defer publisher.Close()

	// Init Repositories
	projectRepo := repository.NewProjectRepository(dbConn)
	entryRepo := repository.NewEntryRepository(dbConn)
	inspectionRepo := repository.NewInspectionRepository(dbConn)
	refusalRepo := repository.NewRefusalRepository(dbConn)

	forecastService := service.NewForecastService(
		projectRepo, entryRepo, rdb, zapLogger,
		time.Duration(cfg.Forecast.CacheTTLSeconds)*time.Second,
	)

	// Init Handlers
	entrySyncedHandler := mqhandler.NewEntrySyncedHandler(forecastService, deduper, zapLogger)
	refusalFlaggedHandler := mqhandler.NewRefusalFlaggedHandler(inspectionRepo, refusalRepo, retryCounter, zapLogger)

	// (1) Consumer for forecast cache invalidation
	zapLogger.Info("Initializing forecast consumer", zap.String("queue", "entry.synced.forecast.q"))
	consumerForecast, err := mq.NewConsumer(cfg.MQ.URL, "entry.synced.forecast.q", event.RoutingKeyEntrySynced, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to init forecast consumer", zap.Error(err))
	}
	if _, err := consumerForecast.WithDLQ(publisher); err != nil {
		zapLogger.Fatal("failed to enable DLQ on forecast consumer", zap.Error(err))
	}
	consumerForecast.SetHandler(entrySyncedHandler.Handle)
	go func() {
		zapLogger.Info("Starting forecast consumer")
		if err := consumerForecast.StartConsuming(); err != nil {
			zapLogger.Fatal("forecast consumer failed", zap.Error(err))
		}
	}()
	defer consumerForecast.Close()

	// (2) Consumer for remediation follow-up
	zapLogger.Info("Initializing remediation consumer", zap.String("queue", "refusal.flagged.remediation.q"))
	consumerRemediation, err := mq.NewConsumer(cfg.MQ.URL, "refusal.flagged.remediation.q", event.RoutingKeyRefusalFlagged, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to init remediation consumer", zap.Error(err))
	}
	if _, err := consumerRemediation.WithDLQ(publisher); err != nil {
		zapLogger.Fatal("failed to enable DLQ on remediation consumer", zap.Error(err))
	}
	consumerRemediation.SetHandler(refusalFlaggedHandler.Handle)
	go func() {
		zapLogger.Info("Starting remediation consumer")
		if err := consumerRemediation.StartConsuming(); err != nil {
			zapLogger.Fatal("remediation consumer failed", zap.Error(err))
		}
	}()
	defer consumerRemediation.Close()

	zapLogger.Info("All consumers started, worker is ready to process messages")

	// Keep worker running
	select {}
}
