package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"contractpay/internal/config"
	"contractpay/internal/db"
	"contractpay/internal/mq"
	"contractpay/internal/mqhandler"
	redisclient "contractpay/internal/redis"
	"contractpay/internal/repository"
	"contractpay/internal/service"
	"contractpay/internal/util"
	"contractpay/pkg/logger"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl := logger.NewLogger()
	defer zl.Sync()

	zl.Info("Starting worker service...")

	// Init Redis
	rdb := redisclient.NewClient(cfg.Redis)
	defer rdb.Close()

	deduper := util.NewDeduper(rdb, time.Hour)

	// Init DB
	dbConn, err := db.NewConnection(cfg.DB, zl)
	if err != nil {
		zl.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	zl.Info("Database connection established")

	// Init repositories
	contractRepo := repository.NewContractRepository(dbConn)
	milestoneRepo := repository.NewMilestoneRepository(dbConn)
	notiLogRepo := repository.NewNotificationLogRepository(dbConn)

	// Event router: one queue bound to every domain event, fanned out by type
	notificationService := service.NewNotificationService(notiLogRepo, contractRepo, zl)
	router := mq.NewRouter(zl)
	router.SetDeduper(deduper)
	mqhandler.RegisterNotificationHandlers(router, notificationService)

	consumer, err := mq.NewConsumer(cfg.MQ.URL, "notifications.q", "#", zl)
	if err != nil {
		zl.Fatal("failed to init consumer", zap.Error(err))
	}
	consumer.SetHandler(router.Dispatch)
	go func() {
		zl.Info("Starting notifications consumer")
		if err := consumer.StartConsuming(); err != nil {
			zl.Fatal("notifications consumer failed", zap.Error(err))
		}
	}()
	defer consumer.Close()

	// Init RabbitMQ producer for events the worker itself raises
	producer, err := mq.NewProducer(cfg.MQ.URL)
	if err != nil {
		zl.Fatal("failed to init producer", zap.Error(err))
	}
	defer producer.Close()

	// Overdue milestone sweep
	orchestrator := service.NewOrchestrator(milestoneRepo, producer, zl)
	go orchestrator.Run(context.Background(), time.Hour)

	zl.Info("Worker is ready to process messages")

	// Keep worker running
	select {}
}
