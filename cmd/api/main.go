package main

import (
	"log"
	"time"

	"go.uber.org/zap"

	"contractpay/internal/cache"
	"contractpay/internal/config"
	"contractpay/internal/db"
	"contractpay/internal/httpserver"
	"contractpay/internal/mq"
	redisclient "contractpay/internal/redis"
	"contractpay/internal/repository"
	"contractpay/internal/service"
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

	// Init DB
	dbConn, err := db.NewConnection(cfg.DB, zl)
	if err != nil {
		zl.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	// Init Redis
	rdb := redisclient.NewClient(cfg.Redis)
	defer rdb.Close()

	// Init RabbitMQ producer
	producer, err := mq.NewProducer(cfg.MQ.URL)
	if err != nil {
		zl.Fatal("failed to init producer", zap.Error(err))
	}
	defer producer.Close()

	// Init repositories
	userRepo := repository.NewUserRepository(dbConn)
	contractRepo := repository.NewContractRepository(dbConn)
	milestoneRepo := repository.NewMilestoneRepository(dbConn)
	templateRepo := repository.NewTemplateRepository(dbConn)

	// Response cache shared by every API instance
	queryCache := cache.NewRedis(rdb, 5*time.Minute)

	// Init services
	authService := service.NewAuthService(userRepo, producer, cfg.JWT.Secret, zl)
	contractService := service.NewContractService(contractRepo, milestoneRepo, templateRepo, producer, queryCache, zl)
	templateService := service.NewTemplateService(templateRepo)

	// Init handlers
	authHandler := httpserver.NewAuthHandler(authService)
	contractHandler := httpserver.NewContractHandler(contractService)
	templateHandler := httpserver.NewTemplateHandler(templateService)

	// Router
	router := httpserver.NewRouter(authHandler, contractHandler, templateHandler, cfg.JWT.Secret, dbConn)

	// Start API server
	if err := router.Run(cfg.Server.Port); err != nil {
		zl.Fatal("server start failed", zap.Error(err))
	}
}
