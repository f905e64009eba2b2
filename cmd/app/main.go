package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"contractpay/internal/apiclient"
	"contractpay/internal/app"
	"contractpay/internal/cache"
	"contractpay/internal/config"
	"contractpay/internal/session"
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

	// Durable session slot
	slotDir := cfg.App.DataDir
	if slotDir == "" {
		slotDir, err = session.DefaultSlotDir()
		if err != nil {
			zl.Fatal("failed to resolve session dir", zap.Error(err))
		}
	}
	store := session.NewStore(session.NewFileSlot(slotDir), zl)
	store.Init(context.Background())

	// Cached API client
	api := apiclient.New(cfg.App.APIURL, cache.NewMemory(), zl)

	handlers := app.NewHandlers(store, api, zl)
	router := app.NewRouter(handlers)

	if err := router.Run(cfg.App.Port); err != nil {
		zl.Fatal("app start failed", zap.Error(err))
	}
}
