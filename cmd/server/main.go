package main

import (
	"fmt"
	stdlog "log"

	"socialnet/internal/app"
	"socialnet/internal/config"
	"socialnet/internal/logger"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatal("Failed to load config: ", err)
	}

	logger.Init(cfg)
	defer logger.Sync()

	router, err := app.NewRouter(cfg)
	if err != nil {
		logger.Fatal("failed to build router", zap.Error(err))
	}

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	logger.Info("server starting", zap.String("addr", addr))

	if err := router.Run(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
