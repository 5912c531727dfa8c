package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coswig/internal/analytics"
	"coswig/internal/config"
	"coswig/internal/dataio"
	"coswig/internal/infrastructure/logger"
	"coswig/internal/infrastructure/sqlite"
	"coswig/internal/order"
	"coswig/internal/server"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := sqlite.NewConnection(cfg.Database)
	if err != nil {
		zapLogger.Fatal("opening database", zap.Error(err))
	}
	defer db.Close()
	zapLogger.Info("database ready", zap.String("path", cfg.Database.Path))

	orderCtrl := order.NewModule(db, zapLogger)
	analyticsCtrl := analytics.NewModule(db, zapLogger)
	_, dataCtrl := dataio.NewModule(db, cfg, zapLogger)

	router := server.NewRouter(orderCtrl, analyticsCtrl, dataCtrl, zapLogger)

	srv := server.New(cfg.Server.Port, router, zapLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server shutdown failed", zap.Error(err))
	}

	zapLogger.Info("server stopped gracefully")
}
