package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/onestomanys/orders-api/internal/config"
	"github.com/onestomanys/orders-api/internal/db"
	httpapi "github.com/onestomanys/orders-api/internal/http"
	"github.com/onestomanys/orders-api/internal/logging"
	"github.com/onestomanys/orders-api/internal/master"
	"github.com/onestomanys/orders-api/internal/order"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer logger.Sync()

	// --- DB ---
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Fatal("db open", zap.Error(err))
	}
	defer database.Close()

	if err := db.InitSchema(database); err != nil {
		logger.Fatal("db schema", zap.Error(err))
	}
	logger.Info("database initialized", zap.String("path", cfg.DBPath))

	orderRepo := order.NewRepository(database)
	masterRepo := master.NewRepository(database)

	// --- HTTP ---
	oh := httpapi.NewOrderHandler(orderRepo)
	mh := httpapi.NewMasterHandler(masterRepo)
	router := httpapi.NewRouter(logger, oh, mh)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Info("http listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)

	logger.Info("shutdown complete")
}
