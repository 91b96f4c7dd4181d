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

	"shopping-list/internal/api"
	"shopping-list/internal/config"
	"shopping-list/internal/lists"
	"shopping-list/internal/logging"
	"shopping-list/internal/store"
	"shopping-list/internal/websocket"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := logging.New(os.Stdout, cfg.Log.Format, cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opener, err := store.NewOpener(cfg)
	if err != nil {
		log.Fatalf("Failed to configure store: %v", err)
	}

	repo := lists.New(opener, logger, cfg.Store.Timeout)
	if err := repo.Initialize(ctx); err != nil {
		// The repository keeps serving the empty collection and rejects
		// writes until restarted.
		logger.Error(ctx, "store unavailable, running read-only", "driver", cfg.Store.Driver, "error", err)
	}

	hub := websocket.NewHub(logger, cfg.CORS.AllowedOrigins)
	go hub.Run(ctx)
	go hub.Follow(ctx, repo.Subscribe())

	router := api.SetupRouter(cfg, repo, hub, logger)

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	go func() {
		logger.Info(ctx, "server listening", "addr", cfg.Addr(), "store", cfg.Store.Driver, "auth", cfg.AuthEnabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info(context.Background(), "shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "server forced to shutdown", "error", err)
	}
	if err := repo.Close(); err != nil {
		logger.Error(shutdownCtx, "closing store", "error", err)
	}

	logger.Info(shutdownCtx, "server exiting")
}
