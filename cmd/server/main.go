package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	app "github.com/vish-intecai/translateo-server/internal/app"
	httpx "github.com/vish-intecai/translateo-server/internal/http"
	"github.com/vish-intecai/translateo-server/internal/rooms"
	"github.com/vish-intecai/translateo-server/internal/ws"
)

func main() {
	// Load local .env (dev only)
	_ = godotenv.Load()

	cfg := app.LoadConfig()
	logger := app.NewLogger(cfg.Env)

	// Cancel on SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Optional transcript bus; the hub works without it
	var bus *ws.TranscriptBus
	if cfg.RedisAddr != "" {
		var err error
		bus, err = ws.NewTranscriptBus(ctx, cfg, logger)
		if err != nil {
			logger.Error("redis connect", "err", err)
			os.Exit(1)
		}
		defer bus.Close()
		logger.Info("bus.enabled", "addr", cfg.RedisAddr)
	}

	// Room directory + websocket hub
	dir := rooms.NewDirectory()
	hub := ws.NewHub(logger, dir, ws.NewGroups(), bus)

	// HTTP + WS router
	router := httpx.NewRouter(cfg, logger, hub)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("server.listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server.crash", "err", err)
			cancel()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	logger.Info("server.shutdown.start")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	_ = srv.Shutdown(shutdownCtx)

	logger.Info("server.shutdown.complete")
}
