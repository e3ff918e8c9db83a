package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"exchange_go/internal/app"
	"exchange_go/internal/handler"
	"exchange_go/internal/infra"
	"exchange_go/internal/infra/bitflyer"
	"exchange_go/internal/service"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to configuration file")
	flag.Parse()

	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(*configPath); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer bootstrap.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := bootstrap.Config
	store := bootstrap.Store

	// Ingest pipeline: feed worker -> inbox -> cache put + topic publish.
	ingestor := service.NewIngestor(store, store, 256)
	go ingestor.Run(ctx)

	feedWorker := bitflyer.NewWorker(cfg.Feed.WSURL, cfg.Feed.Channels, ingestor.Inbox())
	if err := feedWorker.Connect(ctx); err != nil {
		slog.Error("Failed to start feed worker", slog.Any("error", err))
	}
	defer feedWorker.Disconnect()
	slog.InfoContext(ctx, "✅ Feed worker started", slog.Int("channels", len(cfg.Feed.Channels)))

	// Order API.
	execSvc := service.NewExecutionService(store, store, cfg.Exchange.Slippage)
	router := handler.NewRouter(execSvc, store, infra.GlobalMetrics, slog.Default())

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("✨ Exchange server listening", slog.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()

	slog.Info("👋 Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP shutdown failed", slog.Any("error", err))
	}
}
