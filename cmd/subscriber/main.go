package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"exchange_go/internal/app"
	"exchange_go/internal/subscriber"
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

	var journal *subscriber.Journal
	if cfg.Subscriber.JournalPath != "" {
		j, err := subscriber.OpenJournal(cfg.Subscriber.JournalPath)
		if err != nil {
			slog.Error("❌ Journal open failed", slog.Any("error", err))
			os.Exit(1)
		}
		journal = j
		defer journal.Close()
		slog.Info("✅ Quote journal ready", slog.String("path", cfg.Subscriber.JournalPath))
	}

	sub := subscriber.New(cfg.Subscriber.AuthURL, bootstrap.Store, bootstrap.Store, journal, nil)

	slog.Info("✨ Subscriber running. Press Ctrl+C to exit.")
	sub.Run(ctx)
}
