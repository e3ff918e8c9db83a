package app

import (
	"context"
	"log/slog"
	"time"

	"exchange_go/internal/infra"
	"exchange_go/internal/infra/redisstore"

	"github.com/redis/go-redis/v9"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config *infra.Config
	Store  *redisstore.Store
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize loads configuration, installs the logger and connects the
// backing store.
func (b *Bootstrap) Initialize(configPath string) error {
	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Store.Addr,
		Password: cfg.Store.Password,
		DB:       cfg.Store.DB,
	})

	// A dead backend at startup is worth knowing about, but the store
	// degrades per-call rather than failing the process.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("backing store unreachable at startup", slog.Any("error", err))
	}

	b.Store = redisstore.New(client, redisstore.Options{
		Namespace:   cfg.Store.Namespace,
		QuoteKey:    cfg.Store.QuoteKey,
		SequenceKey: cfg.Store.SequenceKey,
		QuoteTTL:    time.Duration(cfg.Store.QuoteTTLSec) * time.Second,
		TokenTTL:    time.Duration(cfg.Auth.TokenTTLSec) * time.Second,
	})

	slog.Info("✅ Backing store initialized", slog.String("addr", cfg.Store.Addr))
	return nil
}

// Shutdown releases held resources.
func (b *Bootstrap) Shutdown() {
	if b.Store != nil {
		if err := b.Store.Close(); err != nil {
			slog.Warn("store close failed", slog.Any("error", err))
		}
	}
}
