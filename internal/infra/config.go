package infra

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config holds every setting of the application. Values come from the
// YAML file first, then sensitive fields are overridden from environment
// variables (a .env file is honored when present).
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Feed struct {
		WSURL    string   `yaml:"ws_url"`
		Channels []string `yaml:"channels"`
	} `yaml:"feed"`

	Store struct {
		Addr        string `yaml:"addr"`
		Password    string `yaml:"password"`
		DB          int    `yaml:"db"`
		Namespace   string `yaml:"namespace"`
		QuoteKey    string `yaml:"quote_key"`
		SequenceKey string `yaml:"sequence_key"`
		QuoteTTLSec int    `yaml:"quote_ttl_sec"`
	} `yaml:"store"`

	Exchange struct {
		Slippage decimal.Decimal `yaml:"slippage"`
	} `yaml:"exchange"`

	Auth struct {
		TokenTTLSec int `yaml:"token_ttl_sec"`
	} `yaml:"auth"`

	Subscriber struct {
		AuthURL     string `yaml:"auth_url"`
		JournalPath string `yaml:"journal_path"`
	} `yaml:"subscriber"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the configuration file.
func LoadConfig(path string) (*Config, error) {
	// .env is optional; real env vars win either way.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// defaultConfig mirrors the original deployment defaults: bitFlyer
// lightning ticker feed, 30s quote TTL, slippage tolerance of 50.
func defaultConfig() *Config {
	cfg := &Config{}
	cfg.App.Name = "exchange-go"
	cfg.Server.Addr = ":3333"
	cfg.Feed.WSURL = "wss://ws.lightstream.bitflyer.com/json-rpc"
	cfg.Feed.Channels = []string{"lightning_ticker_FX_BTC_JPY"}
	cfg.Store.Addr = "localhost:6379"
	cfg.Store.Namespace = "exchange"
	cfg.Store.QuoteKey = "rate"
	cfg.Store.SequenceKey = "id"
	cfg.Store.QuoteTTLSec = 30
	cfg.Exchange.Slippage = decimal.NewFromInt(50)
	cfg.Auth.TokenTTLSec = 60
	cfg.Subscriber.AuthURL = "http://localhost:3333/auth"
	cfg.Logging.Level = "info"
	return cfg
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Feed.WSURL, "ws://") && !strings.HasPrefix(c.Feed.WSURL, "wss://") {
		return fmt.Errorf("invalid feed WS URL: %s", c.Feed.WSURL)
	}
	if len(c.Feed.Channels) == 0 {
		return fmt.Errorf("at least one feed channel is required")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server addr is required")
	}
	if c.Store.Addr == "" {
		return fmt.Errorf("store addr is required")
	}
	if c.Store.QuoteTTLSec <= 0 {
		return fmt.Errorf("quote TTL must be positive")
	}
	if c.Auth.TokenTTLSec <= 0 {
		return fmt.Errorf("token TTL must be positive")
	}
	if c.Exchange.Slippage.IsNegative() {
		return fmt.Errorf("slippage tolerance must not be negative")
	}
	return nil
}

// overrideWithEnv overrides settings from environment variables when set.
func overrideWithEnv(cfg *Config) {
	if addr := os.Getenv("EXCHANGE_SERVER_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if addr := os.Getenv("EXCHANGE_STORE_ADDR"); addr != "" {
		cfg.Store.Addr = addr
	}
	if pass := os.Getenv("EXCHANGE_STORE_PASSWORD"); pass != "" {
		cfg.Store.Password = pass
	}
	if url := os.Getenv("EXCHANGE_FEED_WS_URL"); url != "" {
		cfg.Feed.WSURL = url
	}
	if url := os.Getenv("EXCHANGE_AUTH_URL"); url != "" {
		cfg.Subscriber.AuthURL = url
	}
}
