package config

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full service configuration, loaded from the environment.
type Config struct {
	// Addr is the dashboard listen address.
	Addr string `env:"DEVICEHUB_ADDR" envDefault:":8090"`
	// APIBaseURL selects the inventory backend origin.
	APIBaseURL string `env:"DEVICEHUB_API_URL" envDefault:"http://localhost:8080/api"`
	// DBPath is the sqlite session database location.
	DBPath   string `env:"DEVICEHUB_DB_PATH" envDefault:"devicehub.db"`
	LogLevel string `env:"DEVICEHUB_LOG_LEVEL" envDefault:"info"`

	// SessionBackend picks where sessions live: "sqlite" or "redis".
	SessionBackend string `env:"DEVICEHUB_SESSION_BACKEND" envDefault:"sqlite"`
	RedisAddr      string `env:"DEVICEHUB_REDIS_ADDR" envDefault:"127.0.0.1:6379"`

	SessionTTL time.Duration `env:"DEVICEHUB_SESSION_TTL" envDefault:"720h"`
	PendingTTL time.Duration `env:"DEVICEHUB_PENDING_TTL" envDefault:"15m"`

	// SealKey is a hex-encoded 32-byte key encrypting API tokens at rest.
	// Empty disables sealing.
	SealKey string `env:"DEVICEHUB_SEAL_KEY"`

	// WSOrigins are origin patterns allowed to open the live-update socket.
	WSOrigins []string `env:"DEVICEHUB_WS_ORIGINS" envSeparator:","`

	// APITimeout bounds each backend request.
	APITimeout time.Duration `env:"DEVICEHUB_API_TIMEOUT" envDefault:"15s"`
}

// Load reads and validates configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.SessionBackend != "sqlite" && cfg.SessionBackend != "redis" {
		return Config{}, fmt.Errorf("invalid session backend %q", cfg.SessionBackend)
	}
	if _, err := cfg.SealKeyBytes(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SealKeyBytes decodes the seal key. It returns (nil, nil) when sealing is
// disabled.
func (c Config) SealKeyBytes() ([]byte, error) {
	if c.SealKey == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(c.SealKey)
	if err != nil {
		return nil, fmt.Errorf("decode seal key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("seal key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}
