// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all process-wide configuration. Secrets are injected here at
// startup instead of living as package-level variables so tests can build
// isolated instances.
type Config struct {
	Env  string `env:"ENV" envDefault:"production"`
	Port int    `env:"PORT" envDefault:"3000"`

	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// JWT signing secret. The insecure default mirrors the historical
	// behavior of running without SECRET set; production deployments must
	// override it.
	Secret   string        `env:"SECRET" envDefault:"default_secret_for_dev"`
	TokenTTL time.Duration `env:"TOKEN_TTL" envDefault:"300s"`

	// Shared secret for the chat-bot webhook endpoints. When empty, every
	// webhook call is rejected with 401.
	WebhookAPIKey string `env:"WEBHOOK_API_KEY" envDefault:""`

	CORSOrigin string `env:"CORS_ORIGIN" envDefault:"*"`

	RateLimitAuthMax    int           `env:"RATE_LIMIT_AUTH_MAX" envDefault:"30"`
	RateLimitAuthWindow time.Duration `env:"RATE_LIMIT_AUTH_WINDOW" envDefault:"1m"`
}

// Load reads a .env file when present and parses the environment into a
// Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid PORT: %d", cfg.Port)
	}
	return cfg, nil
}

// IsDev reports whether the process runs with development helpers enabled.
func (c *Config) IsDev() bool {
	return c.Env == "dev" || c.Env == "development"
}
