package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port        int    `env:"PORT" envDefault:"8080"`
	RelayPort   int    `env:"RELAY_PORT" envDefault:"8081"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	RedisURL    string `env:"REDIS_URL,required"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	ShopifyStoreDomain     string `env:"SHOPIFY_STORE_DOMAIN"`
	ShopifyStorefrontToken string `env:"SHOPIFY_STOREFRONT_TOKEN"`

	// Duplicate-purchase suppression. The window is how far back the relay
	// scans for a matching purchase; the TTL is how long records are kept.
	DuplicateWindowSeconds int `env:"DUPLICATE_WINDOW_SECONDS" envDefault:"5"`
	PurchaseKeyTTLSeconds  int `env:"PURCHASE_KEY_TTL_SECONDS" envDefault:"10"`

	WebhookRateLimitPerMin int `env:"WEBHOOK_RATE_LIMIT_PER_MIN" envDefault:"60"`

	PurchaseEventRetentionHours int `env:"PURCHASE_EVENT_RETENTION_HOURS" envDefault:"24"`
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) RelayAddr() string {
	return fmt.Sprintf(":%d", c.RelayPort)
}

func (c *Config) DuplicateWindow() time.Duration {
	return time.Duration(c.DuplicateWindowSeconds) * time.Second
}

func (c *Config) PurchaseKeyTTL() time.Duration {
	return time.Duration(c.PurchaseKeyTTLSeconds) * time.Second
}

func (c *Config) PurchaseEventRetention() time.Duration {
	return time.Duration(c.PurchaseEventRetentionHours) * time.Hour
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
