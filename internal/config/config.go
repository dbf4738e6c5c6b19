package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"

	pkgconfig "github.com/Skotchmaster/storefront/pkg/config"
)

type StripeConfig struct {
	SecretKey string
}

type PayPalConfig struct {
	ClientID string
	Secret   string
	BaseURL  string
}

type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	CartLimit int
	Window    time.Duration
}

type SearchConfig struct {
	URL      string
	User     string
	Password string
	Index    string
}

type ServiceConfig struct {
	pkgconfig.Config

	Currency       string
	GatewayTimeout time.Duration

	Stripe StripeConfig
	PayPal PayPalConfig
	Redis  RedisConfig
	Search SearchConfig

	CSRFSecureCookie bool
}

// Load reads .env when present, then the process environment.
// Missing required keys terminate the process.
func Load() ServiceConfig {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env file not found, using process environment: %v", err)
	}

	cfg := FromEnv()

	pkgconfig.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	pkgconfig.MustNonEmptyBytes(cfg.JWTAccessSecret, "JWT_SECRET")
	pkgconfig.MustNonEmpty(cfg.AuthHTTPURL, "AUTH_URL")

	return cfg
}

// FromEnv builds the configuration without validation.
func FromEnv() ServiceConfig {
	base := pkgconfig.Load()

	return ServiceConfig{
		Config: base,

		Currency:       strings.ToLower(pkgconfig.EnvDefault("CURRENCY", "usd")),
		GatewayTimeout: pkgconfig.EnvDurationDefault("GATEWAY_TIMEOUT", 30*time.Second),

		Stripe: StripeConfig{
			SecretKey: pkgconfig.EnvDefault("STRIPE_SECRET_KEY", ""),
		},
		PayPal: PayPalConfig{
			ClientID: pkgconfig.EnvDefault("PAYPAL_CLIENT_ID", ""),
			Secret:   pkgconfig.EnvDefault("PAYPAL_SECRET", ""),
			BaseURL:  pkgconfig.EnvDefault("PAYPAL_BASE_URL", "https://api-m.sandbox.paypal.com"),
		},
		Redis: RedisConfig{
			Addr:      pkgconfig.EnvDefault("REDIS_ADDR", ""),
			Password:  pkgconfig.EnvDefault("REDIS_PASSWORD", ""),
			DB:        pkgconfig.EnvIntDefault("REDIS_DB", 0),
			CartLimit: pkgconfig.EnvIntDefault("CART_RATE_LIMIT", 30),
			Window:    pkgconfig.EnvDurationDefault("CART_RATE_WINDOW", time.Minute),
		},
		Search: SearchConfig{
			URL:      pkgconfig.EnvDefault("ES_URL", ""),
			User:     pkgconfig.EnvDefault("ES_USER", ""),
			Password: pkgconfig.EnvDefault("ES_PASSWORD", ""),
			Index:    pkgconfig.EnvDefault("ES_INDEX", "items"),
		},

		CSRFSecureCookie: pkgconfig.EnvDefault("CSRF_SECURE_COOKIE", "false") == "true",
	}
}
