package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the resolved runtime configuration for the payment service.
// It merges file defaults and environment overrides to support both local
// and deployed runs.
type Config struct {
	ServiceID string

	HTTPPort int
	GRPCPort int

	DatabaseURL string
	RedisURL    string

	JWTSecret string

	GatewayBaseURL       string
	GatewaySecretKey     string
	GatewayWebhookSecret string
	GatewayHTTPTimeout   time.Duration
	WebhookTolerance     time.Duration

	Currency      string
	EventDedupTTL time.Duration

	IntentRateLimitThreshold int
	IntentRateLimitWindow    time.Duration

	AnalyticsDefaultDays int

	MaxDBConns int32
}

// configFile mirrors the YAML schema used by configs/default.yaml.
// It is intentionally separate from Config so runtime-only fields stay internal.
type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
		GRPCPort int    `yaml:"grpc_port"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL string `yaml:"postgres_url"`
		RedisURL    string `yaml:"redis_url"`
	} `yaml:"dependencies"`
	Gateway struct {
		BaseURL       string `yaml:"base_url"`
		SecretKey     string `yaml:"secret_key"`
		WebhookSecret string `yaml:"webhook_secret"`
	} `yaml:"gateway"`
	Payments struct {
		Currency             string `yaml:"currency"`
		AnalyticsDefaultDays int    `yaml:"analytics_default_days"`
	} `yaml:"payments"`
}

// LoadConfig resolves configuration in priority order: defaults -> file -> env.
// This order keeps local bootstrap simple while allowing environment-specific overrides.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:                "payment-reconciliation-service",
		HTTPPort:                 8080,
		GRPCPort:                 9090,
		GatewayBaseURL:           "https://api.gateway.example.com",
		GatewayHTTPTimeout:       8 * time.Second,
		WebhookTolerance:         5 * time.Minute,
		Currency:                 "USD",
		EventDedupTTL:            72 * time.Hour,
		IntentRateLimitThreshold: 10,
		IntentRateLimitWindow:    time.Minute,
		AnalyticsDefaultDays:     30,
		MaxDBConns:               20,
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.ID != "" {
			cfg.ServiceID = f.Service.ID
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Service.GRPCPort > 0 {
			cfg.GRPCPort = f.Service.GRPCPort
		}
		if f.Dependencies.PostgresURL != "" {
			cfg.DatabaseURL = f.Dependencies.PostgresURL
		}
		if f.Dependencies.RedisURL != "" {
			cfg.RedisURL = f.Dependencies.RedisURL
		}
		if f.Gateway.BaseURL != "" {
			cfg.GatewayBaseURL = f.Gateway.BaseURL
		}
		if f.Gateway.SecretKey != "" {
			cfg.GatewaySecretKey = f.Gateway.SecretKey
		}
		if f.Gateway.WebhookSecret != "" {
			cfg.GatewayWebhookSecret = f.Gateway.WebhookSecret
		}
		if f.Payments.Currency != "" {
			cfg.Currency = f.Payments.Currency
		}
		if f.Payments.AnalyticsDefaultDays > 0 {
			cfg.AnalyticsDefaultDays = f.Payments.AnalyticsDefaultDays
		}
	}

	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("POSTGRES_URL", cfg.DatabaseURL))
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.JWTSecret = envOrDefault("JWT_SECRET", cfg.JWTSecret)
	cfg.GatewayBaseURL = envOrDefault("GATEWAY_BASE_URL", cfg.GatewayBaseURL)
	cfg.GatewaySecretKey = envOrDefault("GATEWAY_SECRET_KEY", cfg.GatewaySecretKey)
	cfg.GatewayWebhookSecret = envOrDefault("GATEWAY_WEBHOOK_SECRET", cfg.GatewayWebhookSecret)
	cfg.Currency = envOrDefault("PAYMENT_CURRENCY", cfg.Currency)

	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = envInt("GRPC_PORT", cfg.GRPCPort)
	cfg.IntentRateLimitThreshold = envInt("INTENT_RATE_LIMIT_THRESHOLD", cfg.IntentRateLimitThreshold)
	cfg.AnalyticsDefaultDays = envInt("ANALYTICS_DEFAULT_DAYS", cfg.AnalyticsDefaultDays)
	cfg.MaxDBConns = int32(envInt("DB_MAX_CONNS", int(cfg.MaxDBConns)))

	cfg.GatewayHTTPTimeout = time.Duration(envInt("GATEWAY_HTTP_TIMEOUT_SECONDS", int(cfg.GatewayHTTPTimeout.Seconds()))) * time.Second
	cfg.WebhookTolerance = time.Duration(envInt("WEBHOOK_TOLERANCE_SECONDS", int(cfg.WebhookTolerance.Seconds()))) * time.Second
	cfg.EventDedupTTL = time.Duration(envInt("EVENT_DEDUP_TTL_HOURS", int(cfg.EventDedupTTL.Hours()))) * time.Hour
	cfg.IntentRateLimitWindow = time.Duration(envInt("INTENT_RATE_LIMIT_WINDOW_SECONDS", int(cfg.IntentRateLimitWindow.Seconds()))) * time.Second

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("missing DB_URL/POSTGRES_URL")
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("missing REDIS_URL")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("missing JWT_SECRET")
	}
	if cfg.GatewaySecretKey == "" {
		return Config{}, fmt.Errorf("missing GATEWAY_SECRET_KEY")
	}
	if cfg.GatewayWebhookSecret == "" {
		return Config{}, fmt.Errorf("missing GATEWAY_WEBHOOK_SECRET")
	}

	return cfg, nil
}

// envOrDefault returns an env var when present, otherwise the provided fallback.
func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

// envInt parses integer env vars with safe fallback on empty/invalid values.
func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
