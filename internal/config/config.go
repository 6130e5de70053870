package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	//App
	Env string // dev / test / staging / prod
	//HTTP
	HTTPAddr         string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	// Identity provider
	StytchProjectID     string
	StytchSecret        string
	StytchEnv           string // test / live
	StytchBaseURL       string
	StytchTimeout       time.Duration
	StytchStrengthCheck bool

	// Webhooks
	WebhookSecret    string
	WebhookTolerance time.Duration
	WebhookDedupeTTL time.Duration

	// Reset link requests
	ResetRedirectURL string
	ResetExpiration  time.Duration

	// Forms
	CSRFKey []byte

	// Infrastructure (optional outside prod)
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RabbitURL        string
	RabbitExchange   string
	RabbitRoutingKey string

	// Tracing (OTLP/HTTP)
	OTelEnabled  bool
	OTelEndpoint string
	OTelInsecure bool

	// In-process rate limiting, used when Redis is not configured
	RLEnabled bool
	RLLimit   int
	RLWindow  time.Duration
}

// IsProd reports whether production hardening rules apply.
func (c *Config) IsProd() bool { return c.Env == "prod" }

// StytchConfigured reports whether provider credentials are present.
func (c *Config) StytchConfigured() bool {
	return c.StytchProjectID != "" && c.StytchSecret != ""
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("ENV", "dev"),
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		StytchProjectID: getEnv("STYTCH_PROJECT_ID", ""),
		StytchSecret:    getEnv("STYTCH_SECRET", ""),
		StytchEnv:       getEnv("STYTCH_ENV", "test"),
		StytchBaseURL:   getEnv("STYTCH_BASE_URL", ""),

		WebhookSecret:    getEnv("STYTCH_WEBHOOK_SECRET", ""),
		ResetRedirectURL: getEnv("RESET_PASSWORD_REDIRECT_URL", ""),

		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RabbitURL:        getEnv("RABBIT_URL", ""),
		RabbitExchange:   getEnv("RABBIT_EXCHANGE", "identity.events"),
		RabbitRoutingKey: getEnv("RABBIT_ROUTING_KEY", "identity.password.reset.confirmed"),

		OTelEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if cfg.StytchEnv != "test" && cfg.StytchEnv != "live" {
		return nil, fmt.Errorf("STYTCH_ENV must be test or live, got %q", cfg.StytchEnv)
	}

	var err error
	if cfg.HTTPReadTimeout, err = getDuration("HTTP_READ_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTPWriteTimeout, err = getDuration("HTTP_WRITE_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTPIdleTimeout, err = getDuration("HTTP_IDLE_TIMEOUT", time.Minute); err != nil {
		return nil, err
	}
	if cfg.StytchTimeout, err = getDuration("STYTCH_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.WebhookTolerance, err = getDuration("WEBHOOK_TOLERANCE", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.WebhookDedupeTTL, err = getDuration("WEBHOOK_DEDUPE_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ResetExpiration, err = getDuration("RESET_PASSWORD_EXPIRATION", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RLWindow, err = getDuration("RL_IP_WINDOW", time.Minute); err != nil {
		return nil, err
	}
	if cfg.StytchStrengthCheck, err = getBool("STYTCH_STRENGTH_CHECK", false); err != nil {
		return nil, err
	}
	if cfg.OTelEnabled, err = getBool("OTEL_ENABLED", false); err != nil {
		return nil, err
	}
	if cfg.OTelInsecure, err = getBool("OTEL_INSECURE", true); err != nil {
		return nil, err
	}
	if cfg.RLEnabled, err = getBool("RL_ENABLED", true); err != nil {
		return nil, err
	}
	if cfg.RLLimit, err = getInt("RL_IP_LIMIT", 60); err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}

	if raw := getEnv("CSRF_KEY", ""); raw != "" {
		key, err := hex.DecodeString(raw)
		if err != nil || len(key) != 32 {
			return nil, fmt.Errorf("CSRF_KEY must be 32 hex-encoded bytes")
		}
		cfg.CSRFKey = key
	}

	// Production refuses to start half-configured. Elsewhere the service boots and
	// answers reset submissions with a configuration error instead.
	if cfg.IsProd() {
		if !cfg.StytchConfigured() {
			return nil, fmt.Errorf("missing required env vars: STYTCH_PROJECT_ID, STYTCH_SECRET")
		}
		if cfg.WebhookSecret == "" {
			return nil, fmt.Errorf("missing required env var: STYTCH_WEBHOOK_SECRET")
		}
		if cfg.CSRFKey == nil {
			return nil, fmt.Errorf("missing required env var: CSRF_KEY")
		}
		if cfg.RabbitURL == "" {
			return nil, fmt.Errorf("missing required env var: RABBIT_URL")
		}
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %q: %w", key, v, err)
	}
	return d, nil
}

func getInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid int for %s: %q: %w", key, v, err)
	}
	return i, nil
}

func getBool(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid bool for %s: %q: %w", key, v, err)
	}
	return b, nil
}
