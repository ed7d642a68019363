// Package config loads lotcheck settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrMissingToken is returned when LOLZTOKEN is not configured.
var ErrMissingToken = errors.New("LOLZTOKEN is not set")

// Config holds the service configuration.
type Config struct {
	Port     string
	LogLevel string
	// MaxLinks is the largest batch accepted by /process-links.
	MaxLinks int
	Market   MarketConfig
	Database DatabaseConfig
	Redis    RedisConfig
	S3       S3Config
	Kafka    KafkaConfig
}

// MarketConfig configures the upstream item lookup client.
type MarketConfig struct {
	BaseURL string
	// Token is the credential appended to every upstream call. Never log it.
	Token             string
	Timeout           time.Duration
	MaxRetries        int
	RetryPause        time.Duration
	MaxRetryPause     time.Duration
	RequestsPerSecond float64
	Burst             int
}

// DatabaseConfig holds the user store connection settings.
type DatabaseConfig struct {
	URL string
}

// RedisConfig configures the optional snapshot cache. Empty Addr disables it.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Enabled reports whether the cache should be wired.
func (r RedisConfig) Enabled() bool { return r.Addr != "" }

// S3Config configures the optional report archive. Empty Bucket disables it.
type S3Config struct {
	Bucket       string
	Prefix       string
	Region       string
	Profile      string
	UsePathStyle bool
}

// Enabled reports whether reports should be archived.
func (s S3Config) Enabled() bool { return s.Bucket != "" }

// KafkaConfig configures the optional batch event producer. No brokers disables it.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// Enabled reports whether batch events should be published.
func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

// Load reads configuration from environment variables.
// It fails fast when the upstream token is missing or a value does not parse.
func Load() (*Config, error) {
	var errs []error

	cfg := &Config{
		Port:     GetEnvOrDefault("PORT", DefaultPort),
		LogLevel: GetEnvOrDefault("LOG_LEVEL", DefaultLogLevel),
		MaxLinks: envInt("MAX_LINKS", DefaultMaxLinks, &errs),
		Market: MarketConfig{
			BaseURL:           strings.TrimRight(GetEnvOrDefault("MARKET_API_URL", DefaultMarketAPIURL), "/"),
			Token:             strings.TrimSpace(os.Getenv("LOLZTOKEN")),
			Timeout:           envDuration("MARKET_TIMEOUT", DefaultMarketTimeout, &errs),
			MaxRetries:        envInt("MARKET_MAX_RETRIES", DefaultMaxRetries, &errs),
			RetryPause:        envDuration("MARKET_RETRY_PAUSE", DefaultRetryPause, &errs),
			MaxRetryPause:     envDuration("MARKET_MAX_RETRY_PAUSE", DefaultMaxRetryPause, &errs),
			RequestsPerSecond: envFloat("MARKET_RPS", DefaultRequestsPerSecond, &errs),
			Burst:             envInt("MARKET_BURST", DefaultBurst, &errs),
		},
		Database: DatabaseConfig{
			URL: GetEnvOrDefault("DATABASE_URL", DefaultDatabase),
		},
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(os.Getenv("REDIS_ADDR")),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       envInt("REDIS_DB", 0, &errs),
			TTL:      envDuration("REDIS_TTL", DefaultCacheTTL, &errs),
		},
		S3: S3Config{
			Bucket:       strings.TrimSpace(os.Getenv("S3_BUCKET")),
			Prefix:       normalizePrefix(os.Getenv("S3_PREFIX")),
			Region:       strings.TrimSpace(os.Getenv("S3_REGION")),
			Profile:      strings.TrimSpace(os.Getenv("S3_PROFILE")),
			UsePathStyle: strings.EqualFold(strings.TrimSpace(os.Getenv("S3_USE_PATH_STYLE")), "true"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:   GetEnvOrDefault("KAFKA_TOPIC", DefaultKafkaTopic),
		},
	}

	if cfg.Market.Token == "" {
		errs = append(errs, ErrMissingToken)
	}
	if cfg.MaxLinks <= 0 {
		errs = append(errs, fmt.Errorf("MAX_LINKS must be positive, got %d", cfg.MaxLinks))
	}
	if cfg.Market.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("MARKET_MAX_RETRIES must not be negative, got %d", cfg.Market.MaxRetries))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// GetEnvOrDefault returns the value of an environment variable or a default value.
func GetEnvOrDefault(key, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultVal
}

func envInt(key string, def int, errs *[]error) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return v
}

func envFloat(key string, def float64, errs *[]error) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return v
}

// envDuration accepts Go durations ("2s") or a bare number of seconds.
func envDuration(key string, def time.Duration, errs *[]error) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func normalizePrefix(prefix string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}
