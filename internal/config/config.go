// README: Config loader with env defaults for HTTP, storage, messaging, Firebase and pricing settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const envPrefix = "WASLHAA_"

type Config struct {
	HTTP struct {
		Addr            string
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		ShutdownTimeout time.Duration
		CORSOrigins     []string
	}
	DB struct {
		DSN           string // empty selects the in-memory order store
		Migrate       bool
		MigrationsDir string
	}
	Redis struct {
		Addr            string
		RevenueCacheTTL time.Duration
	}
	Kafka struct {
		Brokers []string
		Topic   string
	}
	Firebase struct {
		ProjectID       string
		CredentialsFile string
		UserStore       string // firestore | memory
	}
	Maps struct {
		APIKey string
	}
	PricingFile string
	LogLevel    string
}

func Load() (Config, error) {
	var cfg Config
	var errs []error

	cfg.HTTP.Addr = envOrDefault("HTTP_ADDR", ":8080")
	cfg.HTTP.ReadTimeout = envOrDefaultDuration("HTTP_READ_TIMEOUT", 5*time.Second, &errs)
	cfg.HTTP.WriteTimeout = envOrDefaultDuration("HTTP_WRITE_TIMEOUT", 10*time.Second, &errs)
	cfg.HTTP.ShutdownTimeout = envOrDefaultDuration("HTTP_SHUTDOWN_TIMEOUT", 15*time.Second, &errs)
	cfg.HTTP.CORSOrigins = splitAndTrim(envOrDefault("CORS_ORIGINS", ""))

	cfg.DB.DSN = envOrDefault("DB_DSN", "")
	cfg.DB.Migrate = envOrDefaultBool("MIGRATE", false, &errs)
	cfg.DB.MigrationsDir = envOrDefault("MIGRATIONS_DIR", "migrations")

	cfg.Redis.Addr = envOrDefault("REDIS_ADDR", "")
	cfg.Redis.RevenueCacheTTL = envOrDefaultDuration("REVENUE_CACHE_TTL", 30*time.Second, &errs)

	cfg.Kafka.Brokers = splitAndTrim(envOrDefault("KAFKA_BROKERS", ""))
	cfg.Kafka.Topic = envOrDefault("KAFKA_TOPIC", "order-events")

	cfg.Firebase.ProjectID = envOrDefault("FIREBASE_PROJECT_ID", "")
	cfg.Firebase.CredentialsFile = envOrDefault("FIREBASE_CREDENTIALS", "")
	cfg.Firebase.UserStore = strings.ToLower(envOrDefault("USER_STORE", "firestore"))

	cfg.Maps.APIKey = envOrDefault("MAPS_API_KEY", "")
	cfg.PricingFile = envOrDefault("PRICING_FILE", "config/pricing.yaml")
	cfg.LogLevel = strings.ToLower(envOrDefault("LOG_LEVEL", "info"))

	if cfg.Firebase.ProjectID == "" {
		errs = append(errs, fmt.Errorf("%sFIREBASE_PROJECT_ID is required", envPrefix))
	}
	if cfg.Firebase.UserStore != "firestore" && cfg.Firebase.UserStore != "memory" {
		errs = append(errs, fmt.Errorf("%sUSER_STORE must be firestore or memory, got %q", envPrefix, cfg.Firebase.UserStore))
	}
	if cfg.Redis.RevenueCacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("%sREVENUE_CACHE_TTL must be > 0", envPrefix))
	}
	return cfg, errors.Join(errs...)
}

func envOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(envPrefix + key)); v != "" {
		return v
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(envPrefix + key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s%s: %w", envPrefix, key, err))
		return def
	}
	return d
}

func envOrDefaultBool(key string, def bool, errs *[]error) bool {
	v := os.Getenv(envPrefix + key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s%s: %w", envPrefix, key, err))
		return def
	}
	return b
}

func splitAndTrim(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
