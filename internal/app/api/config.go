package api

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
)

const (
	defaultAdminUsername   = "admin"
	defaultTimezone        = "Asia/Kolkata"
	defaultBusinessNumber  = "919876543210"
	defaultOrderRateLimit  = 10
	defaultCatalogCacheTTL = 5 * time.Minute
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Port string

	PostgresDSN string

	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	CatalogCacheTTL time.Duration

	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool

	JWTSecret string
	JWTIssuer string
	JWTTTL    time.Duration

	AdminUsername string
	AdminPassword string

	BusinessNumber string
	NotifyChannel  string
	KafkaBrokers   []string
	KafkaTopic     string

	AllowedOrigins       []string
	OrderRateLimit       int
	UploadDir            string
	OrderMaxTxAttempts   int
	Location             *time.Location
	SessionPurgeInterval time.Duration
	SeedSampleCatalog    bool
}

// LoadConfig reads an optional .env file and the environment, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		Port:              envDefault("PORT", "8080"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		RedisAddr:         strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		JWTIssuer:         envDefault("JWT_ISSUER", "gifting-api"),
		AdminUsername:     envDefault("ADMIN_DEFAULT_USERNAME", defaultAdminUsername),
		AdminPassword:     os.Getenv("ADMIN_DEFAULT_PASSWORD"),
		BusinessNumber:    envDefault("WHATSAPP_BUSINESS_NUMBER", defaultBusinessNumber),
		NotifyChannel:     strings.ToLower(envDefault("NOTIFY_CHANNEL", "log")),
		KafkaBrokers:      splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:        strings.TrimSpace(os.Getenv("KAFKA_TOPIC")),
		AllowedOrigins:    splitList(envDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		UploadDir:         envDefault("UPLOAD_DIR", "uploads/products"),
		SeedSampleCatalog: isTruthy(os.Getenv("SEED_SAMPLE_CATALOG")),
	}

	var err error
	if cfg.RedisDB, err = intEnv("REDIS_DB", 0, false); err != nil {
		return Config{}, err
	}
	cacheSeconds, err := intEnv("CATALOG_CACHE_TTL_SECONDS", int(defaultCatalogCacheTTL/time.Second), true)
	if err != nil {
		return Config{}, err
	}
	cfg.CatalogCacheTTL = time.Duration(cacheSeconds) * time.Second
	ttlMinutes, err := intEnv("JWT_TTL_MINUTES", 0, true)
	if err != nil {
		return Config{}, err
	}
	cfg.JWTTTL = time.Duration(ttlMinutes) * time.Minute
	if cfg.OrderRateLimit, err = intEnv("ORDER_RATE_LIMIT_PER_MINUTE", defaultOrderRateLimit, false); err != nil {
		return Config{}, err
	}
	if cfg.OrderMaxTxAttempts, err = intEnv("ORDER_MAX_TX_ATTEMPTS", 0, true); err != nil {
		return Config{}, err
	}
	purgeMinutes, err := intEnv("SESSION_PURGE_INTERVAL_MINUTES", 0, true)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionPurgeInterval = time.Duration(purgeMinutes) * time.Minute

	if cfg.Location, err = time.LoadLocation(envDefault("TIMEZONE", defaultTimezone)); err != nil {
		return Config{}, fmt.Errorf("TIMEZONE: %w", err)
	}
	if len(cfg.JWTSecret) < 32 {
		return Config{}, fmt.Errorf("JWT_SECRET must be at least 32 bytes")
	}
	switch cfg.NotifyChannel {
	case "log", "kafka":
	default:
		return Config{}, fmt.Errorf("NOTIFY_CHANNEL must be log or kafka, got %q", cfg.NotifyChannel)
	}
	return cfg, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

// intEnv parses a non-negative integer. With positive set, zero is rejected too.
func intEnv(key string, fallback int, positive bool) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 || (positive && n == 0) {
		if positive {
			return 0, fmt.Errorf("%s must be a positive integer", key)
		}
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return n, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
