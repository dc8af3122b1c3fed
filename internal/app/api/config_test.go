package api

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", strings.Repeat("k", 32))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "log", cfg.NotifyChannel)
	assert.Equal(t, defaultOrderRateLimit, cfg.OrderRateLimit)
	assert.Equal(t, defaultCatalogCacheTTL, cfg.CatalogCacheTTL)
	assert.Equal(t, "Asia/Kolkata", cfg.Location.String())
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.AllowedOrigins)
	assert.Zero(t, cfg.SessionPurgeInterval)
	assert.Zero(t, cfg.JWTTTL)
	assert.False(t, cfg.SeedSampleCatalog)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", strings.Repeat("k", 32))
	t.Setenv("NOTIFY_CHANNEL", "Kafka")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("CORS_ALLOWED_ORIGINS", "*")
	t.Setenv("ORDER_RATE_LIMIT_PER_MINUTE", "0")
	t.Setenv("JWT_TTL_MINUTES", "90")
	t.Setenv("SESSION_PURGE_INTERVAL_MINUTES", "15")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("SEED_SAMPLE_CATALOG", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "kafka", cfg.NotifyChannel)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Zero(t, cfg.OrderRateLimit)
	assert.Equal(t, 90*time.Minute, cfg.JWTTTL)
	assert.Equal(t, 15*time.Minute, cfg.SessionPurgeInterval)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.True(t, cfg.SeedSampleCatalog)
}

func TestLoadConfig_Rejects(t *testing.T) {
	cases := map[string]map[string]string{
		"short secret":    {"JWT_SECRET": "too-short"},
		"unknown channel": {"NOTIFY_CHANNEL": "sms"},
		"bad purge":       {"SESSION_PURGE_INTERVAL_MINUTES": "0"},
		"bad rate limit":  {"ORDER_RATE_LIMIT_PER_MINUTE": "-1"},
		"bad timezone":    {"TIMEZONE": "Mars/Olympus"},
		"bad cache ttl":   {"CATALOG_CACHE_TTL_SECONDS": "soon"},
		"bad tx attempts": {"ORDER_MAX_TX_ATTEMPTS": "0"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv("JWT_SECRET", strings.Repeat("k", 32))
			for key, value := range env {
				t.Setenv(key, value)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
