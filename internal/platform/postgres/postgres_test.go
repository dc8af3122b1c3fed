package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolConfigFromEnv(t *testing.T) {
	t.Setenv("POSTGRES_MAX_OPEN_CONNS", "4")
	t.Setenv("POSTGRES_MAX_IDLE_CONNS", "9")
	t.Setenv("POSTGRES_SLOW_QUERY_MS", "nope")

	cfg := PoolConfigFromEnv()
	assert.Equal(t, 4, cfg.MaxOpenConns)
	assert.Equal(t, 4, cfg.MaxIdleConns)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQuery)
}

func TestConnectRejectsEmptyDSN(t *testing.T) {
	_, err := Connect(context.Background(), "  ", DefaultPoolConfig(), nil)
	require.Error(t, err)
}

func TestConnectFromEnvWithoutDSN(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	db, cleanup := ConnectFromEnv(context.Background(), nil)
	assert.Nil(t, db)
	cleanup()
}
