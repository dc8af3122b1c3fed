package postgres

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// PoolConfig sizes the database/sql pool behind GORM.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	SlowQuery       time.Duration
}

// DefaultPoolConfig suits a single API instance taking order bursts.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxOpenConns:    20,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
		SlowQuery:       200 * time.Millisecond,
	}
}

// PoolConfigFromEnv overlays POSTGRES_MAX_OPEN_CONNS, POSTGRES_MAX_IDLE_CONNS and
// POSTGRES_SLOW_QUERY_MS on the defaults. Malformed values keep the default.
func PoolConfigFromEnv() PoolConfig {
	cfg := DefaultPoolConfig()
	if n, ok := positiveEnv("POSTGRES_MAX_OPEN_CONNS"); ok {
		cfg.MaxOpenConns = n
	}
	if n, ok := positiveEnv("POSTGRES_MAX_IDLE_CONNS"); ok {
		cfg.MaxIdleConns = n
	}
	if n, ok := positiveEnv("POSTGRES_SLOW_QUERY_MS"); ok {
		cfg.SlowQuery = time.Duration(n) * time.Millisecond
	}
	if cfg.MaxIdleConns > cfg.MaxOpenConns {
		cfg.MaxIdleConns = cfg.MaxOpenConns
	}
	return cfg
}

// Connect opens the database, applies the pool settings and pings within five seconds.
// Slow statements are reported through logger at warn level.
func Connect(ctx context.Context, dsn string, pool PoolConfig, logger *slog.Logger) (*gorm.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres DSN is empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.New(
			slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
			gormlogger.Config{
				SlowThreshold:             pool.SlowQuery,
				LogLevel:                  gormlogger.Warn,
				IgnoreRecordNotFoundError: true,
			},
		),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// ConnectFromEnv dials POSTGRES_DSN. A missing DSN or a failed dial yields a nil DB so callers
// can run on the in-memory stores.
func ConnectFromEnv(ctx context.Context, logger *slog.Logger) (*gorm.DB, func()) {
	if logger == nil {
		logger = slog.Default()
	}
	noop := func() {}
	dsn := strings.TrimSpace(os.Getenv("POSTGRES_DSN"))
	if dsn == "" {
		logger.Warn("POSTGRES_DSN not set, using in-memory storage")
		return nil, noop
	}
	pool := PoolConfigFromEnv()
	db, err := Connect(ctx, dsn, pool, logger)
	if err != nil {
		logger.Warn("postgres unreachable, using in-memory storage", slog.String("error", err.Error()))
		return nil, noop
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("postgres handle unavailable, using in-memory storage", slog.String("error", err.Error()))
		return nil, noop
	}
	logger.Info("postgres connected",
		slog.Int("pool.max_open", pool.MaxOpenConns),
		slog.Int("pool.max_idle", pool.MaxIdleConns),
	)
	return db, func() { _ = sqlDB.Close() }
}

func positiveEnv(key string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
