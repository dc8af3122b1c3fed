package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	adminpostgres "github.com/Apurer/gifting-api/internal/domains/admins/adapters/persistence/postgres"
	platformpostgres "github.com/Apurer/gifting-api/internal/platform/postgres"
)

func main() {
	_ = godotenv.Load()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	db, cleanup := platformpostgres.ConnectFromEnv(ctx, logger)
	defer cleanup()
	if db == nil {
		log.Fatal("POSTGRES_DSN not set or connection failed; cannot purge admin sessions")
	}

	purged, err := adminpostgres.NewSessionStore(db).PurgeExpired(ctx)
	if err != nil {
		log.Fatalf("failed to purge admin sessions: %v", err)
	}
	logger.Info("admin session purge completed", slog.Int64("purged", purged))
}
