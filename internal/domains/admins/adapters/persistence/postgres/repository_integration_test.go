//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	adminpg "github.com/Apurer/gifting-api/internal/domains/admins/adapters/persistence/postgres"
	"github.com/Apurer/gifting-api/internal/domains/admins/domain"
	"github.com/Apurer/gifting-api/internal/domains/admins/ports"
	"github.com/Apurer/gifting-api/internal/platform/migrations"
)

func setupAdminsPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("gifting_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, migrations.Run(db))

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}
	return db, cleanup
}

func TestRepository_SaveAndGetByUsername(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupAdminsPostgresContainer(t)
	defer cleanup()

	repo := adminpg.NewRepository(db)
	ctx := context.Background()

	admin, err := domain.NewAdmin("admin", "admin123", "System Administrator", "admin@example.com")
	require.NoError(t, err)
	saved, err := repo.Save(ctx, admin)
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)
	assert.True(t, saved.Active)
	assert.True(t, saved.CheckPassword("admin123"))

	saved.Active = false
	updated, err := repo.Save(ctx, saved)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, updated.ID)
	assert.False(t, updated.Active)

	_, err = repo.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestSessionStore_Lifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupAdminsPostgresContainer(t)
	defer cleanup()

	store := adminpg.NewSessionStore(db)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "admin", "live", time.Now().Add(time.Hour)))
	require.NoError(t, store.Save(ctx, "admin", "stale", time.Now().Add(-time.Hour)))

	active, err := store.Active(ctx, "live")
	require.NoError(t, err)
	assert.True(t, active)
	active, err = store.Active(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, active)

	purged, err := store.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	require.NoError(t, store.Delete(ctx, "live"))
	active, err = store.Active(ctx, "live")
	require.NoError(t, err)
	assert.False(t, active)
}
