package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	giftingserver "github.com/Apurer/gifting-api/go"
	adminauth "github.com/Apurer/gifting-api/internal/domains/admins/adapters/auth"
	adminmemory "github.com/Apurer/gifting-api/internal/domains/admins/adapters/memory"
	adminpostgres "github.com/Apurer/gifting-api/internal/domains/admins/adapters/persistence/postgres"
	adminsapp "github.com/Apurer/gifting-api/internal/domains/admins/application"
	adminsports "github.com/Apurer/gifting-api/internal/domains/admins/ports"
	catalogcache "github.com/Apurer/gifting-api/internal/domains/catalog/adapters/cache"
	catalogmemory "github.com/Apurer/gifting-api/internal/domains/catalog/adapters/memory"
	catalogobs "github.com/Apurer/gifting-api/internal/domains/catalog/adapters/observability"
	catalogpostgres "github.com/Apurer/gifting-api/internal/domains/catalog/adapters/persistence/postgres"
	catalogstorage "github.com/Apurer/gifting-api/internal/domains/catalog/adapters/storage"
	catalogapp "github.com/Apurer/gifting-api/internal/domains/catalog/application"
	catalogports "github.com/Apurer/gifting-api/internal/domains/catalog/ports"
	ordermemory "github.com/Apurer/gifting-api/internal/domains/orders/adapters/memory"
	ordernotification "github.com/Apurer/gifting-api/internal/domains/orders/adapters/notification"
	orderobs "github.com/Apurer/gifting-api/internal/domains/orders/adapters/observability"
	orderpostgres "github.com/Apurer/gifting-api/internal/domains/orders/adapters/persistence/postgres"
	orderworkflows "github.com/Apurer/gifting-api/internal/domains/orders/adapters/workflows"
	ordersapp "github.com/Apurer/gifting-api/internal/domains/orders/application"
	orderports "github.com/Apurer/gifting-api/internal/domains/orders/ports"
	platformcache "github.com/Apurer/gifting-api/internal/platform/cache"
	"github.com/Apurer/gifting-api/internal/platform/migrations"
	platformobservability "github.com/Apurer/gifting-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/gifting-api/internal/platform/postgres"
	platformtemporal "github.com/Apurer/gifting-api/internal/platform/temporal"
)

const (
	serviceName = "gifting-api"
	// Version is reported by the root and health endpoints.
	Version = "1.0.0"

	inlineNotifyTimeout = 30 * time.Second
	shutdownTimeout     = 10 * time.Second
)

// Run boots the gifting HTTP API with observability, repositories, caching, and notifications wired.
// It serves until ctx is cancelled and then drains in-flight requests and notifications.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName, platformobservability.WithServiceVersion(Version))
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	var db *gorm.DB
	cleanupDB := func() {}
	if cfg.PostgresDSN != "" {
		db, cleanupDB = platformpostgres.ConnectFromEnv(ctx, logger)
	} else {
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory repositories")
	}
	defer cleanupDB()
	if db != nil {
		if err := migrations.Run(db); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
		logger.Info("repositories configured with postgres")
	}
	repos := buildRepositories(db)

	redisClient, cleanupRedis := platformcache.ConnectOptional(ctx, platformcache.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, logger)
	defer cleanupRedis()

	var catalogService catalogports.Service = catalogobs.New(
		catalogapp.NewService(repos.categories, repos.products, repos.boxes),
		catalogobs.WithLogger(logger),
		catalogobs.WithTracer(instruments.Tracer("internal.catalog.application")),
		catalogobs.WithMeter(instruments.Meter("internal.catalog.application")),
	)
	orderOpts := []ordersapp.Option{ordersapp.WithLogger(logger)}
	if redisClient != nil {
		catalogService = catalogcache.New(catalogService, redisClient,
			catalogcache.WithTTL(cfg.CatalogCacheTTL),
			catalogcache.WithLogger(logger),
		)
		if invalidator, ok := catalogService.(orderports.CatalogCache); ok {
			orderOpts = append(orderOpts, ordersapp.WithCatalogCache(invalidator))
		}
	}
	if cfg.SeedSampleCatalog {
		if seeded, err := catalogapp.SeedSampleCatalog(ctx, catalogService); err != nil {
			return fmt.Errorf("failed to seed sample catalog: %w", err)
		} else if seeded {
			logger.Info("sample catalog created")
		}
	}
	if cfg.OrderMaxTxAttempts > 0 {
		orderOpts = append(orderOpts, ordersapp.WithMaxAttempts(cfg.OrderMaxTxAttempts))
	}

	notifier, closeNotifier, err := buildNotifier(cfg, logger)
	if err != nil {
		return err
	}
	defer closeNotifier()
	var inline *orderworkflows.InlineDispatcher
	temporalClient, err := platformtemporal.Dial(platformtemporal.Options{
		Address:   cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Disabled:  cfg.TemporalDisabled,
	}, instruments.Tracer("temporal-client"), logger)
	if err != nil {
		logger.Warn("Temporal workflows unavailable, sending order notifications inline", slog.String("error", err.Error()))
		inline = orderworkflows.NewInlineDispatcher(notifier, inlineNotifyTimeout, logger)
		orderOpts = append(orderOpts, ordersapp.WithDispatcher(inline))
	} else {
		defer temporalClient.Close()
		orderOpts = append(orderOpts, ordersapp.WithDispatcher(orderworkflows.NewTemporalDispatcher(temporalClient, logger)))
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	orderService := orderobs.New(
		ordersapp.NewService(repos.orders, repos.uow, orderOpts...),
		orderobs.WithLogger(logger),
		orderobs.WithTracer(instruments.Tracer("internal.orders.application")),
		orderobs.WithMeter(instruments.Meter("internal.orders.application")),
	)

	tokens, err := adminauth.NewJWTManager(adminauth.JWTConfig{Issuer: cfg.JWTIssuer, Secret: cfg.JWTSecret, TTL: cfg.JWTTTL})
	if err != nil {
		return fmt.Errorf("failed to configure admin tokens: %w", err)
	}
	adminService := adminsapp.NewService(repos.admins, repos.sessions, tokens)
	if cfg.AdminPassword == "" {
		logger.Warn("ADMIN_DEFAULT_PASSWORD not set, default admin not provisioned")
	} else if created, err := adminService.EnsureDefaultAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		return fmt.Errorf("failed to provision default admin: %w", err)
	} else if created {
		logger.Info("default admin created", slog.String("username", cfg.AdminUsername))
	}

	images, err := catalogstorage.NewLocalImageStore(cfg.UploadDir)
	if err != nil {
		return fmt.Errorf("failed to prepare upload directory: %w", err)
	}

	handlers := giftingserver.ApiHandleFunctions{
		HealthAPI:    giftingserver.NewHealthAPI(Version, healthChecks(db, redisClient)),
		CategoryAPI:  giftingserver.NewCategoryAPI(catalogService),
		ProductAPI:   giftingserver.NewProductAPI(catalogService, images),
		HamperBoxAPI: giftingserver.NewHamperBoxAPI(catalogService),
		OrderAPI:     giftingserver.NewOrderAPI(orderService, cfg.Location),
		AdminAPI:     giftingserver.NewAdminAPI(adminService),
	}
	router := giftingserver.NewRouter(handlers,
		giftingserver.WithTracing(serviceName),
		giftingserver.WithRequestLogger(logger),
		giftingserver.WithAllowedOrigins(cfg.AllowedOrigins...),
		giftingserver.WithOrderRateLimit(cfg.OrderRateLimit),
	)

	if cfg.SessionPurgeInterval > 0 {
		go purgeSessionsEvery(ctx, repos.sessions, cfg.SessionPurgeInterval, logger)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("gifting API listening", slog.String("addr", server.Addr))
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("gifting API server exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down gifting API")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.String("error", err.Error()))
		}
	}
	if inline != nil {
		inline.Wait()
	}
	return nil
}

type repositories struct {
	categories catalogports.CategoryRepository
	products   catalogports.ProductRepository
	boxes      catalogports.HamperBoxRepository
	orders     orderports.Repository
	uow        orderports.UnitOfWork
	admins     adminsports.Repository
	sessions   adminsports.SessionStore
}

func buildRepositories(db *gorm.DB) repositories {
	if db == nil {
		store := catalogmemory.NewStore()
		orders := ordermemory.NewRepository(store)
		return repositories{
			categories: store.Categories(),
			products:   store.Products(),
			boxes:      store.HamperBoxes(),
			orders:     orders,
			uow:        orders,
			admins:     adminmemory.NewRepository(),
			sessions:   adminmemory.NewSessionStore(),
		}
	}
	orders := orderpostgres.NewRepository(db)
	return repositories{
		categories: catalogpostgres.NewCategoryRepository(db),
		products:   catalogpostgres.NewProductRepository(db),
		boxes:      catalogpostgres.NewHamperBoxRepository(db),
		orders:     orders,
		uow:        orders,
		admins:     adminpostgres.NewRepository(db),
		sessions:   adminpostgres.NewSessionStore(db),
	}
}

func buildNotifier(cfg Config, logger *slog.Logger) (orderports.Notifier, func(), error) {
	formatter := ordernotification.NewFormatter(cfg.BusinessNumber, cfg.Location)
	if cfg.NotifyChannel != "kafka" {
		return ordernotification.NewLogNotifier(formatter, logger), func() {}, nil
	}
	producer, err := ordernotification.NewSyncProducer(cfg.KafkaBrokers)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect kafka producer: %w", err)
	}
	notifier := ordernotification.NewKafkaNotifier(producer, cfg.KafkaTopic, formatter)
	logger.Info("order notifications published to kafka", slog.Any("brokers", cfg.KafkaBrokers))
	return notifier, func() { _ = notifier.Close() }, nil
}

func healthChecks(db *gorm.DB, redisClient *redis.Client) map[string]giftingserver.HealthCheck {
	checks := map[string]giftingserver.HealthCheck{}
	if db != nil {
		checks["database"] = func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}
	if redisClient != nil {
		checks["cache"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	return checks
}

func purgeSessionsEvery(ctx context.Context, sessions adminsports.SessionStore, every time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := sessions.PurgeExpired(ctx)
			if err != nil {
				logger.Warn("session purge failed", slog.String("error", err.Error()))
				continue
			}
			if purged > 0 {
				logger.Info("expired admin sessions purged", slog.Int64("count", purged))
			}
		}
	}
}
