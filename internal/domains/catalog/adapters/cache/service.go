package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	types "github.com/Apurer/gifting-api/internal/domains/catalog/application/types"
	"github.com/Apurer/gifting-api/internal/domains/catalog/ports"
)

const (
	keyPrefix  = "catalog:"
	DefaultTTL = 5 * time.Minute
)

// Service is a cache-aside decorator over the catalog service. Reads are served from Redis
// when present; any write drops every catalog key.
type Service struct {
	inner  ports.Service
	client redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

type Option func(*Service)

func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New wraps inner with a Redis cache. A nil client returns inner unchanged.
func New(inner ports.Service, client redis.UniversalClient, opts ...Option) ports.Service {
	if client == nil {
		return inner
	}
	s := &Service{inner: inner, client: client, ttl: DefaultTTL}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Service) ListCategories(ctx context.Context) ([]*ports.CategoryProjection, error) {
	return cached(ctx, s, keyPrefix+"categories:all", func() ([]*ports.CategoryProjection, error) {
		return s.inner.ListCategories(ctx)
	})
}

func (s *Service) GetCategory(ctx context.Context, id int64) (*ports.CategoryProjection, error) {
	return cached(ctx, s, fmt.Sprintf("%scategories:%d", keyPrefix, id), func() (*ports.CategoryProjection, error) {
		return s.inner.GetCategory(ctx, id)
	})
}

func (s *Service) CreateCategory(ctx context.Context, input types.CategoryInput) (*ports.CategoryProjection, error) {
	defer s.invalidate(ctx)
	return s.inner.CreateCategory(ctx, input)
}

func (s *Service) UpdateCategory(ctx context.Context, id int64, input types.CategoryInput) (*ports.CategoryProjection, error) {
	defer s.invalidate(ctx)
	return s.inner.UpdateCategory(ctx, id, input)
}

func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	defer s.invalidate(ctx)
	return s.inner.DeleteCategory(ctx, id)
}

func (s *Service) ListProducts(ctx context.Context, filter ports.ProductFilter) ([]*ports.ProductProjection, error) {
	return cached(ctx, s, keyPrefix+"products:"+filterKey(filter), func() ([]*ports.ProductProjection, error) {
		return s.inner.ListProducts(ctx, filter)
	})
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*ports.ProductProjection, error) {
	return cached(ctx, s, fmt.Sprintf("%sproduct:%d", keyPrefix, id), func() (*ports.ProductProjection, error) {
		return s.inner.GetProduct(ctx, id)
	})
}

func (s *Service) CreateProduct(ctx context.Context, input types.ProductInput) (*ports.ProductProjection, error) {
	defer s.invalidate(ctx)
	return s.inner.CreateProduct(ctx, input)
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, input types.ProductInput) (*ports.ProductProjection, error) {
	defer s.invalidate(ctx)
	return s.inner.UpdateProduct(ctx, id, input)
}

func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	defer s.invalidate(ctx)
	return s.inner.DeleteProduct(ctx, id)
}

func (s *Service) ListHamperBoxes(ctx context.Context) ([]*ports.HamperBoxProjection, error) {
	return cached(ctx, s, keyPrefix+"hamper-boxes:all", func() ([]*ports.HamperBoxProjection, error) {
		return s.inner.ListHamperBoxes(ctx)
	})
}

func (s *Service) GetHamperBox(ctx context.Context, id int64) (*ports.HamperBoxProjection, error) {
	return cached(ctx, s, fmt.Sprintf("%shamper-boxes:%d", keyPrefix, id), func() (*ports.HamperBoxProjection, error) {
		return s.inner.GetHamperBox(ctx, id)
	})
}

func (s *Service) CreateHamperBox(ctx context.Context, input types.HamperBoxInput) (*ports.HamperBoxProjection, error) {
	defer s.invalidate(ctx)
	return s.inner.CreateHamperBox(ctx, input)
}

func (s *Service) UpdateHamperBox(ctx context.Context, id int64, input types.HamperBoxInput) (*ports.HamperBoxProjection, error) {
	defer s.invalidate(ctx)
	return s.inner.UpdateHamperBox(ctx, id, input)
}

func (s *Service) DeleteHamperBox(ctx context.Context, id int64) error {
	defer s.invalidate(ctx)
	return s.inner.DeleteHamperBox(ctx, id)
}

// Invalidate drops every cached catalog entry. Stock changes made by order creation call it.
func (s *Service) Invalidate(ctx context.Context) {
	s.invalidate(ctx)
}

func (s *Service) invalidate(ctx context.Context) {
	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		s.warn(ctx, "catalog cache scan failed", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		s.warn(ctx, "catalog cache invalidation failed", err)
	}
}

func (s *Service) warn(ctx context.Context, msg string, err error) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelWarn, msg, slog.String("error", err.Error()))
}

// cached returns the value stored under key, or loads, stores and returns it. Redis errors
// fall through to the loader; loader errors are never cached.
func cached[T any](ctx context.Context, s *Service, key string, load func() (T, error)) (T, error) {
	var value T
	raw, err := s.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if jerr := json.Unmarshal(raw, &value); jerr == nil {
			return value, nil
		}
	case !errors.Is(err, redis.Nil):
		s.warn(ctx, "catalog cache read failed", err)
	}

	value, err = load()
	if err != nil {
		return value, err
	}
	if encoded, jerr := json.Marshal(value); jerr == nil {
		if serr := s.client.Set(ctx, key, encoded, s.ttl).Err(); serr != nil {
			s.warn(ctx, "catalog cache write failed", serr)
		}
	}
	return value, nil
}

func filterKey(filter ports.ProductFilter) string {
	key := "all"
	if filter.CategoryID != nil {
		key = fmt.Sprintf("category:%d", *filter.CategoryID)
	}
	if filter.Type != nil {
		key += ":type:" + string(*filter.Type)
	}
	if filter.CustomizableOnly {
		key += ":customizable"
	}
	return key
}

var _ ports.Service = (*Service)(nil)
