package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	types "github.com/Apurer/gifting-api/internal/domains/catalog/application/types"
	catalogports "github.com/Apurer/gifting-api/internal/domains/catalog/ports"
)

const tracerName = "github.com/Apurer/gifting-api/internal/domains/catalog/adapters/observability/service"

// Service decorates the catalog service with tracing, logging, and metrics.
type Service struct {
	inner   catalogports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core catalog service.
func New(inner catalogports.Service, opts ...Option) catalogports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) ListCategories(ctx context.Context) ([]*catalogports.CategoryProjection, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.ListCategories")
	defer span.End()

	result, err := s.inner.ListCategories(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list categories")
	}
	span.SetAttributes(attribute.Int("category.count", len(result)))
	return result, nil
}

func (s *Service) GetCategory(ctx context.Context, id int64) (*catalogports.CategoryProjection, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.GetCategory", trace.WithAttributes(attribute.Int64("category.id", id)))
	defer span.End()

	result, err := s.inner.GetCategory(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load category", slog.Int64("category.id", id))
	}
	return result, nil
}

func (s *Service) CreateCategory(ctx context.Context, input types.CategoryInput) (*catalogports.CategoryProjection, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.CreateCategory")
	defer span.End()

	s.logInfo(ctx, "creating category")
	result, err := s.inner.CreateCategory(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create category")
	}
	s.metrics.recordWrite(ctx, "category", "create")
	s.logInfo(ctx, "category created", slog.Int64("category.id", result.Entity.ID), slog.String("category.name", result.Entity.Name))
	return result, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id int64, input types.CategoryInput) (*catalogports.CategoryProjection, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.UpdateCategory", trace.WithAttributes(attribute.Int64("category.id", id)))
	defer span.End()

	s.logInfo(ctx, "updating category", slog.Int64("category.id", id))
	result, err := s.inner.UpdateCategory(ctx, id, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update category", slog.Int64("category.id", id))
	}
	s.metrics.recordWrite(ctx, "category", "update")
	return result, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "CatalogService.DeleteCategory", trace.WithAttributes(attribute.Int64("category.id", id)))
	defer span.End()

	s.logInfo(ctx, "deactivating category", slog.Int64("category.id", id))
	if err := s.inner.DeleteCategory(ctx, id); err != nil {
		return s.handleError(ctx, span, err, "failed to deactivate category", slog.Int64("category.id", id))
	}
	s.metrics.recordWrite(ctx, "category", "deactivate")
	return nil
}

func (s *Service) ListProducts(ctx context.Context, filter catalogports.ProductFilter) ([]*catalogports.ProductProjection, error) {
	attrs := []attribute.KeyValue{attribute.Bool("product.filter.customizable", filter.CustomizableOnly)}
	if filter.CategoryID != nil {
		attrs = append(attrs, attribute.Int64("product.filter.category_id", *filter.CategoryID))
	}
	if filter.Type != nil {
		attrs = append(attrs, attribute.String("product.filter.type", string(*filter.Type)))
	}
	ctx, span := s.tracer.Start(ctx, "CatalogService.ListProducts", trace.WithAttributes(attrs...))
	defer span.End()

	result, err := s.inner.ListProducts(ctx, filter)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list products")
	}
	span.SetAttributes(attribute.Int("product.count", len(result)))
	return result, nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*catalogports.ProductProjection, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.GetProduct", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	result, err := s.inner.GetProduct(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load product", slog.Int64("product.id", id))
	}
	return result, nil
}

func (s *Service) CreateProduct(ctx context.Context, input types.ProductInput) (*catalogports.ProductProjection, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.CreateProduct")
	defer span.End()

	s.logInfo(ctx, "creating product")
	result, err := s.inner.CreateProduct(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create product")
	}
	s.metrics.recordWrite(ctx, "product", "create")
	s.logInfo(ctx, "product created", slog.Int64("product.id", result.Entity.ID), slog.String("product.type", string(result.Entity.Type)))
	return result, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, input types.ProductInput) (*catalogports.ProductProjection, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.UpdateProduct", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	s.logInfo(ctx, "updating product", slog.Int64("product.id", id))
	result, err := s.inner.UpdateProduct(ctx, id, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update product", slog.Int64("product.id", id))
	}
	s.metrics.recordWrite(ctx, "product", "update")
	return result, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "CatalogService.DeleteProduct", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	s.logInfo(ctx, "deactivating product", slog.Int64("product.id", id))
	if err := s.inner.DeleteProduct(ctx, id); err != nil {
		return s.handleError(ctx, span, err, "failed to deactivate product", slog.Int64("product.id", id))
	}
	s.metrics.recordWrite(ctx, "product", "deactivate")
	return nil
}

func (s *Service) ListHamperBoxes(ctx context.Context) ([]*catalogports.HamperBoxProjection, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.ListHamperBoxes")
	defer span.End()

	result, err := s.inner.ListHamperBoxes(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list hamper boxes")
	}
	span.SetAttributes(attribute.Int("hamper_box.count", len(result)))
	return result, nil
}

func (s *Service) GetHamperBox(ctx context.Context, id int64) (*catalogports.HamperBoxProjection, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.GetHamperBox", trace.WithAttributes(attribute.Int64("hamper_box.id", id)))
	defer span.End()

	result, err := s.inner.GetHamperBox(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load hamper box", slog.Int64("hamper_box.id", id))
	}
	return result, nil
}

func (s *Service) CreateHamperBox(ctx context.Context, input types.HamperBoxInput) (*catalogports.HamperBoxProjection, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.CreateHamperBox")
	defer span.End()

	s.logInfo(ctx, "creating hamper box")
	result, err := s.inner.CreateHamperBox(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create hamper box")
	}
	s.metrics.recordWrite(ctx, "hamper_box", "create")
	return result, nil
}

func (s *Service) UpdateHamperBox(ctx context.Context, id int64, input types.HamperBoxInput) (*catalogports.HamperBoxProjection, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.UpdateHamperBox", trace.WithAttributes(attribute.Int64("hamper_box.id", id)))
	defer span.End()

	result, err := s.inner.UpdateHamperBox(ctx, id, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update hamper box", slog.Int64("hamper_box.id", id))
	}
	s.metrics.recordWrite(ctx, "hamper_box", "update")
	return result, nil
}

func (s *Service) DeleteHamperBox(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "CatalogService.DeleteHamperBox", trace.WithAttributes(attribute.Int64("hamper_box.id", id)))
	defer span.End()

	if err := s.inner.DeleteHamperBox(ctx, id); err != nil {
		return s.handleError(ctx, span, err, "failed to deactivate hamper box", slog.Int64("hamper_box.id", id))
	}
	s.metrics.recordWrite(ctx, "hamper_box", "deactivate")
	return nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

type serviceMetrics struct {
	writes metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	writes, _ := m.Int64Counter("catalog.service.writes", metric.WithDescription("Number of catalog writes"))
	return serviceMetrics{writes: writes}
}

func (m serviceMetrics) recordWrite(ctx context.Context, entity, op string) {
	if m.writes != nil {
		m.writes.Add(ctx, 1, metric.WithAttributes(attribute.String("catalog.entity", entity), attribute.String("catalog.op", op)))
	}
}

var _ catalogports.Service = (*Service)(nil)
