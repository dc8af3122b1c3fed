package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	types "github.com/Apurer/gifting-api/internal/domains/orders/application/types"
	orderdomain "github.com/Apurer/gifting-api/internal/domains/orders/domain"
	orderports "github.com/Apurer/gifting-api/internal/domains/orders/ports"
)

const tracerName = "github.com/Apurer/gifting-api/internal/domains/orders/adapters/observability/service"

// Service decorates the order service with tracing, logging, and metrics.
type Service struct {
	inner   orderports.Service
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

// New wraps the core order service.
func New(inner orderports.Service, opts ...Option) orderports.Service {
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

func (s *Service) CreateOrder(ctx context.Context, input types.CreateOrderInput) (*orderports.OrderProjection, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.CreateOrder", trace.WithAttributes(
		attribute.Int("order.items", len(input.Items)),
		attribute.Int("order.hampers", len(input.Hampers)),
	))
	defer span.End()

	s.logInfo(ctx, "creating order", slog.String("customer.name", input.CustomerName),
		slog.Int("order.items", len(input.Items)), slog.Int("order.hampers", len(input.Hampers)))
	result, err := s.inner.CreateOrder(ctx, input)
	if err != nil {
		s.metrics.recordFailure(ctx, failureReason(err))
		return nil, s.handleError(ctx, span, err, "failed to create order", slog.String("customer.name", input.CustomerName))
	}
	span.SetAttributes(attribute.Int64("order.id", result.Entity.ID), attribute.String("order.number", result.Entity.OrderNumber))
	s.metrics.recordCreated(ctx, result.Entity.Type)
	s.logInfo(ctx, "order created",
		slog.Int64("order.id", result.Entity.ID),
		slog.String("order.number", result.Entity.OrderNumber),
		slog.String("order.total", result.Entity.TotalAmount.StringFixed(2)))
	return result, nil
}

func (s *Service) GetAll(ctx context.Context) ([]*orderports.OrderProjection, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetAll")
	defer span.End()

	result, err := s.inner.GetAll(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders")
	}
	span.SetAttributes(attribute.Int("order.count", len(result)))
	return result, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*orderports.OrderProjection, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetByID", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	result, err := s.inner.GetByID(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order", slog.Int64("order.id", id))
	}
	return result, nil
}

func (s *Service) GetByOrderNumber(ctx context.Context, number string) (*orderports.OrderProjection, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetByOrderNumber", trace.WithAttributes(attribute.String("order.number", number)))
	defer span.End()

	result, err := s.inner.GetByOrderNumber(ctx, number)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order", slog.String("order.number", number))
	}
	return result, nil
}

func (s *Service) GetByStatus(ctx context.Context, status orderdomain.Status) ([]*orderports.OrderProjection, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetByStatus", trace.WithAttributes(attribute.String("order.status", string(status))))
	defer span.End()

	result, err := s.inner.GetByStatus(ctx, status)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders by status", slog.String("order.status", string(status)))
	}
	span.SetAttributes(attribute.Int("order.count", len(result)))
	return result, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id int64, status orderdomain.Status) (*orderports.OrderProjection, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.UpdateStatus", trace.WithAttributes(
		attribute.Int64("order.id", id), attribute.String("order.status", string(status))))
	defer span.End()

	s.logInfo(ctx, "updating order status", slog.Int64("order.id", id), slog.String("order.status", string(status)))
	result, err := s.inner.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update order status", slog.Int64("order.id", id))
	}
	return result, nil
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

func failureReason(err error) string {
	var oos *orderdomain.OutOfStockError
	var pm *orderdomain.PriceMismatchError
	switch {
	case errors.As(err, &oos):
		return "out_of_stock"
	case errors.As(err, &pm):
		return "price_mismatch"
	case errors.Is(err, orderports.ErrDuplicateOrderNumber), errors.Is(err, orderports.ErrTransactionConflict):
		return "conflict"
	default:
		return "other"
	}
}

type serviceMetrics struct {
	ordersCreated metric.Int64Counter
	orderFailures metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	created, _ := m.Int64Counter("orders.service.orders_created", metric.WithDescription("Number of orders created"))
	failures, _ := m.Int64Counter("orders.service.order_failures", metric.WithDescription("Number of rejected order creations"))
	return serviceMetrics{ordersCreated: created, orderFailures: failures}
}

func (m serviceMetrics) recordCreated(ctx context.Context, orderType orderdomain.Type) {
	if m.ordersCreated != nil {
		m.ordersCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("order.type", string(orderType))))
	}
}

func (m serviceMetrics) recordFailure(ctx context.Context, reason string) {
	if m.orderFailures != nil {
		m.orderFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
	}
}

var _ orderports.Service = (*Service)(nil)
