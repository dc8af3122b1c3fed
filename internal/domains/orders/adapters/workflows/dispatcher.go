package workflows

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/Apurer/gifting-api/internal/domains/orders/ports"
	orderworkflows "github.com/Apurer/gifting-api/internal/platform/temporal/workflows/orders"
)

// DefaultNotifyTimeout bounds a single inline notification attempt.
const DefaultNotifyTimeout = 10 * time.Second

var (
	_ ports.NotificationDispatcher = (*InlineDispatcher)(nil)
	_ ports.NotificationDispatcher = (*TemporalDispatcher)(nil)
)

// InlineDispatcher sends notifications from a background goroutine in the API process.
type InlineDispatcher struct {
	notifier ports.Notifier
	timeout  time.Duration
	logger   *slog.Logger
	wg       sync.WaitGroup
}

// NewInlineDispatcher wraps notifier. A non-positive timeout uses DefaultNotifyTimeout.
func NewInlineDispatcher(notifier ports.Notifier, timeout time.Duration, logger *slog.Logger) *InlineDispatcher {
	if timeout <= 0 {
		timeout = DefaultNotifyTimeout
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &InlineDispatcher{notifier: notifier, timeout: timeout, logger: logger}
}

// Dispatch returns immediately; the notification outlives the request context.
func (d *InlineDispatcher) Dispatch(ctx context.Context, order *ports.OrderProjection) {
	if d == nil || d.notifier == nil || order == nil || order.Entity == nil {
		return
	}
	detached := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		number := order.Entity.OrderNumber
		defer func() {
			if r := recover(); r != nil {
				d.logger.LogAttrs(detached, slog.LevelError, "order notification panicked",
					slog.String("order.number", number), slog.Any("panic", r))
			}
		}()
		notifyCtx, cancel := context.WithTimeout(detached, d.timeout)
		defer cancel()
		if err := d.notifier.NotifyOrderCreated(notifyCtx, order); err != nil {
			d.logger.LogAttrs(detached, slog.LevelWarn, "order notification failed",
				slog.String("order.number", number), slog.String("error", err.Error()))
			return
		}
		d.logger.LogAttrs(detached, slog.LevelInfo, "order notification sent", slog.String("order.number", number))
	}()
}

// Wait blocks until in-flight notifications finish.
func (d *InlineDispatcher) Wait() {
	d.wg.Wait()
}

// TemporalDispatcher starts a durable notification workflow per order without waiting for it.
type TemporalDispatcher struct {
	client    client.Client
	taskQueue string
	logger    *slog.Logger
}

func NewTemporalDispatcher(c client.Client, logger *slog.Logger) *TemporalDispatcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &TemporalDispatcher{client: c, taskQueue: orderworkflows.NotificationTaskQueue, logger: logger}
}

func (d *TemporalDispatcher) Dispatch(ctx context.Context, order *ports.OrderProjection) {
	if order == nil || order.Entity == nil {
		return
	}
	number := order.Entity.OrderNumber
	if err := d.start(ctx, order); err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) {
			d.logger.LogAttrs(ctx, slog.LevelInfo, "order notification workflow already running",
				slog.String("order.number", number), slog.String("workflow.run_id", alreadyStarted.RunId))
			return
		}
		d.logger.LogAttrs(ctx, slog.LevelWarn, "failed to start order notification workflow",
			slog.String("order.number", number), slog.String("error", err.Error()))
		return
	}
	d.logger.LogAttrs(ctx, slog.LevelInfo, "order notification workflow started",
		slog.String("order.number", number), slog.String("workflow.id", workflowID(number)))
}

func (d *TemporalDispatcher) start(ctx context.Context, order *ports.OrderProjection) error {
	if d == nil || d.client == nil {
		return errors.New("temporal order notifications not configured")
	}
	options := client.StartWorkflowOptions{
		ID:        workflowID(order.Entity.OrderNumber),
		TaskQueue: d.taskQueue,
	}
	_, err := d.client.ExecuteWorkflow(
		context.WithoutCancel(ctx),
		options,
		orderworkflows.NotificationWorkflowName,
		orderworkflows.NotificationWorkflowInput{Order: order, TraceID: traceID(ctx)},
	)
	return err
}

func workflowID(orderNumber string) string {
	return fmt.Sprintf("order-notification-%s", orderNumber)
}

func traceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
