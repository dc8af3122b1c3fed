package orders

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	orderports "github.com/Apurer/gifting-api/internal/domains/orders/ports"
	orderactivities "github.com/Apurer/gifting-api/internal/platform/temporal/activities/orders"
)

const (
	// NotificationWorkflowName is the public identifier for registering the workflow.
	NotificationWorkflowName = "orders.workflows.Notification"
	// NotificationTaskQueue is the queue consumed by the worker sending order notifications.
	NotificationTaskQueue = "ORDER_NOTIFICATIONS"
)

// NotificationWorkflowInput carries the created order and the trace it originated from.
type NotificationWorkflowInput struct {
	Order   *orderports.OrderProjection
	TraceID string
}

// NotificationWorkflow delivers the created-order notification with retries.
func NotificationWorkflow(ctx workflow.Context, input NotificationWorkflowInput) error {
	logger := workflow.GetLogger(ctx)
	number := ""
	if input.Order != nil && input.Order.Entity != nil {
		number = input.Order.Entity.OrderNumber
	}
	logger.Info("NotificationWorkflow started", withTraceID(input.TraceID, "orderNumber", number)...)

	options := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    10,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, options)
	if err := workflow.ExecuteActivity(ctx, orderactivities.SendNotificationActivityName, input.Order).Get(ctx, nil); err != nil {
		logger.Error("NotificationWorkflow failed", withTraceID(input.TraceID, "orderNumber", number, "error", err)...)
		return err
	}
	logger.Info("NotificationWorkflow completed", withTraceID(input.TraceID, "orderNumber", number)...)
	return nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
