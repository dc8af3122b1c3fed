package orders

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	orderports "github.com/Apurer/gifting-api/internal/domains/orders/ports"
)

// SendNotificationActivityName delivers the created-order notification through the configured channel.
const SendNotificationActivityName = "orders.activities.SendNotification"

// Activities groups activities that operate on the orders bounded context.
type Activities struct {
	notifier orderports.Notifier
}

// NewActivities wires the outbound notifier into the Temporal activities bundle.
func NewActivities(notifier orderports.Notifier) *Activities {
	return &Activities{notifier: notifier}
}

// SendNotification hands the order to the notifier. Only failed sends are retried, so delivery is
// at least once; channel consumers deduplicate on the order number.
func (a *Activities) SendNotification(ctx context.Context, order *orderports.OrderProjection) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.notifier == nil {
		logger.Error("order notification activity not initialized")
		return errors.New("order notification activity not initialized")
	}
	if order == nil || order.Entity == nil {
		return errors.New("order notification requires an order")
	}
	number := order.Entity.OrderNumber

	logger.Info("SendNotification activity started", "orderNumber", number)
	if err := a.notifier.NotifyOrderCreated(ctx, order); err != nil {
		logger.Error("SendNotification activity failed", "orderNumber", number, "error", err)
		return err
	}
	logger.Info("SendNotification activity completed", "orderNumber", number)
	return nil
}

