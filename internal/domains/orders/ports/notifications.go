package ports

import "context"

// Notifier hands a created order to an outbound channel. Callers treat failures as best effort.
type Notifier interface {
	NotifyOrderCreated(ctx context.Context, order *OrderProjection) error
}

// NotificationDispatcher schedules a notification without blocking order creation.
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, order *OrderProjection)
}

// CatalogCache is told when order creation changed catalog stock.
type CatalogCache interface {
	Invalidate(ctx context.Context)
}
