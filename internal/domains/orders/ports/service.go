package ports

import (
	"context"

	types "github.com/Apurer/gifting-api/internal/domains/orders/application/types"
	"github.com/Apurer/gifting-api/internal/domains/orders/domain"
)

// Service exposes order use cases to adapters.
type Service interface {
	CreateOrder(ctx context.Context, input types.CreateOrderInput) (*OrderProjection, error)
	GetAll(ctx context.Context) ([]*OrderProjection, error)
	GetByID(ctx context.Context, id int64) (*OrderProjection, error)
	GetByOrderNumber(ctx context.Context, number string) (*OrderProjection, error)
	GetByStatus(ctx context.Context, status domain.Status) ([]*OrderProjection, error)
	UpdateStatus(ctx context.Context, id int64, status domain.Status) (*OrderProjection, error)
}
