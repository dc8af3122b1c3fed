package ports

import (
	"context"

	types "github.com/Apurer/gifting-api/internal/domains/catalog/application/types"
)

// Service exposes catalog use cases to adapters.
type Service interface {
	ListCategories(ctx context.Context) ([]*CategoryProjection, error)
	GetCategory(ctx context.Context, id int64) (*CategoryProjection, error)
	CreateCategory(ctx context.Context, input types.CategoryInput) (*CategoryProjection, error)
	UpdateCategory(ctx context.Context, id int64, input types.CategoryInput) (*CategoryProjection, error)
	DeleteCategory(ctx context.Context, id int64) error

	ListProducts(ctx context.Context, filter ProductFilter) ([]*ProductProjection, error)
	GetProduct(ctx context.Context, id int64) (*ProductProjection, error)
	CreateProduct(ctx context.Context, input types.ProductInput) (*ProductProjection, error)
	UpdateProduct(ctx context.Context, id int64, input types.ProductInput) (*ProductProjection, error)
	DeleteProduct(ctx context.Context, id int64) error

	ListHamperBoxes(ctx context.Context) ([]*HamperBoxProjection, error)
	GetHamperBox(ctx context.Context, id int64) (*HamperBoxProjection, error)
	CreateHamperBox(ctx context.Context, input types.HamperBoxInput) (*HamperBoxProjection, error)
	UpdateHamperBox(ctx context.Context, id int64, input types.HamperBoxInput) (*HamperBoxProjection, error)
	DeleteHamperBox(ctx context.Context, id int64) error
}
