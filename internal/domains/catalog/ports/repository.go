package ports

import (
	"context"
	"errors"
	"io"

	"github.com/Apurer/gifting-api/internal/domains/catalog/domain"
	"github.com/Apurer/gifting-api/internal/shared/projection"
)

var (
	ErrNotFound          = errors.New("catalog entry not found")
	ErrDuplicateCategory = errors.New("category name already exists")
)

type (
	CategoryProjection  = projection.Projection[*domain.Category]
	ProductProjection   = projection.Projection[*domain.Product]
	HamperBoxProjection = projection.Projection[*domain.HamperBox]
)

// ProductFilter narrows product listings. Zero values mean "any".
type ProductFilter struct {
	CategoryID       *int64
	Type             *domain.ProductType
	CustomizableOnly bool
}

// CategoryRepository persists categories.
type CategoryRepository interface {
	Save(ctx context.Context, category *domain.Category) (*CategoryProjection, error)
	GetByID(ctx context.Context, id int64) (*CategoryProjection, error)
	ListActive(ctx context.Context) ([]*CategoryProjection, error)
}

// ProductRepository persists products. Listings only return active products.
type ProductRepository interface {
	Save(ctx context.Context, product *domain.Product) (*ProductProjection, error)
	GetByID(ctx context.Context, id int64) (*ProductProjection, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*ProductProjection, error)
	ListActive(ctx context.Context, filter ProductFilter) ([]*ProductProjection, error)
}

// HamperBoxRepository persists hamper boxes.
type HamperBoxRepository interface {
	Save(ctx context.Context, box *domain.HamperBox) (*HamperBoxProjection, error)
	GetByID(ctx context.Context, id int64) (*HamperBoxProjection, error)
	ListActive(ctx context.Context) ([]*HamperBoxProjection, error)
}

var (
	ErrUnsupportedImage = errors.New("only image files are allowed")
	ErrImageTooLarge    = errors.New("file size must be less than 5MB")
	ErrEmptyImage       = errors.New("please select a file to upload")
)

// ImageStore keeps uploaded product images.
type ImageStore interface {
	// Save stores the image and returns its generated file name.
	Save(ctx context.Context, r io.Reader) (string, error)
	// Path resolves a stored file name to a readable path. It returns ErrNotFound for unknown or
	// unsafe names.
	Path(name string) (string, error)
}
