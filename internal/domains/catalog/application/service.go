package application

import (
	"context"
	"fmt"

	types "github.com/Apurer/gifting-api/internal/domains/catalog/application/types"
	"github.com/Apurer/gifting-api/internal/domains/catalog/domain"
	"github.com/Apurer/gifting-api/internal/domains/catalog/ports"
)

// Service orchestrates the catalog use cases.
type Service struct {
	categories ports.CategoryRepository
	products   ports.ProductRepository
	boxes      ports.HamperBoxRepository
}

// NewService wires the catalog service with its repositories.
func NewService(categories ports.CategoryRepository, products ports.ProductRepository, boxes ports.HamperBoxRepository) *Service {
	return &Service{categories: categories, products: products, boxes: boxes}
}

// ListCategories returns active categories ordered by display order.
func (s *Service) ListCategories(ctx context.Context) ([]*ports.CategoryProjection, error) {
	return s.categories.ListActive(ctx)
}

func (s *Service) GetCategory(ctx context.Context, id int64) (*ports.CategoryProjection, error) {
	return s.categories.GetByID(ctx, id)
}

func (s *Service) CreateCategory(ctx context.Context, input types.CategoryInput) (*ports.CategoryProjection, error) {
	if input.Name == nil {
		return nil, mapError(domain.ErrEmptyCategoryName)
	}
	category := &domain.Category{Active: true}
	if err := applyCategory(category, input); err != nil {
		return nil, mapError(err)
	}
	saved, err := s.categories.Save(ctx, category)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id int64, input types.CategoryInput) (*ports.CategoryProjection, error) {
	existing, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyCategory(existing.Entity, input); err != nil {
		return nil, mapError(err)
	}
	saved, err := s.categories.Save(ctx, existing.Entity)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

// DeleteCategory deactivates the category; its products are left untouched.
func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	existing, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return err
	}
	existing.Entity.Deactivate()
	_, err = s.categories.Save(ctx, existing.Entity)
	return err
}

// ListProducts returns active products matching the filter.
func (s *Service) ListProducts(ctx context.Context, filter ports.ProductFilter) ([]*ports.ProductProjection, error) {
	if filter.Type != nil && !filter.Type.Valid() {
		return nil, mapError(domain.ErrInvalidProductType)
	}
	return s.products.ListActive(ctx, filter)
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*ports.ProductProjection, error) {
	return s.products.GetByID(ctx, id)
}

func (s *Service) CreateProduct(ctx context.Context, input types.ProductInput) (*ports.ProductProjection, error) {
	if input.Name == nil {
		return nil, mapError(domain.ErrEmptyProductName)
	}
	if input.Price == nil {
		return nil, fmt.Errorf("%w: price is required", ErrInvalidInput)
	}
	if input.Type == nil {
		return nil, mapError(domain.ErrInvalidProductType)
	}
	product := &domain.Product{Active: true}
	if err := s.applyProduct(ctx, product, input); err != nil {
		return nil, mapError(err)
	}
	saved, err := s.products.Save(ctx, product)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, input types.ProductInput) (*ports.ProductProjection, error) {
	existing, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyProduct(ctx, existing.Entity, input); err != nil {
		return nil, mapError(err)
	}
	saved, err := s.products.Save(ctx, existing.Entity)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

// DeleteProduct deactivates the product so historical orders keep their reference.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	existing, err := s.products.GetByID(ctx, id)
	if err != nil {
		return err
	}
	existing.Entity.Deactivate()
	_, err = s.products.Save(ctx, existing.Entity)
	return err
}

// ListHamperBoxes returns active boxes, cheapest first.
func (s *Service) ListHamperBoxes(ctx context.Context) ([]*ports.HamperBoxProjection, error) {
	return s.boxes.ListActive(ctx)
}

func (s *Service) GetHamperBox(ctx context.Context, id int64) (*ports.HamperBoxProjection, error) {
	return s.boxes.GetByID(ctx, id)
}

func (s *Service) CreateHamperBox(ctx context.Context, input types.HamperBoxInput) (*ports.HamperBoxProjection, error) {
	if input.Name == nil {
		return nil, mapError(domain.ErrEmptyHamperName)
	}
	if input.Price == nil {
		return nil, fmt.Errorf("%w: price is required", ErrInvalidInput)
	}
	box := &domain.HamperBox{Active: true}
	if err := applyHamperBox(box, input); err != nil {
		return nil, mapError(err)
	}
	saved, err := s.boxes.Save(ctx, box)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

func (s *Service) UpdateHamperBox(ctx context.Context, id int64, input types.HamperBoxInput) (*ports.HamperBoxProjection, error) {
	existing, err := s.boxes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyHamperBox(existing.Entity, input); err != nil {
		return nil, mapError(err)
	}
	saved, err := s.boxes.Save(ctx, existing.Entity)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

func (s *Service) DeleteHamperBox(ctx context.Context, id int64) error {
	existing, err := s.boxes.GetByID(ctx, id)
	if err != nil {
		return err
	}
	existing.Entity.Deactivate()
	_, err = s.boxes.Save(ctx, existing.Entity)
	return err
}

func applyCategory(target *domain.Category, input types.CategoryInput) error {
	if input.Name != nil {
		if err := target.Rename(*input.Name); err != nil {
			return err
		}
	}
	if input.Description != nil {
		target.Description = *input.Description
	}
	if input.ImageURL != nil {
		target.ImageURL = *input.ImageURL
	}
	if input.DisplayOrder != nil {
		target.DisplayOrder = *input.DisplayOrder
	}
	if input.Active != nil {
		target.Active = *input.Active
	}
	return target.Validate()
}

func (s *Service) applyProduct(ctx context.Context, target *domain.Product, input types.ProductInput) error {
	if input.Name != nil {
		target.Name = *input.Name
	}
	if input.Description != nil {
		target.Description = *input.Description
	}
	if input.Price != nil {
		target.Price = *input.Price
	}
	if input.Type != nil {
		t, err := domain.ParseProductType(*input.Type)
		if err != nil {
			return err
		}
		target.Type = t
	}
	if input.ImageURL != nil {
		target.ImageURL = *input.ImageURL
	}
	if input.Customizable != nil {
		target.Customizable = *input.Customizable
	}
	if input.CustomizationCharge != nil {
		target.CustomizationCharge = *input.CustomizationCharge
	}
	if input.ClearStock {
		target.StockQuantity = nil
	} else if input.StockQuantity != nil {
		stock := *input.StockQuantity
		target.StockQuantity = &stock
	}
	if input.Active != nil {
		target.Active = *input.Active
	}
	if input.CategoryID != nil {
		category, err := s.categories.GetByID(ctx, *input.CategoryID)
		if err != nil {
			return err
		}
		id := category.Entity.ID
		target.CategoryID = &id
		target.CategoryName = category.Entity.Name
	}
	if input.CustomizationOptions != nil {
		target.CustomizationOptions = append([]byte(nil), input.CustomizationOptions...)
	}
	if input.Specifications != nil {
		target.Specifications = append([]byte(nil), input.Specifications...)
	}
	if input.WidthCm != nil {
		target.Dimensions.WidthCm = input.WidthCm
	}
	if input.HeightCm != nil {
		target.Dimensions.HeightCm = input.HeightCm
	}
	if input.DepthCm != nil {
		target.Dimensions.DepthCm = input.DepthCm
	}
	return target.Validate()
}

func applyHamperBox(target *domain.HamperBox, input types.HamperBoxInput) error {
	if input.Name != nil {
		target.Name = *input.Name
	}
	if input.Description != nil {
		target.Description = *input.Description
	}
	if input.Size != nil {
		size, err := domain.ParseHamperSize(*input.Size)
		if err != nil {
			return err
		}
		target.Size = size
	}
	if input.Price != nil {
		target.Price = *input.Price
	}
	if input.MaxItems != nil {
		target.MaxItems = *input.MaxItems
	}
	if input.ImageURL != nil {
		target.ImageURL = *input.ImageURL
	}
	if input.LengthCm != nil {
		target.LengthCm = input.LengthCm
	}
	if input.WidthCm != nil {
		target.WidthCm = input.WidthCm
	}
	if input.HeightCm != nil {
		target.HeightCm = input.HeightCm
	}
	if input.GridRows != nil {
		target.GridRows = input.GridRows
	}
	if input.GridCols != nil {
		target.GridCols = input.GridCols
	}
	if input.Active != nil {
		target.Active = *input.Active
	}
	return target.Validate()
}

var _ ports.Service = (*Service)(nil)
