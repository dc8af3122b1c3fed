package mapper

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	catalogtypes "github.com/Apurer/gifting-api/internal/domains/catalog/application/types"
	"github.com/Apurer/gifting-api/internal/domains/catalog/domain"
	"github.com/Apurer/gifting-api/internal/domains/catalog/ports"
)

// Category is the HTTP representation of a storefront category.
type Category struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	ImageURL     string    `json:"imageUrl,omitempty"`
	DisplayOrder int       `json:"displayOrder"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// MutationCategory captures create/update payloads while preserving field presence.
type MutationCategory struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	ImageURL     *string `json:"imageUrl"`
	DisplayOrder *int    `json:"displayOrder"`
	Active       *bool   `json:"active"`
}

// Product is the HTTP representation of a catalog product. Money is rendered with two decimals.
type Product struct {
	ID                         int64                       `json:"id"`
	Name                       string                      `json:"name"`
	Description                string                      `json:"description,omitempty"`
	Price                      json.Number                 `json:"price"`
	ProductType                string                      `json:"productType"`
	ImageURL                   string                      `json:"imageUrl,omitempty"`
	Customizable               bool                        `json:"isCustomizable"`
	CustomizationCharge        json.Number                 `json:"customizationCharge"`
	StockQuantity              *int                        `json:"stockQuantity"`
	Active                     bool                        `json:"active"`
	CategoryID                 *int64                      `json:"categoryId,omitempty"`
	CategoryName               string                      `json:"categoryName,omitempty"`
	CustomizationOptions       json.RawMessage             `json:"customizationOptions,omitempty"`
	CustomizationOptionsParsed *domain.CustomizationSchema `json:"customizationOptionsParsed,omitempty"`
	Specifications             json.RawMessage             `json:"specifications,omitempty"`
	WidthCm                    *json.Number                `json:"widthCm,omitempty"`
	HeightCm                   *json.Number                `json:"heightCm,omitempty"`
	DepthCm                    *json.Number                `json:"depthCm,omitempty"`
	CreatedAt                  time.Time                   `json:"createdAt"`
	UpdatedAt                  time.Time                   `json:"updatedAt"`
}

// MutationProduct captures product create/update payloads. A JSON null stockQuantity clears tracking.
type MutationProduct struct {
	Name                 *string          `json:"name"`
	Description          *string          `json:"description"`
	Price                *decimal.Decimal `json:"price"`
	ProductType          *string          `json:"productType"`
	ImageURL             *string          `json:"imageUrl"`
	Customizable         *bool            `json:"isCustomizable"`
	CustomizationCharge  *decimal.Decimal `json:"customizationCharge"`
	StockQuantity        json.RawMessage  `json:"stockQuantity"`
	Active               *bool            `json:"active"`
	CategoryID           *int64           `json:"categoryId"`
	CustomizationOptions json.RawMessage  `json:"customizationOptions"`
	Specifications       json.RawMessage  `json:"specifications"`
	WidthCm              *decimal.Decimal `json:"widthCm"`
	HeightCm             *decimal.Decimal `json:"heightCm"`
	DepthCm              *decimal.Decimal `json:"depthCm"`
}

// HamperBox is the HTTP representation of a hamper box.
type HamperBox struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Size        string       `json:"size"`
	Price       json.Number  `json:"price"`
	MaxItems    int          `json:"maxItems"`
	ImageURL    string       `json:"imageUrl,omitempty"`
	Active      bool         `json:"active"`
	LengthCm    *json.Number `json:"lengthCm,omitempty"`
	WidthCm     *json.Number `json:"widthCm,omitempty"`
	HeightCm    *json.Number `json:"heightCm,omitempty"`
	GridRows    *int         `json:"gridRows,omitempty"`
	GridCols    *int         `json:"gridCols,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// MutationHamperBox captures hamper box create/update payloads.
type MutationHamperBox struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Size        *string          `json:"size"`
	Price       *decimal.Decimal `json:"price"`
	MaxItems    *int             `json:"maxItems"`
	ImageURL    *string          `json:"imageUrl"`
	LengthCm    *decimal.Decimal `json:"lengthCm"`
	WidthCm     *decimal.Decimal `json:"widthCm"`
	HeightCm    *decimal.Decimal `json:"heightCm"`
	GridRows    *int             `json:"gridRows"`
	GridCols    *int             `json:"gridCols"`
	Active      *bool            `json:"active"`
}

// Amount renders money with exactly two decimals as a JSON number.
func Amount(value decimal.Decimal) json.Number {
	return json.Number(value.StringFixed(2))
}

func optionalAmount(value *decimal.Decimal) *json.Number {
	if value == nil {
		return nil
	}
	n := Amount(*value)
	return &n
}

// FromCategoryProjection maps a stored category into its transport shape.
func FromCategoryProjection(p *ports.CategoryProjection) Category {
	c := p.Entity
	return Category{
		ID:           c.ID,
		Name:         c.Name,
		Description:  c.Description,
		ImageURL:     c.ImageURL,
		DisplayOrder: c.DisplayOrder,
		Active:       c.Active,
		CreatedAt:    p.Metadata.CreatedAt,
		UpdatedAt:    p.Metadata.UpdatedAt,
	}
}

func FromCategoryProjectionList(list []*ports.CategoryProjection) []Category {
	out := make([]Category, 0, len(list))
	for _, p := range list {
		out = append(out, FromCategoryProjection(p))
	}
	return out
}

// ToCategoryInput converts a mutation payload into an application input.
func ToCategoryInput(m MutationCategory) catalogtypes.CategoryInput {
	return catalogtypes.CategoryInput{
		Name:         m.Name,
		Description:  m.Description,
		ImageURL:     m.ImageURL,
		DisplayOrder: m.DisplayOrder,
		Active:       m.Active,
	}
}

// FromProductProjection maps a stored product. The parsed option schema is attached only on request
// and only when the stored document parses.
func FromProductProjection(p *ports.ProductProjection, withSchema bool) Product {
	product := p.Entity
	out := Product{
		ID:                   product.ID,
		Name:                 product.Name,
		Description:          product.Description,
		Price:                Amount(product.Price),
		ProductType:          string(product.Type),
		ImageURL:             product.ImageURL,
		Customizable:         product.Customizable,
		CustomizationCharge:  Amount(product.CustomizationCharge),
		StockQuantity:        product.StockQuantity,
		Active:               product.Active,
		CategoryID:           product.CategoryID,
		CategoryName:         product.CategoryName,
		CustomizationOptions: product.CustomizationOptions,
		Specifications:       product.Specifications,
		WidthCm:              optionalAmount(product.Dimensions.WidthCm),
		HeightCm:             optionalAmount(product.Dimensions.HeightCm),
		DepthCm:              optionalAmount(product.Dimensions.DepthCm),
		CreatedAt:            p.Metadata.CreatedAt,
		UpdatedAt:            p.Metadata.UpdatedAt,
	}
	if withSchema {
		if schema, err := product.Schema(); err == nil {
			out.CustomizationOptionsParsed = schema
		}
	}
	return out
}

func FromProductProjectionList(list []*ports.ProductProjection) []Product {
	out := make([]Product, 0, len(list))
	for _, p := range list {
		out = append(out, FromProductProjection(p, false))
	}
	return out
}

// ToProductInput converts a mutation payload. It fails only when stockQuantity is not an integer.
func ToProductInput(m MutationProduct) (catalogtypes.ProductInput, error) {
	input := catalogtypes.ProductInput{
		Name:                 m.Name,
		Description:          m.Description,
		Price:                m.Price,
		Type:                 m.ProductType,
		ImageURL:             m.ImageURL,
		Customizable:         m.Customizable,
		CustomizationCharge:  m.CustomizationCharge,
		Active:               m.Active,
		CategoryID:           m.CategoryID,
		CustomizationOptions: m.CustomizationOptions,
		Specifications:       m.Specifications,
		WidthCm:              m.WidthCm,
		HeightCm:             m.HeightCm,
		DepthCm:              m.DepthCm,
	}
	if len(m.StockQuantity) > 0 {
		if string(m.StockQuantity) == "null" {
			input.ClearStock = true
		} else {
			var stock int
			if err := json.Unmarshal(m.StockQuantity, &stock); err != nil {
				return catalogtypes.ProductInput{}, err
			}
			input.StockQuantity = &stock
		}
	}
	return input, nil
}

// FromHamperBoxProjection maps a stored hamper box into its transport shape.
func FromHamperBoxProjection(p *ports.HamperBoxProjection) HamperBox {
	box := p.Entity
	return HamperBox{
		ID:          box.ID,
		Name:        box.Name,
		Description: box.Description,
		Size:        string(box.Size),
		Price:       Amount(box.Price),
		MaxItems:    box.MaxItems,
		ImageURL:    box.ImageURL,
		Active:      box.Active,
		LengthCm:    optionalAmount(box.LengthCm),
		WidthCm:     optionalAmount(box.WidthCm),
		HeightCm:    optionalAmount(box.HeightCm),
		GridRows:    box.GridRows,
		GridCols:    box.GridCols,
		CreatedAt:   p.Metadata.CreatedAt,
		UpdatedAt:   p.Metadata.UpdatedAt,
	}
}

func FromHamperBoxProjectionList(list []*ports.HamperBoxProjection) []HamperBox {
	out := make([]HamperBox, 0, len(list))
	for _, p := range list {
		out = append(out, FromHamperBoxProjection(p))
	}
	return out
}

// ToHamperBoxInput converts a mutation payload into an application input.
func ToHamperBoxInput(m MutationHamperBox) catalogtypes.HamperBoxInput {
	return catalogtypes.HamperBoxInput{
		Name:        m.Name,
		Description: m.Description,
		Size:        m.Size,
		Price:       m.Price,
		MaxItems:    m.MaxItems,
		ImageURL:    m.ImageURL,
		LengthCm:    m.LengthCm,
		WidthCm:     m.WidthCm,
		HeightCm:    m.HeightCm,
		GridRows:    m.GridRows,
		GridCols:    m.GridCols,
		Active:      m.Active,
	}
}
