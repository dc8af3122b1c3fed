package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ProductType classifies catalog products.
type ProductType string

const (
	ProductTypeCustomisedItem   ProductType = "CUSTOMISED_ITEM"
	ProductTypeEdibleItem       ProductType = "EDIBLE_ITEM"
	ProductTypeHamperBox        ProductType = "HAMPER_BOX"
	ProductTypePredefinedHamper ProductType = "PREDEFINED_HAMPER"
)

var (
	ErrEmptyProductName     = errors.New("product name is required")
	ErrNegativePrice        = errors.New("price must be greater or equal to zero")
	ErrNegativeStock        = errors.New("stock quantity must be greater or equal to zero")
	ErrNegativeCharge       = errors.New("customization charge must be greater or equal to zero")
	ErrInvalidProductType   = errors.New("product type is invalid")
	ErrInvalidOptionsSchema = errors.New("customization options must be a JSON object")
)

// ParseProductType normalises and validates a product type name.
func ParseProductType(value string) (ProductType, error) {
	t := ProductType(strings.ToUpper(strings.TrimSpace(value)))
	if !t.Valid() {
		return "", ErrInvalidProductType
	}
	return t, nil
}

// Valid reports whether t is a known product type.
func (t ProductType) Valid() bool {
	switch t {
	case ProductTypeCustomisedItem, ProductTypeEdibleItem, ProductTypeHamperBox, ProductTypePredefinedHamper:
		return true
	default:
		return false
	}
}

// Dimensions are physical measurements in centimetres used by the 3D hamper builder.
type Dimensions struct {
	WidthCm  *decimal.Decimal
	HeightCm *decimal.Decimal
	DepthCm  *decimal.Decimal
}

// Product is a sellable catalog item. A nil StockQuantity means unlimited stock.
type Product struct {
	ID                   int64
	CategoryID           *int64
	CategoryName         string
	Name                 string
	Description          string
	Price                decimal.Decimal
	Type                 ProductType
	ImageURL             string
	Customizable         bool
	CustomizationCharge  decimal.Decimal
	StockQuantity        *int
	Active               bool
	CustomizationOptions json.RawMessage
	Specifications       json.RawMessage
	Dimensions           Dimensions
}

// Validate enforces the product invariants.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyProductName
	}
	if p.Price.IsNegative() {
		return ErrNegativePrice
	}
	if p.CustomizationCharge.IsNegative() {
		return ErrNegativeCharge
	}
	if p.StockQuantity != nil && *p.StockQuantity < 0 {
		return ErrNegativeStock
	}
	if !p.Type.Valid() {
		return ErrInvalidProductType
	}
	if hasDocument(p.CustomizationOptions) {
		if _, err := ParseCustomizationSchema(p.CustomizationOptions); err != nil {
			return err
		}
	}
	return nil
}

// HasUnlimitedStock reports whether stock is untracked for the product.
func (p *Product) HasUnlimitedStock() bool {
	return p.StockQuantity == nil
}

// HasStockFor reports whether quantity units can be taken from stock.
func (p *Product) HasStockFor(quantity int) bool {
	return p.StockQuantity == nil || *p.StockQuantity >= quantity
}

// AvailableQuantity returns the tracked stock, or -1 when stock is unlimited.
func (p *Product) AvailableQuantity() int {
	if p.StockQuantity == nil {
		return -1
	}
	return *p.StockQuantity
}

// Deactivate hides the product from the storefront and from checkout.
func (p *Product) Deactivate() {
	p.Active = false
}

// Schema returns the parsed customization option schema, or nil when none is configured.
func (p *Product) Schema() (*CustomizationSchema, error) {
	if !hasDocument(p.CustomizationOptions) {
		return nil, nil
	}
	return ParseCustomizationSchema(p.CustomizationOptions)
}

func hasDocument(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}
