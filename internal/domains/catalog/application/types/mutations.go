package types

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// CategoryInput carries the writable category fields. Nil pointers keep the current value on update.
type CategoryInput struct {
	Name         *string
	Description  *string
	ImageURL     *string
	DisplayOrder *int
	Active       *bool
}

// ProductInput carries the writable product fields. Nil pointers keep the current value on update.
type ProductInput struct {
	Name                 *string
	Description          *string
	Price                *decimal.Decimal
	Type                 *string
	ImageURL             *string
	Customizable         *bool
	CustomizationCharge  *decimal.Decimal
	StockQuantity        *int
	ClearStock           bool
	Active               *bool
	CategoryID           *int64
	CustomizationOptions json.RawMessage
	Specifications       json.RawMessage
	WidthCm              *decimal.Decimal
	HeightCm             *decimal.Decimal
	DepthCm              *decimal.Decimal
}

// HamperBoxInput carries the writable hamper box fields. Nil pointers keep the current value on update.
type HamperBoxInput struct {
	Name        *string
	Description *string
	Size        *string
	Price       *decimal.Decimal
	MaxItems    *int
	ImageURL    *string
	LengthCm    *decimal.Decimal
	WidthCm     *decimal.Decimal
	HeightCm    *decimal.Decimal
	GridRows    *int
	GridCols    *int
	Active      *bool
}
