package types

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// CreateOrderInput is a guest checkout request.
type CreateOrderInput struct {
	CustomerName        string
	CustomerPhone       string
	CustomerEmail       string
	DeliveryAddress     string
	DeliveryDate        *time.Time
	SpecialInstructions string
	DeliveryMethod      string
	OrderType           string
	City                string
	State               string
	Pincode             string
	Items               []OrderItemInput
	Hampers             []OrderHamperInput
}

// OrderItemInput is one requested product line. UnitPrice, when set, must equal the catalog price.
type OrderItemInput struct {
	ProductID         int64
	Quantity          int
	UnitPrice         *decimal.Decimal
	CustomizationData json.RawMessage
}

// OrderHamperInput is one requested hamper line.
type OrderHamperInput struct {
	HamperBoxID     int64
	WithArrangement bool
	HamperData      json.RawMessage
	HamperName      string
	Screenshot      string
}
