package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	catalog "github.com/Apurer/gifting-api/internal/domains/catalog/domain"
)

// ArrangementCharge is the flat fee for having a hamper arranged.
var ArrangementCharge = decimal.NewFromInt(100)

// NewOrderItem snapshots the product price. The customization charge applies only when the
// product is customizable and the customer supplied customization data.
func NewOrderItem(product *catalog.Product, quantity int, customization json.RawMessage) (OrderItem, error) {
	if quantity <= 0 {
		return OrderItem{}, ErrInvalidQuantity
	}
	charge := decimal.Zero
	if product.Customizable && hasPayload(customization) {
		charge = product.CustomizationCharge
	}
	unit := product.Price
	return OrderItem{
		ProductID:           product.ID,
		ProductName:         product.Name,
		Quantity:            quantity,
		UnitPrice:           unit,
		CustomizationCharge: charge,
		LineTotal:           unit.Add(charge).Mul(decimal.NewFromInt(int64(quantity))),
		CustomizationData:   cloneRaw(customization),
	}, nil
}

// HamperRequest is the customer's hamper line before pricing.
type HamperRequest struct {
	HamperBoxID     int64
	WithArrangement bool
	HamperData      json.RawMessage
	HamperName      string
	Screenshot      string
}

// NewOrderHamper prices a hamper line. itemsTotal is the sum of current catalog prices of the
// items inside the box.
func NewOrderHamper(box *catalog.HamperBox, req HamperRequest, itemsTotal decimal.Decimal) OrderHamper {
	arrangement := decimal.Zero
	if req.WithArrangement {
		arrangement = ArrangementCharge
	}
	return OrderHamper{
		HamperBoxID:       box.ID,
		HamperBoxName:     box.Name,
		HamperBoxPrice:    box.Price,
		ItemsTotal:        itemsTotal,
		WithArrangement:   req.WithArrangement,
		ArrangementCharge: arrangement,
		LineTotal:         box.Price.Add(itemsTotal).Add(arrangement),
		HamperData:        cloneRaw(req.HamperData),
		HamperName:        req.HamperName,
		Screenshot:        req.Screenshot,
	}
}

func hasPayload(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	if !hasPayload(raw) {
		return nil
	}
	return append(json.RawMessage(nil), raw...)
}
