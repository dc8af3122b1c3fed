package domain

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// CustomizationSchema is the option tree a customizable product offers, e.g. sizes or print counts.
type CustomizationSchema struct {
	Type           string                `json:"type,omitempty"`
	HasPhotoUpload bool                  `json:"hasPhotoUpload,omitempty"`
	HasEngraving   bool                  `json:"hasEngraving,omitempty"`
	PricePerUnit   *decimal.Decimal      `json:"pricePerUnit,omitempty"`
	Options        []CustomizationOption `json:"options"`
}

// CustomizationOption is one category of choices (Size, Quantity, Flavour...).
type CustomizationOption struct {
	Category string                `json:"category"`
	Choices  []CustomizationChoice `json:"choices"`
}

// CustomizationChoice is a selectable value with a price delta. Fields other than
// name and price are kept in Attributes.
type CustomizationChoice struct {
	Name       string
	PriceDelta decimal.Decimal
	Attributes map[string]json.RawMessage
}

// MarshalJSON flattens attributes back next to name and price.
func (c CustomizationChoice) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Attributes)+2)
	for k, v := range c.Attributes {
		out[k] = v
	}
	out["name"] = c.Name
	out["price"] = c.PriceDelta
	return json.Marshal(out)
}

// UnmarshalJSON reads name and price and keeps every other key verbatim.
func (c *CustomizationChoice) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if v, ok := raw["name"]; ok {
		if err := json.Unmarshal(v, &c.Name); err != nil {
			return fmt.Errorf("choice name: %w", err)
		}
		delete(raw, "name")
	}
	c.PriceDelta = decimal.Zero
	if v, ok := raw["price"]; ok {
		if string(v) != "null" {
			if err := c.PriceDelta.UnmarshalJSON(v); err != nil {
				return fmt.Errorf("choice price: %w", err)
			}
		}
		delete(raw, "price")
	}
	if len(raw) > 0 {
		c.Attributes = raw
	}
	return nil
}

// ParseCustomizationSchema decodes a product's customization options document.
func ParseCustomizationSchema(raw json.RawMessage) (*CustomizationSchema, error) {
	var schema CustomizationSchema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOptionsSchema, err)
	}
	return &schema, nil
}

// Choice looks up a choice by category and name.
func (s *CustomizationSchema) Choice(category, name string) (CustomizationChoice, bool) {
	if s == nil {
		return CustomizationChoice{}, false
	}
	for _, opt := range s.Options {
		if opt.Category != category {
			continue
		}
		for _, ch := range opt.Choices {
			if ch.Name == name {
				return ch, true
			}
		}
	}
	return CustomizationChoice{}, false
}
