package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// ErrInvalidHamperData is returned when a hamper document cannot be priced.
var ErrInvalidHamperData = errors.New("invalid hamper data format")

// HamperItem is one catalog product placed inside a hamper.
type HamperItem struct {
	ProductID int64
	Quantity  int
}

// HamperData is the part of the hamper document needed for pricing. Everything else in the
// document (layout, colours, positions) is kept opaque.
type HamperData struct {
	Items []HamperItem
}

// ParseHamperData reads the items array of a hamper document. The document may also arrive as a
// JSON string holding the document. A missing items array yields no items.
func ParseHamperData(raw json.RawMessage) (HamperData, error) {
	doc := bytes.TrimSpace(raw)
	if len(doc) > 0 && doc[0] == '"' {
		var inner string
		if err := json.Unmarshal(doc, &inner); err != nil {
			return HamperData{}, ErrInvalidHamperData
		}
		doc = bytes.TrimSpace([]byte(inner))
	}
	var envelope struct {
		Items json.RawMessage `json:"items"`
	}
	if len(doc) == 0 || doc[0] != '{' {
		return HamperData{}, ErrInvalidHamperData
	}
	if err := json.Unmarshal(doc, &envelope); err != nil {
		return HamperData{}, ErrInvalidHamperData
	}
	items := bytes.TrimSpace(envelope.Items)
	if len(items) == 0 || items[0] != '[' {
		return HamperData{}, nil
	}
	var parsed []struct {
		ProductID *wholeNumber `json:"productId"`
		Quantity  *wholeNumber `json:"quantity"`
	}
	if err := json.Unmarshal(items, &parsed); err != nil {
		return HamperData{}, ErrInvalidHamperData
	}
	data := HamperData{Items: make([]HamperItem, 0, len(parsed))}
	for _, item := range parsed {
		if item.ProductID == nil || item.Quantity == nil || *item.Quantity < 0 || *item.Quantity > math.MaxInt32 {
			return HamperData{}, ErrInvalidHamperData
		}
		data.Items = append(data.Items, HamperItem{ProductID: int64(*item.ProductID), Quantity: int(*item.Quantity)})
	}
	return data, nil
}

// wholeNumber accepts 2, 2.0 and "2". Fractions and non-numeric strings are rejected.
type wholeNumber int64

func (n *wholeNumber) UnmarshalJSON(b []byte) error {
	text := string(bytes.TrimSpace(b))
	if len(text) > 0 && text[0] == '"' {
		if err := json.Unmarshal(b, &text); err != nil {
			return err
		}
	}
	value, err := decimal.NewFromString(text)
	if err != nil || !value.IsInteger() {
		return ErrInvalidHamperData
	}
	if value.GreaterThan(decimal.NewFromInt(math.MaxInt64)) || value.LessThan(decimal.NewFromInt(math.MinInt64)) {
		return ErrInvalidHamperData
	}
	*n = wholeNumber(value.IntPart())
	return nil
}

// ProductIDs lists the distinct product ids referenced by the hamper.
func (h HamperData) ProductIDs() []int64 {
	seen := make(map[int64]struct{}, len(h.Items))
	ids := make([]int64, 0, len(h.Items))
	for _, item := range h.Items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}
