package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestProductValidate(t *testing.T) {
	base := func() *Product {
		return &Product{Name: "Mug", Price: decimal.RequireFromString("299.00"), Type: ProductTypeCustomisedItem, Active: true}
	}

	require.NoError(t, base().Validate())

	p := base()
	p.Name = "  "
	assert.ErrorIs(t, p.Validate(), ErrEmptyProductName)

	p = base()
	p.Price = decimal.RequireFromString("-1")
	assert.ErrorIs(t, p.Validate(), ErrNegativePrice)

	p = base()
	p.StockQuantity = intPtr(-1)
	assert.ErrorIs(t, p.Validate(), ErrNegativeStock)

	p = base()
	p.Type = "GADGET"
	assert.ErrorIs(t, p.Validate(), ErrInvalidProductType)

	p = base()
	p.CustomizationOptions = json.RawMessage(`[1,2]`)
	assert.ErrorIs(t, p.Validate(), ErrInvalidOptionsSchema)
}

func TestProductStock(t *testing.T) {
	p := &Product{}
	assert.True(t, p.HasUnlimitedStock())
	assert.True(t, p.HasStockFor(1_000_000))
	assert.Equal(t, -1, p.AvailableQuantity())

	p.StockQuantity = intPtr(3)
	assert.True(t, p.HasStockFor(3))
	assert.False(t, p.HasStockFor(4))
	assert.Equal(t, 3, p.AvailableQuantity())
}

func TestParseProductType(t *testing.T) {
	got, err := ParseProductType(" edible_item ")
	require.NoError(t, err)
	assert.Equal(t, ProductTypeEdibleItem, got)

	_, err = ParseProductType("toy")
	assert.ErrorIs(t, err, ErrInvalidProductType)
}

func TestParseCustomizationSchema(t *testing.T) {
	raw := json.RawMessage(`{"type":"frame","hasPhotoUpload":true,"options":[
		{"category":"Size","choices":[
			{"name":"4x6 inches","price":0,"width":10,"height":15},
			{"name":"8x10 inches","price":200,"width":20,"height":25}
		]}
	]}`)

	schema, err := ParseCustomizationSchema(raw)
	require.NoError(t, err)
	assert.Equal(t, "frame", schema.Type)
	assert.True(t, schema.HasPhotoUpload)
	require.Len(t, schema.Options, 1)
	require.Len(t, schema.Options[0].Choices, 2)

	choice, ok := schema.Choice("Size", "8x10 inches")
	require.True(t, ok)
	assert.True(t, choice.PriceDelta.Equal(decimal.NewFromInt(200)))
	assert.JSONEq(t, `20`, string(choice.Attributes["width"]))
	assert.NotContains(t, choice.Attributes, "name")

	_, ok = schema.Choice("Colour", "Red")
	assert.False(t, ok)

	encoded, err := json.Marshal(choice)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"8x10 inches","price":"200","width":20,"height":25}`, string(encoded))
}

func TestCategoryAndHamperBox(t *testing.T) {
	c, err := NewCategory("  Photo Memories ", "", "", 1)
	require.NoError(t, err)
	assert.Equal(t, "Photo Memories", c.Name)
	assert.True(t, c.Active)
	c.Deactivate()
	assert.False(t, c.Active)

	_, err = NewCategory("", "", "", 0)
	assert.ErrorIs(t, err, ErrEmptyCategoryName)

	box := &HamperBox{Name: "Classic", Size: "medium", Price: decimal.NewFromInt(499), MaxItems: 6}
	require.NoError(t, box.Validate())
	box.MaxItems = 0
	assert.ErrorIs(t, box.Validate(), ErrInvalidMaxItems)
	box.MaxItems = 6
	box.Size = "HUGE"
	assert.ErrorIs(t, box.Validate(), ErrInvalidHamperBox)
}
