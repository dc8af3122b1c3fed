package application

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	types "github.com/Apurer/gifting-api/internal/domains/catalog/application/types"
	"github.com/Apurer/gifting-api/internal/domains/catalog/domain"
	"github.com/Apurer/gifting-api/internal/domains/catalog/ports"
)

// CatalogWriter is the part of ports.Service the sample seed needs.
type CatalogWriter interface {
	ListCategories(ctx context.Context) ([]*ports.CategoryProjection, error)
	CreateCategory(ctx context.Context, input types.CategoryInput) (*ports.CategoryProjection, error)
	CreateProduct(ctx context.Context, input types.ProductInput) (*ports.ProductProjection, error)
}

type sampleProduct struct {
	name         string
	description  string
	price        string
	productType  domain.ProductType
	customizable bool
	charge       string
	stock        int
	options      string
}

type sampleCategory struct {
	name        string
	description string
	products    []sampleProduct
}

var sampleCatalog = []sampleCategory{
	{
		name:        "Photo & Memory Items",
		description: "Polaroids, photo frames, stands and scrapbooks",
		products: []sampleProduct{
			{
				name: "Polaroid Photo Prints", description: "Instant-style polaroid prints from your photos.",
				price: "199.00", productType: domain.ProductTypeCustomisedItem, customizable: true, charge: "0", stock: 200,
				options: `{"type":"polaroid","hasPhotoUpload":true,"options":[{"category":"Quantity","choices":[{"name":"9 Prints","quantity":9,"price":0},{"name":"18 Prints","quantity":18,"price":51},{"name":"36 Prints","quantity":36,"price":251}]}]}`,
			},
			{
				name: "Customised Photo Frame", description: "Wooden photo frame with custom engraving.",
				price: "499.00", productType: domain.ProductTypeCustomisedItem, customizable: true, charge: "150.00", stock: 80,
				options: `{"type":"frame","hasPhotoUpload":true,"options":[{"category":"Size","choices":[{"name":"4x6 inches","price":0},{"name":"5x7 inches","price":100},{"name":"8x10 inches","price":200}]}]}`,
			},
		},
	},
	{
		name:        "Personalised Gifts",
		description: "Caricatures, mugs, calendars and wish cards",
		products: []sampleProduct{
			{
				name: "Customised Photo Mug", description: "Ceramic mug printed with your photo.",
				price: "299.00", productType: domain.ProductTypeCustomisedItem, customizable: true, charge: "100.00", stock: 150,
				options: `{"type":"mug","hasPhotoUpload":true,"options":[{"category":"Type","choices":[{"name":"Individual Mug","price":0},{"name":"Couple Mugs (Set of 2)","price":200}]}]}`,
			},
		},
	},
	{
		name:        "Fashion & Accessories",
		description: "Jewellery, watches and fashion items",
		products: []sampleProduct{
			{name: "Jewellery Items", description: "Earrings, pendants and bracelets.", price: "599.00", productType: domain.ProductTypeCustomisedItem, charge: "0", stock: 60},
		},
	},
	{
		name:        "Edibles & Treats",
		description: "Chocolates, nuts and treats for every occasion",
		products: []sampleProduct{
			{
				name: "Premium Chocolates", description: "Handcrafted chocolates in a gift box.",
				price: "499.00", productType: domain.ProductTypeEdibleItem, customizable: true, charge: "0", stock: 150,
				options: `{"type":"chocolates","options":[{"category":"Type","choices":[{"name":"Milk Chocolate Box","price":0},{"name":"Dark Chocolate Box","price":100},{"name":"Truffle Collection","price":300}]}]}`,
			},
		},
	},
	{
		name:        "Home & Decor",
		description: "Clocks, candles, perfumes and plants",
		products: []sampleProduct{
			{name: "Scented Candles", description: "Scented candle in a glass jar, 40+ hours burn time.", price: "399.00", productType: domain.ProductTypeEdibleItem, charge: "0", stock: 100},
		},
	},
	{
		name:        "Gift Boxes",
		description: "Hamper boxes for custom gift sets",
		products: []sampleProduct{
			{name: "Hamper Boxes", description: "Pick a box and fill it with your favourite items.", price: "199.00", productType: domain.ProductTypeHamperBox, charge: "0", stock: 100},
		},
	},
}

// SeedSampleCatalog creates demo categories and products when no active category exists.
// It reports whether anything was written.
func SeedSampleCatalog(ctx context.Context, catalog CatalogWriter) (bool, error) {
	existing, err := catalog.ListCategories(ctx)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}
	active := true
	for i, c := range sampleCatalog {
		name, description, order := c.name, c.description, i+1
		category, err := catalog.CreateCategory(ctx, types.CategoryInput{
			Name: &name, Description: &description, DisplayOrder: &order, Active: &active,
		})
		if err != nil {
			return false, fmt.Errorf("seed category %q: %w", c.name, err)
		}
		categoryID := category.Entity.ID
		for _, p := range c.products {
			if _, err := catalog.CreateProduct(ctx, p.input(categoryID)); err != nil {
				return false, fmt.Errorf("seed product %q: %w", p.name, err)
			}
		}
	}
	return true, nil
}

func (p sampleProduct) input(categoryID int64) types.ProductInput {
	name, description, kind := p.name, p.description, string(p.productType)
	price := decimal.RequireFromString(p.price)
	charge := decimal.RequireFromString(p.charge)
	customizable, stock, active := p.customizable, p.stock, true
	input := types.ProductInput{
		Name:                &name,
		Description:         &description,
		Price:               &price,
		Type:                &kind,
		Customizable:        &customizable,
		CustomizationCharge: &charge,
		StockQuantity:       &stock,
		Active:              &active,
		CategoryID:          &categoryID,
	}
	if p.options != "" {
		input.CustomizationOptions = json.RawMessage(p.options)
	}
	return input
}
