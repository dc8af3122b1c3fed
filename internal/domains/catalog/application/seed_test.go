package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/gifting-api/internal/domains/catalog/ports"
)

func TestSeedSampleCatalog(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	seeded, err := SeedSampleCatalog(ctx, svc)
	require.NoError(t, err)
	assert.True(t, seeded)

	categories, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, len(sampleCatalog))
	assert.Equal(t, "Photo & Memory Items", categories[0].Entity.Name)

	products, err := svc.ListProducts(ctx, ports.ProductFilter{})
	require.NoError(t, err)
	want := 0
	for _, c := range sampleCatalog {
		want += len(c.products)
	}
	assert.Len(t, products, want)

	customizable, err := svc.ListProducts(ctx, ports.ProductFilter{CustomizableOnly: true})
	require.NoError(t, err)
	for _, p := range customizable {
		_, err := p.Entity.Schema()
		assert.NoError(t, err, p.Entity.Name)
	}

	again, err := SeedSampleCatalog(ctx, svc)
	require.NoError(t, err)
	assert.False(t, again)
	products, err = svc.ListProducts(ctx, ports.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, products, want)
}
