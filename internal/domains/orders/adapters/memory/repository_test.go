package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogmemory "github.com/Apurer/gifting-api/internal/domains/catalog/adapters/memory"
	catalog "github.com/Apurer/gifting-api/internal/domains/catalog/domain"
	"github.com/Apurer/gifting-api/internal/domains/orders/domain"
	"github.com/Apurer/gifting-api/internal/domains/orders/ports"
)

func seedStockedProduct(t *testing.T, store *catalogmemory.Store, stock int) int64 {
	t.Helper()
	saved, err := store.Products().Save(context.Background(), &catalog.Product{
		Name:          "Scented Candle",
		Price:         decimal.RequireFromString("120.00"),
		Type:          catalog.ProductTypeEdibleItem,
		StockQuantity: &stock,
		Active:        true,
	})
	require.NoError(t, err)
	return saved.Entity.ID
}

func currentStock(t *testing.T, store *catalogmemory.Store, id int64) int {
	t.Helper()
	p, err := store.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p.Entity.StockQuantity)
	return *p.Entity.StockQuantity
}

func TestWithinTx_CommitAppliesStockAndOrder(t *testing.T) {
	store := catalogmemory.NewStore()
	productID := seedStockedProduct(t, store, 5)
	repo := NewRepository(store)
	ctx := context.Background()

	err := repo.WithinTx(ctx, func(ctx context.Context, tx ports.OrderTx) error {
		products, err := tx.LockProducts(ctx, []int64{productID})
		if err != nil {
			return err
		}
		if err := tx.DecrementStock(ctx, products[productID], 2); err != nil {
			return err
		}
		order := domain.NewOrder(domain.Customer{Name: "Asha", Phone: "9876543210"}, domain.Delivery{Address: "12 MG Road"}, "", "")
		order.OrderNumber = "CHG-20260314-0000000A"
		_, err = tx.InsertOrder(ctx, order)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 3, currentStock(t, store, productID))

	stored, err := repo.GetByOrderNumber(ctx, "CHG-20260314-0000000A")
	require.NoError(t, err)
	assert.NotZero(t, stored.Entity.ID)
}

func TestWithinTx_DuplicateNumberAtCommitLeavesStock(t *testing.T) {
	store := catalogmemory.NewStore()
	productID := seedStockedProduct(t, store, 5)
	repo := NewRepository(store)
	ctx := context.Background()
	const number = "CHG-20260314-0000000B"

	err := repo.WithinTx(ctx, func(ctx context.Context, tx ports.OrderTx) error {
		products, err := tx.LockProducts(ctx, []int64{productID})
		if err != nil {
			return err
		}
		if err := tx.DecrementStock(ctx, products[productID], 4); err != nil {
			return err
		}
		order := domain.NewOrder(domain.Customer{Name: "Ravi", Phone: "9876543211"}, domain.Delivery{Address: "1 Park Street"}, "", "")
		order.OrderNumber = number
		if _, err := tx.InsertOrder(ctx, order); err != nil {
			return err
		}
		// another writer claims the number before commit
		repo.mu.Lock()
		repo.byNumber[number] = 999
		repo.mu.Unlock()
		return nil
	})
	require.ErrorIs(t, err, ports.ErrDuplicateOrderNumber)
	assert.Equal(t, 5, currentStock(t, store, productID))
}
