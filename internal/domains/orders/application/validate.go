package application

import (
	catalog "github.com/Apurer/gifting-api/internal/domains/catalog/domain"
	types "github.com/Apurer/gifting-api/internal/domains/orders/application/types"
	"github.com/Apurer/gifting-api/internal/domains/orders/domain"
)

// validateLines checks every product line against the locked catalog rows before anything is
// written: the product must exist and be active, tracked stock must cover the line, and a
// client-supplied unit price must equal the catalog price exactly.
func validateLines(items []types.OrderItemInput, products map[int64]*catalog.Product) error {
	for _, item := range items {
		product, ok := products[item.ProductID]
		if !ok || !product.Active {
			return productNotFound(item.ProductID)
		}
		if !product.HasStockFor(item.Quantity) {
			return &domain.OutOfStockError{
				ProductID:         product.ID,
				ProductName:       product.Name,
				RequestedQuantity: item.Quantity,
				AvailableQuantity: product.AvailableQuantity(),
			}
		}
		if item.UnitPrice != nil && !item.UnitPrice.Equal(product.Price) {
			return &domain.PriceMismatchError{
				ProductID:   product.ID,
				ProductName: product.Name,
				ClientPrice: *item.UnitPrice,
				ServerPrice: product.Price,
			}
		}
	}
	return nil
}
