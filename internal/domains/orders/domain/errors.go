package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// OutOfStockError reports a line that asks for more units than the product has.
type OutOfStockError struct {
	ProductID         int64
	ProductName       string
	RequestedQuantity int
	AvailableQuantity int
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("Product '%s' (ID: %d) is out of stock. Requested: %d, Available: %d",
		e.ProductName, e.ProductID, e.RequestedQuantity, e.AvailableQuantity)
}

// PriceMismatchError reports a client unit price that differs from the catalog price.
type PriceMismatchError struct {
	ProductID   int64
	ProductName string
	ClientPrice decimal.Decimal
	ServerPrice decimal.Decimal
}

func (e *PriceMismatchError) Error() string {
	return fmt.Sprintf("Price mismatch for product '%s' (ID: %d). Client price: %s, Server price: %s",
		e.ProductName, e.ProductID, FormatPrice(e.ClientPrice), FormatPrice(e.ServerPrice))
}

// FormatPrice renders at least two decimals and never rounds away submitted precision.
func FormatPrice(value decimal.Decimal) string {
	if value.Exponent() < -2 {
		return value.String()
	}
	return value.StringFixed(2)
}
