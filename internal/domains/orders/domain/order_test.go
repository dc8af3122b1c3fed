package domain

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalog "github.com/Apurer/gifting-api/internal/domains/catalog/domain"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestNewOrderItem_Totals(t *testing.T) {
	mug := &catalog.Product{ID: 7, Name: "Photo Mug", Price: dec("299.00"), Customizable: true, CustomizationCharge: dec("50.00")}

	plain, err := NewOrderItem(mug, 2, nil)
	require.NoError(t, err)
	assert.True(t, plain.CustomizationCharge.IsZero())
	assert.True(t, plain.LineTotal.Equal(dec("598.00")))

	custom, err := NewOrderItem(mug, 3, json.RawMessage(`{"text":"Happy Birthday"}`))
	require.NoError(t, err)
	assert.True(t, custom.CustomizationCharge.Equal(dec("50.00")))
	assert.True(t, custom.LineTotal.Equal(dec("1047.00")))
	assert.JSONEq(t, `{"text":"Happy Birthday"}`, string(custom.CustomizationData))

	fixed := &catalog.Product{ID: 8, Name: "Truffles", Price: dec("250.00"), CustomizationCharge: dec("40.00")}
	ignored, err := NewOrderItem(fixed, 1, json.RawMessage(`{"note":"x"}`))
	require.NoError(t, err)
	assert.True(t, ignored.LineTotal.Equal(dec("250.00")))

	_, err = NewOrderItem(fixed, 0, nil)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestNewOrderHamper_Totals(t *testing.T) {
	box := &catalog.HamperBox{ID: 3, Name: "Classic", Price: dec("499.00")}

	arranged := NewOrderHamper(box, HamperRequest{HamperBoxID: 3, WithArrangement: true}, dec("600.00"))
	assert.True(t, arranged.ArrangementCharge.Equal(dec("100")))
	assert.True(t, arranged.LineTotal.Equal(dec("1199.00")))

	plain := NewOrderHamper(box, HamperRequest{HamperBoxID: 3}, dec("600.00"))
	assert.True(t, plain.ArrangementCharge.IsZero())
	assert.True(t, plain.LineTotal.Equal(dec("1099.00")))
}

func TestOrderTotalsAndStatus(t *testing.T) {
	order := NewOrder(Customer{Name: "Asha", Phone: "9876543210"}, Delivery{Address: "12 MG Road"}, "", "")
	assert.Equal(t, StatusNew, order.Status)
	assert.Equal(t, DeliveryDirect, order.Delivery.Method)
	assert.Equal(t, TypeDirectPurchase, order.Type)

	order.AddItem(OrderItem{LineTotal: dec("598.00")})
	order.AddHamper(OrderHamper{LineTotal: dec("1199.00")})
	assert.True(t, order.TotalAmount.Equal(dec("1797.00")))
	assert.True(t, order.Recalculate().Equal(dec("1797.00")))

	require.NoError(t, order.UpdateStatus("delivered"))
	assert.Equal(t, StatusDelivered, order.Status)
	require.NoError(t, order.UpdateStatus(StatusNew))
	assert.ErrorIs(t, order.UpdateStatus("SHIPPED"), ErrInvalidStatus)
}

func TestParseEnums(t *testing.T) {
	m, err := ParseDeliveryMethod("courier_delivery")
	require.NoError(t, err)
	assert.Equal(t, DeliveryCourier, m)
	_, err = ParseDeliveryMethod("drone")
	assert.ErrorIs(t, err, ErrInvalidDeliveryMethod)

	ty, err := ParseType("")
	require.NoError(t, err)
	assert.Equal(t, TypeDirectPurchase, ty)
	_, err = ParseType("gift")
	assert.ErrorIs(t, err, ErrInvalidOrderType)
}

func TestParseHamperData(t *testing.T) {
	data, err := ParseHamperData(json.RawMessage(`{"items":[{"productId":1,"quantity":2,"x":10},{"productId":4,"quantity":1}],"theme":"gold"}`))
	require.NoError(t, err)
	assert.Equal(t, []HamperItem{{ProductID: 1, Quantity: 2}, {ProductID: 4, Quantity: 1}}, data.Items)
	assert.Equal(t, []int64{1, 4}, data.ProductIDs())

	quoted, err := ParseHamperData(json.RawMessage(`"{\"items\":[{\"productId\":9,\"quantity\":3}]}"`))
	require.NoError(t, err)
	assert.Equal(t, []HamperItem{{ProductID: 9, Quantity: 3}}, quoted.Items)

	loose, err := ParseHamperData(json.RawMessage(`{"items":[{"productId":"7","quantity":2.0},{"productId":8.0,"quantity":"3"}]}`))
	require.NoError(t, err)
	assert.Equal(t, []HamperItem{{ProductID: 7, Quantity: 2}, {ProductID: 8, Quantity: 3}}, loose.Items)

	empty, err := ParseHamperData(json.RawMessage(`{"theme":"gold"}`))
	require.NoError(t, err)
	assert.Empty(t, empty.Items)

	for _, raw := range []string{`not json`, `[1,2]`, `{"items":[{"quantity":1}]}`, `{"items":[{"productId":1}]}`, `{"items":[{"productId":"a","quantity":1}]}`, `{"items":[{"productId":1,"quantity":1.5}]}`, `{"items":[{"productId":1,"quantity":"two"}]}`, `{"items":[{"productId":1,"quantity":null}]}`, ``} {
		_, err := ParseHamperData(json.RawMessage(raw))
		assert.ErrorIs(t, err, ErrInvalidHamperData, raw)
	}
}

func TestErrorMessages(t *testing.T) {
	oos := &OutOfStockError{ProductID: 5, ProductName: "Truffles", RequestedQuantity: 3, AvailableQuantity: 2}
	assert.Equal(t, "Product 'Truffles' (ID: 5) is out of stock. Requested: 3, Available: 2", oos.Error())

	pm := &PriceMismatchError{ProductID: 5, ProductName: "Truffles", ClientPrice: dec("100"), ServerPrice: dec("150")}
	assert.Equal(t, "Price mismatch for product 'Truffles' (ID: 5). Client price: 100.00, Server price: 150.00", pm.Error())

	subCent := &PriceMismatchError{ProductID: 5, ProductName: "Truffles", ClientPrice: dec("150.001"), ServerPrice: dec("150.00")}
	assert.Equal(t, "Price mismatch for product 'Truffles' (ID: 5). Client price: 150.001, Server price: 150.00", subCent.Error())
}

var orderNumberPattern = regexp.MustCompile(`^CHG-\d{8}-[0-9A-F]{8}$`)

func TestOrderNumberGenerator_Format(t *testing.T) {
	gen := NewOrderNumberGenerator().WithClock(func() time.Time { return time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC) })
	number, err := gen.Generate(context.Background(), nil)
	require.NoError(t, err)
	assert.Regexp(t, orderNumberPattern, number)
	assert.Contains(t, number, "-20240309-")
}

func TestOrderNumberGenerator_RetriesThenFallsBack(t *testing.T) {
	gen := NewOrderNumberGenerator().WithSuffixSource(func() string { return "AAAAAAAA" })
	calls := 0
	number, err := gen.Generate(context.Background(), func(context.Context, string) (bool, error) {
		calls++
		return true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 10, calls)
	assert.Regexp(t, `^CHG-\d{8}-\d{1,8}$`, number)

	boom := errors.New("db down")
	_, err = gen.Generate(context.Background(), func(context.Context, string) (bool, error) { return false, boom })
	assert.ErrorIs(t, err, boom)
}

func TestOrderNumberGenerator_ConcurrentUnique(t *testing.T) {
	gen := NewOrderNumberGenerator()
	var (
		mu     sync.Mutex
		issued = map[string]struct{}{}
		wg     sync.WaitGroup
	)
	exists := func(_ context.Context, n string) (bool, error) {
		mu.Lock()
		defer mu.Unlock()
		_, ok := issued[n]
		return ok, nil
	}
	const workers, perWorker = 16, 250
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				n, err := gen.Generate(context.Background(), exists)
				if err != nil {
					t.Error(err)
					return
				}
				mu.Lock()
				if _, dup := issued[n]; dup {
					t.Errorf("duplicate order number %s", n)
				}
				issued[n] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, issued, workers*perWorker)
}
