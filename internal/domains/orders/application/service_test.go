package application

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogmemory "github.com/Apurer/gifting-api/internal/domains/catalog/adapters/memory"
	catalog "github.com/Apurer/gifting-api/internal/domains/catalog/domain"
	ordermemory "github.com/Apurer/gifting-api/internal/domains/orders/adapters/memory"
	types "github.com/Apurer/gifting-api/internal/domains/orders/application/types"
	"github.com/Apurer/gifting-api/internal/domains/orders/domain"
	"github.com/Apurer/gifting-api/internal/domains/orders/ports"
)

type fixture struct {
	store    *catalogmemory.Store
	repo     *ordermemory.Repository
	products map[string]int64
	boxes    map[string]int64
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
func ptr[T any](v T) *T             { return &v }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := catalogmemory.NewStore()
	f := &fixture{store: store, repo: ordermemory.NewRepository(store), products: map[string]int64{}, boxes: map[string]int64{}}

	add := func(key string, p *catalog.Product) {
		p.Active = true
		saved, err := store.Products().Save(ctx, p)
		require.NoError(t, err)
		f.products[key] = saved.Entity.ID
	}
	add("truffles", &catalog.Product{Name: "Truffles", Price: dec("150.00"), Type: catalog.ProductTypeEdibleItem, StockQuantity: ptr(5)})
	add("mug", &catalog.Product{Name: "Photo Mug", Price: dec("299.00"), Type: catalog.ProductTypeCustomisedItem, Customizable: true, CustomizationCharge: dec("50.00")})
	add("candle", &catalog.Product{Name: "Candle", Price: dec("120.00"), Type: catalog.ProductTypeEdibleItem, StockQuantity: ptr(100)})
	add("retired", &catalog.Product{Name: "Retired", Price: dec("10.00"), Type: catalog.ProductTypeEdibleItem})

	retired, err := store.Products().GetByID(ctx, f.products["retired"])
	require.NoError(t, err)
	retired.Entity.Deactivate()
	_, err = store.Products().Save(ctx, retired.Entity)
	require.NoError(t, err)

	box, err := store.HamperBoxes().Save(ctx, &catalog.HamperBox{Name: "Classic", Size: catalog.HamperSizeMedium, Price: dec("499.00"), MaxItems: 6, Active: true})
	require.NoError(t, err)
	f.boxes["classic"] = box.Entity.ID
	return f
}

func (f *fixture) service(opts ...Option) *Service {
	return NewService(f.repo, f.repo, opts...)
}

func (f *fixture) stock(t *testing.T, key string) *int {
	t.Helper()
	p, err := f.store.Products().GetByID(context.Background(), f.products[key])
	require.NoError(t, err)
	return p.Entity.StockQuantity
}

func baseInput() types.CreateOrderInput {
	return types.CreateOrderInput{
		CustomerName:    "Asha",
		CustomerPhone:   "9876543210",
		DeliveryAddress: "12 MG Road",
		City:            "Bengaluru",
	}
}

func TestCreateOrder_StockScenario(t *testing.T) {
	f := newFixture(t)
	svc := f.service()
	ctx := context.Background()

	in := baseInput()
	in.Items = []types.OrderItemInput{{ProductID: f.products["truffles"], Quantity: 3}}

	created, err := svc.CreateOrder(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNew, created.Entity.Status)
	assert.True(t, created.Entity.TotalAmount.Equal(dec("450.00")))
	assert.Equal(t, 2, *f.stock(t, "truffles"))

	_, err = svc.CreateOrder(ctx, in)
	var oos *domain.OutOfStockError
	require.ErrorAs(t, err, &oos)
	assert.Equal(t, f.products["truffles"], oos.ProductID)
	assert.Equal(t, 3, oos.RequestedQuantity)
	assert.Equal(t, 2, oos.AvailableQuantity)
	assert.Equal(t, 2, *f.stock(t, "truffles"))
}

func TestCreateOrder_PriceMismatchLeavesStock(t *testing.T) {
	f := newFixture(t)
	svc := f.service()

	in := baseInput()
	in.Items = []types.OrderItemInput{
		{ProductID: f.products["candle"], Quantity: 1},
		{ProductID: f.products["truffles"], Quantity: 1, UnitPrice: ptr(dec("100.00"))},
	}
	_, err := svc.CreateOrder(context.Background(), in)

	var pm *domain.PriceMismatchError
	require.ErrorAs(t, err, &pm)
	assert.True(t, pm.ClientPrice.Equal(dec("100.00")))
	assert.True(t, pm.ServerPrice.Equal(dec("150.00")))
	assert.Equal(t, 5, *f.stock(t, "truffles"))
	assert.Equal(t, 100, *f.stock(t, "candle"))

	all, err := svc.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateOrder_MatchingClientPriceAccepted(t *testing.T) {
	f := newFixture(t)
	in := baseInput()
	in.Items = []types.OrderItemInput{{ProductID: f.products["truffles"], Quantity: 1, UnitPrice: ptr(dec("150"))}}
	_, err := f.service().CreateOrder(context.Background(), in)
	require.NoError(t, err)
}

func TestCreateOrder_EmptyOrder(t *testing.T) {
	f := newFixture(t)
	_, err := f.service().CreateOrder(context.Background(), baseInput())
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrEmptyOrder)
}

func TestCreateOrder_UnknownOrInactiveProduct(t *testing.T) {
	f := newFixture(t)
	svc := f.service()

	for _, id := range []int64{9999, f.products["retired"]} {
		in := baseInput()
		in.Items = []types.OrderItemInput{{ProductID: id, Quantity: 1}}
		_, err := svc.CreateOrder(context.Background(), in)
		var nf *NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "Product", nf.Resource)
		assert.Equal(t, id, nf.Identifier)
		assert.ErrorIs(t, err, ports.ErrProductNotFound)
	}
}

func TestCreateOrder_ItemTotalsAndCustomization(t *testing.T) {
	f := newFixture(t)
	in := baseInput()
	in.Items = []types.OrderItemInput{
		{ProductID: f.products["mug"], Quantity: 2, CustomizationData: json.RawMessage(`{"photo":"a.png"}`)},
		{ProductID: f.products["mug"], Quantity: 1},
	}
	created, err := f.service().CreateOrder(context.Background(), in)
	require.NoError(t, err)

	items := created.Entity.Items
	require.Len(t, items, 2)
	assert.True(t, items[0].LineTotal.Equal(dec("698.00")))
	assert.True(t, items[1].LineTotal.Equal(dec("299.00")))
	assert.True(t, created.Entity.TotalAmount.Equal(dec("997.00")))
	assert.Equal(t, "Photo Mug", items[0].ProductName)
	assert.Nil(t, f.stock(t, "mug"))
}

func TestCreateOrder_HamperTotals(t *testing.T) {
	f := newFixture(t)
	in := baseInput()
	in.OrderType = "HAMPER_ARRANGEMENT"
	data := json.RawMessage(`{"items":[{"productId":` + itoa(f.products["truffles"]) + `,"quantity":2},{"productId":` + itoa(f.products["candle"]) + `,"quantity":1}],"ribbon":"red"}`)
	in.Hampers = []types.OrderHamperInput{
		{HamperBoxID: f.boxes["classic"], WithArrangement: true, HamperData: data, HamperName: "Birthday"},
		{HamperBoxID: f.boxes["classic"], WithArrangement: false, HamperData: json.RawMessage(`{"theme":"plain"}`)},
	}

	created, err := f.service().CreateOrder(context.Background(), in)
	require.NoError(t, err)
	hampers := created.Entity.Hampers
	require.Len(t, hampers, 2)
	assert.True(t, hampers[0].ItemsTotal.Equal(dec("420.00")))
	assert.True(t, hampers[0].ArrangementCharge.Equal(dec("100")))
	assert.True(t, hampers[0].LineTotal.Equal(dec("1019.00")))
	assert.Equal(t, "Birthday", hampers[0].HamperName)
	assert.True(t, hampers[1].ItemsTotal.IsZero())
	assert.True(t, hampers[1].LineTotal.Equal(dec("499.00")))
	assert.True(t, created.Entity.TotalAmount.Equal(dec("1518.00")))
	assert.Equal(t, domain.TypeHamperArrangement, created.Entity.Type)
	assert.Equal(t, 5, *f.stock(t, "truffles"))
}

func TestCreateOrder_InvalidHamperData(t *testing.T) {
	f := newFixture(t)
	svc := f.service()
	for _, raw := range []string{`garbage`, `{"items":[{"productId":424242,"quantity":1}]}`, `{"items":[{"quantity":1}]}`} {
		in := baseInput()
		in.Items = []types.OrderItemInput{{ProductID: f.products["truffles"], Quantity: 1}}
		in.Hampers = []types.OrderHamperInput{{HamperBoxID: f.boxes["classic"], HamperData: json.RawMessage(raw)}}
		_, err := svc.CreateOrder(context.Background(), in)
		require.ErrorIs(t, err, ErrInvalidInput, raw)
		require.ErrorIs(t, err, domain.ErrInvalidHamperData, raw)
	}
	assert.Equal(t, 5, *f.stock(t, "truffles"))
}

func TestCreateOrder_UnknownHamperBox(t *testing.T) {
	f := newFixture(t)
	in := baseInput()
	in.Hampers = []types.OrderHamperInput{{HamperBoxID: 77, HamperData: json.RawMessage(`{}`)}}
	_, err := f.service().CreateOrder(context.Background(), in)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "HamperBox", nf.Resource)
}

func TestCreateOrder_RoundTripAndIdempotentReads(t *testing.T) {
	f := newFixture(t)
	svc := f.service()
	ctx := context.Background()

	in := baseInput()
	in.DeliveryMethod = "COURIER_DELIVERY"
	in.Items = []types.OrderItemInput{{ProductID: f.products["candle"], Quantity: 4}}
	in.Hampers = []types.OrderHamperInput{{HamperBoxID: f.boxes["classic"], WithArrangement: true, HamperData: json.RawMessage(`{"items":[]}`)}}

	created, err := svc.CreateOrder(ctx, in)
	require.NoError(t, err)
	assert.Regexp(t, `^CHG-\d{8}-[0-9A-F]{8}$`, created.Entity.OrderNumber)

	byNumber, err := svc.GetByOrderNumber(ctx, created.Entity.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, created.Entity.Items, byNumber.Entity.Items)
	assert.Equal(t, created.Entity.Hampers, byNumber.Entity.Hampers)
	assert.True(t, created.Entity.TotalAmount.Equal(byNumber.Entity.TotalAmount))
	assert.Equal(t, domain.DeliveryCourier, byNumber.Entity.Delivery.Method)

	first, err := svc.GetByID(ctx, created.Entity.ID)
	require.NoError(t, err)
	second, err := svc.GetByID(ctx, created.Entity.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	_, err = svc.GetByOrderNumber(ctx, "CHG-19700101-NOPE0000")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestCreateOrder_ConcurrentStockInvariant(t *testing.T) {
	f := newFixture(t)
	svc := f.service()

	const requests = 20
	var (
		wg         sync.WaitGroup
		succeeded  atomic.Int32
		outOfStock atomic.Int32
	)
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			in := baseInput()
			in.Items = []types.OrderItemInput{{ProductID: f.products["truffles"], Quantity: 2}}
			_, err := svc.CreateOrder(context.Background(), in)
			var oos *domain.OutOfStockError
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.As(err, &oos):
				outOfStock.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(2), succeeded.Load())
	assert.Equal(t, int32(requests-2), outOfStock.Load())
	assert.Equal(t, 1, *f.stock(t, "truffles"))
}

func TestCreateOrder_ConcurrentOrderNumbersUnique(t *testing.T) {
	f := newFixture(t)
	svc := f.service()

	const requests = 50
	var wg sync.WaitGroup
	numbers := make(chan string, requests)
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			in := baseInput()
			in.Items = []types.OrderItemInput{{ProductID: f.products["mug"], Quantity: 1}}
			created, err := svc.CreateOrder(context.Background(), in)
			if err != nil {
				t.Error(err)
				return
			}
			numbers <- created.Entity.OrderNumber
		}()
	}
	wg.Wait()
	close(numbers)

	seen := map[string]struct{}{}
	for n := range numbers {
		_, dup := seen[n]
		require.False(t, dup, "duplicate order number %s", n)
		seen[n] = struct{}{}
	}
	assert.Len(t, seen, requests)
}

type collidingUnitOfWork struct {
	inner    ports.UnitOfWork
	failures int
	calls    int
}

func (c *collidingUnitOfWork) WithinTx(ctx context.Context, fn func(context.Context, ports.OrderTx) error) error {
	c.calls++
	if c.calls <= c.failures {
		return ports.ErrDuplicateOrderNumber
	}
	return c.inner.WithinTx(ctx, fn)
}

func TestCreateOrder_RetriesOnCollision(t *testing.T) {
	f := newFixture(t)
	uow := &collidingUnitOfWork{inner: f.repo, failures: 2}
	svc := NewService(f.repo, uow, WithMaxAttempts(3))

	in := baseInput()
	in.Items = []types.OrderItemInput{{ProductID: f.products["candle"], Quantity: 1}}
	_, err := svc.CreateOrder(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 3, uow.calls)

	exhausted := NewService(f.repo, &collidingUnitOfWork{inner: f.repo, failures: 5}, WithMaxAttempts(2))
	_, err = exhausted.CreateOrder(context.Background(), in)
	require.ErrorIs(t, err, ports.ErrDuplicateOrderNumber)
}

type recordingDispatcher struct {
	mu     sync.Mutex
	orders []string
	panics bool
}

func (d *recordingDispatcher) Dispatch(_ context.Context, order *ports.OrderProjection) {
	d.mu.Lock()
	d.orders = append(d.orders, order.Entity.OrderNumber)
	d.mu.Unlock()
	if d.panics {
		panic("channel exploded")
	}
}

type recordingCache struct{ invalidations int }

func (c *recordingCache) Invalidate(context.Context) { c.invalidations++ }

func TestCreateOrder_NotificationIsBestEffort(t *testing.T) {
	f := newFixture(t)
	dispatcher := &recordingDispatcher{panics: true}
	cache := &recordingCache{}
	svc := f.service(WithDispatcher(dispatcher), WithCatalogCache(cache))

	in := baseInput()
	in.Items = []types.OrderItemInput{{ProductID: f.products["candle"], Quantity: 1}}
	created, err := svc.CreateOrder(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, []string{created.Entity.OrderNumber}, dispatcher.orders)
	assert.Equal(t, 1, cache.invalidations)

	stored, err := svc.GetByID(context.Background(), created.Entity.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Entity.OrderNumber, stored.Entity.OrderNumber)
}

func TestUpdateStatusAndListings(t *testing.T) {
	f := newFixture(t)
	svc := f.service()
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 3; i++ {
		in := baseInput()
		in.Items = []types.OrderItemInput{{ProductID: f.products["candle"], Quantity: 1}}
		created, err := svc.CreateOrder(ctx, in)
		require.NoError(t, err)
		ids = append(ids, created.Entity.ID)
	}

	all, err := svc.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ids[2], all[0].Entity.ID)
	assert.Equal(t, ids[0], all[2].Entity.ID)

	updated, err := svc.UpdateStatus(ctx, ids[1], "confirmed")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, updated.Entity.Status)

	confirmed, err := svc.GetByStatus(ctx, domain.StatusConfirmed)
	require.NoError(t, err)
	require.Len(t, confirmed, 1)
	assert.Equal(t, ids[1], confirmed[0].Entity.ID)

	_, err = svc.UpdateStatus(ctx, ids[0], "SHIPPED")
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.UpdateStatus(ctx, 999, domain.StatusDelivered)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func itoa(v int64) string {
	return decimal.NewFromInt(v).String()
}
