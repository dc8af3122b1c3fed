package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	catalogmemory "github.com/Apurer/gifting-api/internal/domains/catalog/adapters/memory"
	catalog "github.com/Apurer/gifting-api/internal/domains/catalog/domain"
	"github.com/Apurer/gifting-api/internal/domains/orders/domain"
	"github.com/Apurer/gifting-api/internal/domains/orders/ports"
	"github.com/Apurer/gifting-api/internal/shared/projection"
)

var (
	_ ports.Repository = (*Repository)(nil)
	_ ports.UnitOfWork = (*Repository)(nil)
)

// Repository keeps orders in memory and runs order units of work against an in-memory catalog.
// Units of work are serialized by the catalog lock; staged stock changes apply on commit only.
type Repository struct {
	mu       sync.RWMutex
	catalog  *catalogmemory.Store
	orders   map[int64]*storedOrder
	byNumber map[string]int64
	nextID   int64
	nextLine int64
	now      func() time.Time
}

type storedOrder struct {
	order    *domain.Order
	metadata projection.Metadata
}

// NewRepository builds an order store bound to the given catalog.
func NewRepository(catalogStore *catalogmemory.Store) *Repository {
	return &Repository{
		catalog:  catalogStore,
		orders:   map[int64]*storedOrder{},
		byNumber: map[string]int64{},
		now:      time.Now,
	}
}

// WithClock overrides the clock used for metadata timestamps.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

// WithinTx runs fn while holding the catalog lock. Stock decrements and the order insert are
// staged and applied together only when fn succeeds.
func (r *Repository) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.OrderTx) error) error {
	return r.catalog.Exclusive(func(inv catalogmemory.Inventory) error {
		tx := &unitOfWork{repo: r, inv: inv, stock: map[int64]int{}}
		if err := fn(ctx, tx); err != nil {
			return err
		}
		return tx.commit()
	})
}

type unitOfWork struct {
	repo    *Repository
	inv     catalogmemory.Inventory
	stock   map[int64]int
	pending *domain.Order
	result  *ports.OrderProjection
}

func (u *unitOfWork) LockProducts(_ context.Context, ids []int64) (map[int64]*catalog.Product, error) {
	products := make(map[int64]*catalog.Product, len(ids))
	for _, id := range ids {
		p, ok := u.inv.Product(id)
		if !ok {
			continue
		}
		if staged, ok := u.stock[id]; ok {
			q := staged
			p.StockQuantity = &q
		}
		products[id] = p
	}
	return products, nil
}

func (u *unitOfWork) GetHamperBox(_ context.Context, id int64) (*catalog.HamperBox, error) {
	box, ok := u.inv.HamperBox(id)
	if !ok {
		return nil, ports.ErrHamperBoxNotFound
	}
	return box, nil
}

func (u *unitOfWork) DecrementStock(_ context.Context, product *catalog.Product, quantity int) error {
	current, ok := u.inv.Product(product.ID)
	if !ok {
		return ports.ErrProductNotFound
	}
	if current.StockQuantity == nil {
		return nil
	}
	available := *current.StockQuantity
	if staged, ok := u.stock[product.ID]; ok {
		available = staged
	}
	if available < quantity {
		return &domain.OutOfStockError{
			ProductID:         product.ID,
			ProductName:       current.Name,
			RequestedQuantity: quantity,
			AvailableQuantity: available,
		}
	}
	remaining := available - quantity
	u.stock[product.ID] = remaining
	product.StockQuantity = &remaining
	return nil
}

func (u *unitOfWork) OrderNumberExists(_ context.Context, number string) (bool, error) {
	u.repo.mu.RLock()
	defer u.repo.mu.RUnlock()
	_, ok := u.repo.byNumber[number]
	return ok, nil
}

// InsertOrder stages the order. The returned projection carries the id it will have on commit.
func (u *unitOfWork) InsertOrder(_ context.Context, order *domain.Order) (*ports.OrderProjection, error) {
	r := u.repo
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byNumber[order.OrderNumber]; taken {
		return nil, ports.ErrDuplicateOrderNumber
	}
	if u.pending != nil {
		return nil, ports.ErrTransactionConflict
	}
	clone := cloneOrder(order)
	clone.ID = r.nextID + 1
	for i := range clone.Items {
		clone.Items[i].ID = r.nextLine + int64(i) + 1
	}
	for i := range clone.Hampers {
		clone.Hampers[i].ID = r.nextLine + int64(len(clone.Items)+i) + 1
	}
	ts := r.now()
	u.pending = clone
	u.result = &ports.OrderProjection{Entity: cloneOrder(clone), Metadata: projection.Metadata{CreatedAt: ts, UpdatedAt: ts}}
	return u.result, nil
}

// commit publishes the staged order and stock together. A taken order number leaves stock untouched.
func (u *unitOfWork) commit() error {
	r := u.repo
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.pending != nil {
		if _, taken := r.byNumber[u.pending.OrderNumber]; taken {
			return ports.ErrDuplicateOrderNumber
		}
	}
	for id, qty := range u.stock {
		u.inv.SetStock(id, qty)
	}
	if u.pending == nil {
		return nil
	}
	r.nextID = u.pending.ID
	r.nextLine += int64(len(u.pending.Items) + len(u.pending.Hampers))
	r.orders[u.pending.ID] = &storedOrder{order: u.pending, metadata: u.result.Metadata}
	r.byNumber[u.pending.OrderNumber] = u.pending.ID
	return nil
}

func (r *Repository) GetByID(_ context.Context, id int64) (*ports.OrderProjection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return entry.projection(), nil
}

func (r *Repository) GetByOrderNumber(_ context.Context, number string) (*ports.OrderProjection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byNumber[number]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return r.orders[id].projection(), nil
}

// List returns all orders, newest first.
func (r *Repository) List(_ context.Context) ([]*ports.OrderProjection, error) {
	return r.filter(func(*domain.Order) bool { return true }), nil
}

// ListByStatus returns orders in status, newest first.
func (r *Repository) ListByStatus(_ context.Context, status domain.Status) ([]*ports.OrderProjection, error) {
	return r.filter(func(o *domain.Order) bool { return o.Status == status }), nil
}

func (r *Repository) UpdateStatus(_ context.Context, id int64, status domain.Status) (*ports.OrderProjection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if err := entry.order.UpdateStatus(status); err != nil {
		return nil, err
	}
	entry.metadata.UpdatedAt = r.now()
	return entry.projection(), nil
}

func (r *Repository) filter(keep func(*domain.Order) bool) []*ports.OrderProjection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*ports.OrderProjection, 0, len(r.orders))
	for _, entry := range r.orders {
		if keep(entry.order) {
			list = append(list, entry.projection())
		}
	}
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if !a.Metadata.CreatedAt.Equal(b.Metadata.CreatedAt) {
			return a.Metadata.CreatedAt.After(b.Metadata.CreatedAt)
		}
		return a.Entity.ID > b.Entity.ID
	})
	return list
}

func (s *storedOrder) projection() *ports.OrderProjection {
	return &ports.OrderProjection{Entity: cloneOrder(s.order), Metadata: s.metadata}
}

func cloneOrder(o *domain.Order) *domain.Order {
	clone := *o
	if o.Delivery.Date != nil {
		d := *o.Delivery.Date
		clone.Delivery.Date = &d
	}
	clone.Items = make([]domain.OrderItem, len(o.Items))
	for i, item := range o.Items {
		item.CustomizationData = cloneRaw(item.CustomizationData)
		clone.Items[i] = item
	}
	clone.Hampers = make([]domain.OrderHamper, len(o.Hampers))
	for i, h := range o.Hampers {
		h.HamperData = cloneRaw(h.HamperData)
		clone.Hampers[i] = h
	}
	return &clone
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	return append(json.RawMessage(nil), raw...)
}
