package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Apurer/gifting-api/internal/domains/catalog/domain"
	"github.com/Apurer/gifting-api/internal/domains/catalog/ports"
	"github.com/Apurer/gifting-api/internal/shared/projection"
)

var (
	_ ports.CategoryRepository  = (*CategoryRepository)(nil)
	_ ports.ProductRepository   = (*ProductRepository)(nil)
	_ ports.HamperBoxRepository = (*HamperBoxRepository)(nil)
)

// Store is an in-memory catalog shared by the category, product and hamper box repositories.
type Store struct {
	mu         sync.RWMutex
	categories map[int64]*stored[domain.Category]
	products   map[int64]*stored[domain.Product]
	boxes      map[int64]*stored[domain.HamperBox]
	nextID     int64
	now        func() time.Time
}

type stored[T any] struct {
	entity   T
	metadata projection.Metadata
}

// NewStore constructs an empty catalog.
func NewStore() *Store {
	return &Store{
		categories: map[int64]*stored[domain.Category]{},
		products:   map[int64]*stored[domain.Product]{},
		boxes:      map[int64]*stored[domain.HamperBox]{},
		now:        time.Now,
	}
}

// WithClock overrides the clock used for metadata timestamps.
func (s *Store) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *Store) Categories() *CategoryRepository   { return &CategoryRepository{store: s} }
func (s *Store) Products() *ProductRepository      { return &ProductRepository{store: s} }
func (s *Store) HamperBoxes() *HamperBoxRepository { return &HamperBoxRepository{store: s} }

// Inventory is a view of the products and boxes that is only valid inside Exclusive.
type Inventory struct {
	store *Store
}

// Exclusive runs fn while holding the catalog write lock.
func (s *Store) Exclusive(fn func(inv Inventory) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(Inventory{store: s})
}

// Product returns a copy of the product with the given id.
func (i Inventory) Product(id int64) (*domain.Product, bool) {
	entry, ok := i.store.products[id]
	if !ok {
		return nil, false
	}
	return cloneProduct(&entry.entity), true
}

// HamperBox returns a copy of the hamper box with the given id.
func (i Inventory) HamperBox(id int64) (*domain.HamperBox, bool) {
	entry, ok := i.store.boxes[id]
	if !ok {
		return nil, false
	}
	box := entry.entity
	return &box, true
}

// SetStock overwrites the tracked stock of a product.
func (i Inventory) SetStock(id int64, quantity int) {
	entry, ok := i.store.products[id]
	if !ok || entry.entity.StockQuantity == nil {
		return
	}
	q := quantity
	entry.entity.StockQuantity = &q
	entry.metadata.UpdatedAt = i.store.now()
}

func (s *Store) allocateID(id int64) int64 {
	if id == 0 {
		s.nextID++
		return s.nextID
	}
	if id > s.nextID {
		s.nextID = id
	}
	return id
}

func (s *Store) metadataFor(existing *projection.Metadata) projection.Metadata {
	if existing == nil {
		return projection.Metadata{}.Touch(s.now())
	}
	return existing.Touch(s.now())
}

// CategoryRepository persists categories in the shared store.
type CategoryRepository struct {
	store *Store
}

func (r *CategoryRepository) Save(_ context.Context, category *domain.Category) (*ports.CategoryProjection, error) {
	if category == nil {
		return nil, errors.New("cannot save nil category")
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, other := range s.categories {
		if id != category.ID && strings.EqualFold(other.entity.Name, category.Name) {
			return nil, ports.ErrDuplicateCategory
		}
	}
	var existing *projection.Metadata
	if entry, ok := s.categories[category.ID]; ok && category.ID != 0 {
		existing = &entry.metadata
	}
	clone := *category
	clone.ID = s.allocateID(clone.ID)
	entry := &stored[domain.Category]{entity: clone, metadata: s.metadataFor(existing)}
	s.categories[clone.ID] = entry
	category.ID = clone.ID
	return categoryProjection(entry), nil
}

func (r *CategoryRepository) GetByID(_ context.Context, id int64) (*ports.CategoryProjection, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.categories[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return categoryProjection(entry), nil
}

func (r *CategoryRepository) ListActive(_ context.Context) ([]*ports.CategoryProjection, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]*ports.CategoryProjection, 0, len(s.categories))
	for _, entry := range s.categories {
		if entry.entity.Active {
			list = append(list, categoryProjection(entry))
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Entity.DisplayOrder != list[j].Entity.DisplayOrder {
			return list[i].Entity.DisplayOrder < list[j].Entity.DisplayOrder
		}
		return list[i].Entity.ID < list[j].Entity.ID
	})
	return list, nil
}

// ProductRepository persists products in the shared store.
type ProductRepository struct {
	store *Store
}

func (r *ProductRepository) Save(_ context.Context, product *domain.Product) (*ports.ProductProjection, error) {
	if product == nil {
		return nil, errors.New("cannot save nil product")
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var existing *projection.Metadata
	if entry, ok := s.products[product.ID]; ok && product.ID != 0 {
		existing = &entry.metadata
	}
	clone := cloneProduct(product)
	clone.ID = s.allocateID(clone.ID)
	if clone.CategoryID != nil {
		if cat, ok := s.categories[*clone.CategoryID]; ok {
			clone.CategoryName = cat.entity.Name
		}
	}
	entry := &stored[domain.Product]{entity: *clone, metadata: s.metadataFor(existing)}
	s.products[clone.ID] = entry
	product.ID = clone.ID
	return productProjection(entry), nil
}

func (r *ProductRepository) GetByID(_ context.Context, id int64) (*ports.ProductProjection, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.products[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return productProjection(entry), nil
}

// GetByIDs returns the products that exist among ids, in ascending id order.
func (r *ProductRepository) GetByIDs(_ context.Context, ids []int64) ([]*ports.ProductProjection, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]*ports.ProductProjection, 0, len(ids))
	seen := map[int64]struct{}{}
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if entry, ok := s.products[id]; ok {
			list = append(list, productProjection(entry))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Entity.ID < list[j].Entity.ID })
	return list, nil
}

func (r *ProductRepository) ListActive(_ context.Context, filter ports.ProductFilter) ([]*ports.ProductProjection, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]*ports.ProductProjection, 0, len(s.products))
	for _, entry := range s.products {
		p := &entry.entity
		if !p.Active {
			continue
		}
		if filter.CategoryID != nil && (p.CategoryID == nil || *p.CategoryID != *filter.CategoryID) {
			continue
		}
		if filter.Type != nil && p.Type != *filter.Type {
			continue
		}
		if filter.CustomizableOnly && !p.Customizable {
			continue
		}
		list = append(list, productProjection(entry))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Entity.ID < list[j].Entity.ID })
	return list, nil
}

// HamperBoxRepository persists hamper boxes in the shared store.
type HamperBoxRepository struct {
	store *Store
}

func (r *HamperBoxRepository) Save(_ context.Context, box *domain.HamperBox) (*ports.HamperBoxProjection, error) {
	if box == nil {
		return nil, errors.New("cannot save nil hamper box")
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var existing *projection.Metadata
	if entry, ok := s.boxes[box.ID]; ok && box.ID != 0 {
		existing = &entry.metadata
	}
	clone := *box
	clone.ID = s.allocateID(clone.ID)
	entry := &stored[domain.HamperBox]{entity: clone, metadata: s.metadataFor(existing)}
	s.boxes[clone.ID] = entry
	box.ID = clone.ID
	return hamperBoxProjection(entry), nil
}

func (r *HamperBoxRepository) GetByID(_ context.Context, id int64) (*ports.HamperBoxProjection, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.boxes[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return hamperBoxProjection(entry), nil
}

func (r *HamperBoxRepository) ListActive(_ context.Context) ([]*ports.HamperBoxProjection, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]*ports.HamperBoxProjection, 0, len(s.boxes))
	for _, entry := range s.boxes {
		if entry.entity.Active {
			list = append(list, hamperBoxProjection(entry))
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if c := list[i].Entity.Price.Cmp(list[j].Entity.Price); c != 0 {
			return c < 0
		}
		return list[i].Entity.ID < list[j].Entity.ID
	})
	return list, nil
}

func categoryProjection(entry *stored[domain.Category]) *ports.CategoryProjection {
	c := entry.entity
	return &ports.CategoryProjection{Entity: &c, Metadata: entry.metadata}
}

func productProjection(entry *stored[domain.Product]) *ports.ProductProjection {
	return &ports.ProductProjection{Entity: cloneProduct(&entry.entity), Metadata: entry.metadata}
}

func hamperBoxProjection(entry *stored[domain.HamperBox]) *ports.HamperBoxProjection {
	b := entry.entity
	return &ports.HamperBoxProjection{Entity: &b, Metadata: entry.metadata}
}

func cloneProduct(p *domain.Product) *domain.Product {
	clone := *p
	if p.StockQuantity != nil {
		q := *p.StockQuantity
		clone.StockQuantity = &q
	}
	if p.CategoryID != nil {
		id := *p.CategoryID
		clone.CategoryID = &id
	}
	if p.CustomizationOptions != nil {
		clone.CustomizationOptions = append([]byte(nil), p.CustomizationOptions...)
	}
	if p.Specifications != nil {
		clone.Specifications = append([]byte(nil), p.Specifications...)
	}
	return &clone
}
