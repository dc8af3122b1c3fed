package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"

	catalog "github.com/Apurer/gifting-api/internal/domains/catalog/domain"
	types "github.com/Apurer/gifting-api/internal/domains/orders/application/types"
	"github.com/Apurer/gifting-api/internal/domains/orders/domain"
	"github.com/Apurer/gifting-api/internal/domains/orders/ports"
)

// DefaultMaxAttempts bounds how often a conflicting order transaction is replayed.
const DefaultMaxAttempts = 5

// Service orchestrates order use cases.
type Service struct {
	repo        ports.Repository
	uow         ports.UnitOfWork
	numbers     *domain.OrderNumberGenerator
	dispatcher  ports.NotificationDispatcher
	cache       ports.CatalogCache
	logger      *slog.Logger
	maxAttempts int
}

type Option func(*Service)

// WithDispatcher sets where created orders are handed for notification.
func WithDispatcher(d ports.NotificationDispatcher) Option {
	return func(s *Service) { s.dispatcher = d }
}

// WithCatalogCache sets the cache to invalidate after stock changes.
func WithCatalogCache(c ports.CatalogCache) Option {
	return func(s *Service) { s.cache = c }
}

func WithOrderNumberGenerator(g *domain.OrderNumberGenerator) Option {
	return func(s *Service) {
		if g != nil {
			s.numbers = g
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMaxAttempts bounds transaction replays on conflicts and order-number collisions.
func WithMaxAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// NewService wires the order service.
func NewService(repo ports.Repository, uow ports.UnitOfWork, opts ...Option) *Service {
	s := &Service{
		repo:        repo,
		uow:         uow,
		numbers:     domain.NewOrderNumberGenerator(),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// CreateOrder validates, reserves stock, prices and persists an order in one unit of work, then
// hands it to the notification dispatcher. Dispatch problems never fail the call.
func (s *Service) CreateOrder(ctx context.Context, input types.CreateOrderInput) (*ports.OrderProjection, error) {
	if len(input.Items) == 0 && len(input.Hampers) == 0 {
		return nil, mapError(domain.ErrEmptyOrder)
	}
	method, err := domain.ParseDeliveryMethod(input.DeliveryMethod)
	if err != nil {
		return nil, mapError(err)
	}
	orderType, err := domain.ParseType(input.OrderType)
	if err != nil {
		return nil, mapError(err)
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, mapError(domain.ErrInvalidQuantity)
		}
	}

	var created *ports.OrderProjection
	for attempt := 1; ; attempt++ {
		err = s.uow.WithinTx(ctx, func(ctx context.Context, tx ports.OrderTx) error {
			order, err := s.assemble(ctx, tx, input, method, orderType)
			if err != nil {
				return err
			}
			created, err = tx.InsertOrder(ctx, order)
			return err
		})
		if err == nil {
			break
		}
		retryable := errors.Is(err, ports.ErrDuplicateOrderNumber) || errors.Is(err, ports.ErrTransactionConflict)
		if !retryable || attempt >= s.maxAttempts {
			return nil, mapError(err)
		}
		s.logger.LogAttrs(ctx, slog.LevelWarn, "retrying order transaction",
			slog.Int("attempt", attempt), slog.String("error", err.Error()))
	}

	if len(input.Items) > 0 && s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	s.notify(ctx, created)
	return created, nil
}

type hamperLine struct {
	input types.OrderHamperInput
	data  domain.HamperData
	err   error
}

func (s *Service) assemble(ctx context.Context, tx ports.OrderTx, input types.CreateOrderInput, method domain.DeliveryMethod, orderType domain.Type) (*domain.Order, error) {
	hampers := make([]hamperLine, 0, len(input.Hampers))
	ids := make([]int64, 0, len(input.Items))
	for _, item := range input.Items {
		ids = append(ids, item.ProductID)
	}
	for _, h := range input.Hampers {
		data, err := domain.ParseHamperData(h.HamperData)
		hampers = append(hampers, hamperLine{input: h, data: data, err: err})
		if err == nil {
			ids = append(ids, data.ProductIDs()...)
		}
	}

	products, err := tx.LockProducts(ctx, sortedUnique(ids))
	if err != nil {
		return nil, err
	}
	if err := validateLines(input.Items, products); err != nil {
		return nil, err
	}

	order := domain.NewOrder(
		domain.Customer{Name: input.CustomerName, Phone: input.CustomerPhone, Email: input.CustomerEmail},
		domain.Delivery{
			Address: input.DeliveryAddress,
			City:    input.City,
			State:   input.State,
			Pincode: input.Pincode,
			Date:    input.DeliveryDate,
			Method:  method,
		},
		orderType,
		input.SpecialInstructions,
	)

	for _, in := range input.Items {
		product := products[in.ProductID]
		if err := tx.DecrementStock(ctx, product, in.Quantity); err != nil {
			return nil, err
		}
		item, err := domain.NewOrderItem(product, in.Quantity, in.CustomizationData)
		if err != nil {
			return nil, err
		}
		order.AddItem(item)
	}

	for _, line := range hampers {
		box, err := tx.GetHamperBox(ctx, line.input.HamperBoxID)
		if err != nil {
			if errors.Is(err, ports.ErrHamperBoxNotFound) {
				return nil, hamperBoxNotFound(line.input.HamperBoxID)
			}
			return nil, err
		}
		if !box.Active {
			return nil, hamperBoxNotFound(line.input.HamperBoxID)
		}
		if line.err != nil {
			return nil, line.err
		}
		itemsTotal, err := hamperItemsTotal(line.data, products)
		if err != nil {
			return nil, err
		}
		order.AddHamper(domain.NewOrderHamper(box, domain.HamperRequest{
			HamperBoxID:     line.input.HamperBoxID,
			WithArrangement: line.input.WithArrangement,
			HamperData:      line.input.HamperData,
			HamperName:      line.input.HamperName,
			Screenshot:      line.input.Screenshot,
		}, itemsTotal))
	}

	number, err := s.numbers.Generate(ctx, tx.OrderNumberExists)
	if err != nil {
		return nil, err
	}
	order.OrderNumber = number
	return order, nil
}

// hamperItemsTotal sums current catalog prices of the items inside a hamper.
func hamperItemsTotal(data domain.HamperData, products map[int64]*catalog.Product) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, item := range data.Items {
		product, ok := products[item.ProductID]
		if !ok {
			return decimal.Zero, fmt.Errorf("%w: product %d not found", domain.ErrInvalidHamperData, item.ProductID)
		}
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total, nil
}

func (s *Service) notify(ctx context.Context, order *ports.OrderProjection) {
	if s.dispatcher == nil || order == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.LogAttrs(ctx, slog.LevelError, "order notification dispatch panicked",
				slog.String("order.number", order.Entity.OrderNumber), slog.Any("panic", r))
		}
	}()
	s.dispatcher.Dispatch(ctx, order)
}

// GetAll lists orders, newest first.
func (s *Service) GetAll(ctx context.Context) ([]*ports.OrderProjection, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*ports.OrderProjection, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByOrderNumber(ctx context.Context, number string) (*ports.OrderProjection, error) {
	return s.repo.GetByOrderNumber(ctx, number)
}

// GetByStatus lists orders in the given status, newest first.
func (s *Service) GetByStatus(ctx context.Context, status domain.Status) ([]*ports.OrderProjection, error) {
	parsed, err := domain.ParseStatus(string(status))
	if err != nil {
		return nil, mapError(err)
	}
	return s.repo.ListByStatus(ctx, parsed)
}

// UpdateStatus sets any known status; no transition graph is enforced.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status domain.Status) (*ports.OrderProjection, error) {
	parsed, err := domain.ParseStatus(string(status))
	if err != nil {
		return nil, mapError(err)
	}
	return s.repo.UpdateStatus(ctx, id, parsed)
}

func sortedUnique(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	sorted := append([]int64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	out := sorted[:1]
	for _, id := range sorted[1:] {
		if id != out[len(out)-1] {
			out = append(out, id)
		}
	}
	return out
}

var _ ports.Service = (*Service)(nil)
