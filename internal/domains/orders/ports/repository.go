package ports

import (
	"context"
	"errors"

	catalog "github.com/Apurer/gifting-api/internal/domains/catalog/domain"
	"github.com/Apurer/gifting-api/internal/domains/orders/domain"
	"github.com/Apurer/gifting-api/internal/shared/projection"
)

var (
	ErrNotFound             = errors.New("order not found")
	ErrProductNotFound      = errors.New("product not found")
	ErrHamperBoxNotFound    = errors.New("hamper box not found")
	ErrDuplicateOrderNumber = errors.New("order number already exists")
	ErrTransactionConflict  = errors.New("order transaction conflicted with a concurrent writer")
)

type OrderProjection = projection.Projection[*domain.Order]

// Repository reads and updates persisted orders.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*OrderProjection, error)
	GetByOrderNumber(ctx context.Context, number string) (*OrderProjection, error)
	List(ctx context.Context) ([]*OrderProjection, error)
	ListByStatus(ctx context.Context, status domain.Status) ([]*OrderProjection, error)
	UpdateStatus(ctx context.Context, id int64, status domain.Status) (*OrderProjection, error)
}

// OrderTx is the set of operations available inside one order-creation unit of work.
type OrderTx interface {
	// LockProducts returns the requested products, locked against concurrent stock changes
	// until the unit of work ends. Missing ids are omitted from the result.
	LockProducts(ctx context.Context, ids []int64) (map[int64]*catalog.Product, error)
	// GetHamperBox returns ErrHamperBoxNotFound for unknown ids.
	GetHamperBox(ctx context.Context, id int64) (*catalog.HamperBox, error)
	// DecrementStock takes quantity units from a product with tracked stock. It returns a
	// *domain.OutOfStockError and changes nothing when fewer units are available.
	DecrementStock(ctx context.Context, product *catalog.Product, quantity int) error
	OrderNumberExists(ctx context.Context, number string) (bool, error)
	// InsertOrder persists the order and its lines. It returns ErrDuplicateOrderNumber when the
	// number was taken concurrently.
	InsertOrder(ctx context.Context, order *domain.Order) (*OrderProjection, error)
}

// UnitOfWork runs fn atomically. Either every write made through tx is kept or none is.
// Implementations return ErrTransactionConflict for conflicts that a retry may resolve.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx OrderTx) error) error
}
