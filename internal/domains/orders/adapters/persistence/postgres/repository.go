package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	catalogpg "github.com/Apurer/gifting-api/internal/domains/catalog/adapters/persistence/postgres"
	catalog "github.com/Apurer/gifting-api/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/gifting-api/internal/domains/catalog/ports"
	"github.com/Apurer/gifting-api/internal/domains/orders/domain"
	"github.com/Apurer/gifting-api/internal/domains/orders/ports"
	pgplatform "github.com/Apurer/gifting-api/internal/platform/postgres"
	"github.com/Apurer/gifting-api/internal/shared/projection"
)

const orderNumberIndex = "idx_orders_order_number"

var (
	_ ports.Repository = (*Repository)(nil)
	_ ports.UnitOfWork = (*Repository)(nil)
)

// Repository persists orders in PostgreSQL. Order creation locks product rows instead of relying on
// serializable isolation.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. The caller owns the DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type orderRecord struct {
	ID                  int64               `gorm:"primaryKey;column:id"`
	OrderNumber         string              `gorm:"column:order_number;size:50;not null;uniqueIndex:idx_orders_order_number"`
	CustomerName        string              `gorm:"column:customer_name;size:200;not null"`
	CustomerPhone       string              `gorm:"column:customer_phone;size:20;not null"`
	CustomerEmail       string              `gorm:"column:customer_email;size:200"`
	DeliveryAddress     string              `gorm:"column:delivery_address;size:1000;not null"`
	DeliveryDate        *time.Time          `gorm:"column:delivery_date"`
	SpecialInstructions string              `gorm:"column:special_instructions;size:1000"`
	TotalAmount         decimal.Decimal     `gorm:"column:total_amount;type:numeric(12,2);not null"`
	Status              string              `gorm:"column:status;size:50;not null;index"`
	DeliveryMethod      string              `gorm:"column:delivery_method;size:50"`
	OrderType           string              `gorm:"column:order_type;size:50"`
	City                string              `gorm:"column:city;size:100"`
	State               string              `gorm:"column:state;size:100"`
	Pincode             string              `gorm:"column:pincode;size:20"`
	Items               []orderItemRecord   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Hampers             []orderHamperRecord `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt           time.Time           `gorm:"column:created_at;index"`
	UpdatedAt           time.Time           `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

type orderItemRecord struct {
	ID                  int64           `gorm:"primaryKey;column:id"`
	OrderID             int64           `gorm:"column:order_id;not null;index"`
	ProductID           int64           `gorm:"column:product_id;not null;index"`
	ProductName         string          `gorm:"column:product_name;size:255;not null"`
	Quantity            int             `gorm:"column:quantity;not null"`
	UnitPrice           decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	CustomizationCharge decimal.Decimal `gorm:"column:customization_charge;type:numeric(12,2);not null"`
	TotalPrice          decimal.Decimal `gorm:"column:total_price;type:numeric(12,2);not null"`
	CustomizationData   datatypes.JSON  `gorm:"column:customization_data"`
}

func (orderItemRecord) TableName() string { return "order_items" }

type orderHamperRecord struct {
	ID                int64           `gorm:"primaryKey;column:id"`
	OrderID           int64           `gorm:"column:order_id;not null;index"`
	HamperBoxID       int64           `gorm:"column:hamper_box_id;not null;index"`
	HamperBoxName     string          `gorm:"column:hamper_box_name;size:255;not null"`
	HamperBoxPrice    decimal.Decimal `gorm:"column:hamper_box_price;type:numeric(12,2);not null"`
	ItemsTotal        decimal.Decimal `gorm:"column:items_total;type:numeric(12,2);not null"`
	TotalPrice        decimal.Decimal `gorm:"column:total_price;type:numeric(12,2);not null"`
	WithArrangement   bool            `gorm:"column:with_arrangement;not null"`
	ArrangementCharge decimal.Decimal `gorm:"column:arrangement_charge;type:numeric(12,2);not null"`
	HamperData        datatypes.JSON  `gorm:"column:hamper_data;not null"`
	HamperName        string          `gorm:"column:hamper_name;size:255"`
	Screenshot        string          `gorm:"column:screenshot;type:text"`
}

func (orderHamperRecord) TableName() string { return "order_hampers" }

// Models lists the order tables for schema migration.
func Models() []any {
	return []any{&orderRecord{}, &orderItemRecord{}, &orderHamperRecord{}}
}

// WithinTx runs fn in a READ COMMITTED transaction. Stock safety comes from LockProducts taking
// row locks in id order, the conditional decrement and the unique order-number index. A waiter on
// a locked product row re-reads the committed stock, so concurrent orders queue rather than abort.
// Deadlocks and serialization failures are still reported as ports.ErrTransactionConflict.
func (r *Repository) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.OrderTx) error) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &orderTx{db: tx})
	}, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil && pgplatform.IsRetryable(err) {
		return fmt.Errorf("%w: %w", ports.ErrTransactionConflict, err)
	}
	return err
}

type orderTx struct {
	db *gorm.DB
}

func (t *orderTx) LockProducts(ctx context.Context, ids []int64) (map[int64]*catalog.Product, error) {
	products, err := catalogpg.LockProducts(ctx, t.db, ids)
	if err != nil {
		return nil, err
	}
	result := make(map[int64]*catalog.Product, len(products))
	for _, p := range products {
		result[p.ID] = p
	}
	return result, nil
}

func (t *orderTx) GetHamperBox(ctx context.Context, id int64) (*catalog.HamperBox, error) {
	box, err := catalogpg.FindHamperBox(ctx, t.db, id)
	if errors.Is(err, catalogports.ErrNotFound) {
		return nil, ports.ErrHamperBoxNotFound
	}
	return box, err
}

// DecrementStock issues a conditional UPDATE on a row already locked by LockProducts.
func (t *orderTx) DecrementStock(ctx context.Context, product *catalog.Product, quantity int) error {
	if product.StockQuantity == nil {
		return nil
	}
	ok, err := catalogpg.DecrementStock(ctx, t.db, product.ID, quantity)
	if err != nil {
		return err
	}
	if !ok {
		current, err := t.LockProducts(ctx, []int64{product.ID})
		if err != nil {
			return err
		}
		available := 0
		if p, found := current[product.ID]; found && p.StockQuantity != nil {
			available = *p.StockQuantity
		}
		return &domain.OutOfStockError{
			ProductID:         product.ID,
			ProductName:       product.Name,
			RequestedQuantity: quantity,
			AvailableQuantity: available,
		}
	}
	remaining := *product.StockQuantity - quantity
	product.StockQuantity = &remaining
	return nil
}

func (t *orderTx) OrderNumberExists(ctx context.Context, number string) (bool, error) {
	var count int64
	if err := t.db.WithContext(ctx).Model(&orderRecord{}).Where("order_number = ?", number).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (t *orderTx) InsertOrder(ctx context.Context, order *domain.Order) (*ports.OrderProjection, error) {
	record := newOrderRecord(order)
	if err := t.db.WithContext(ctx).Create(&record).Error; err != nil {
		if pgplatform.IsUniqueViolation(err, orderNumberIndex) {
			return nil, ports.ErrDuplicateOrderNumber
		}
		return nil, err
	}
	return record.toProjection(), nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*ports.OrderProjection, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *Repository) GetByOrderNumber(ctx context.Context, number string) (*ports.OrderProjection, error) {
	return r.first(ctx, "order_number = ?", number)
}

// List returns all orders, newest first.
func (r *Repository) List(ctx context.Context) ([]*ports.OrderProjection, error) {
	return r.find(ctx, r.db)
}

// ListByStatus returns orders in status, newest first.
func (r *Repository) ListByStatus(ctx context.Context, status domain.Status) ([]*ports.OrderProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	return r.find(ctx, r.db.Where("status = ?", string(status)))
}

func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.Status) (*ports.OrderProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	result := r.db.WithContext(ctx).Model(&orderRecord{}).Where("id = ?", id).
		Updates(map[string]any{"status": string(status), "updated_at": gorm.Expr("NOW()")})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *Repository) first(ctx context.Context, query string, arg any) (*ports.OrderProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Hampers", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where(query, arg).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toProjection(), nil
}

func (r *Repository) find(ctx context.Context, db *gorm.DB) ([]*ports.OrderProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []orderRecord
	if err := db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Hampers", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Order("created_at DESC, id DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	list := make([]*ports.OrderProjection, 0, len(records))
	for i := range records {
		list = append(list, records[i].toProjection())
	}
	return list, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func newOrderRecord(o *domain.Order) orderRecord {
	rec := orderRecord{
		OrderNumber:         o.OrderNumber,
		CustomerName:        o.Customer.Name,
		CustomerPhone:       o.Customer.Phone,
		CustomerEmail:       o.Customer.Email,
		DeliveryAddress:     o.Delivery.Address,
		DeliveryDate:        o.Delivery.Date,
		SpecialInstructions: o.SpecialInstructions,
		TotalAmount:         o.TotalAmount,
		Status:              string(o.Status),
		DeliveryMethod:      string(o.Delivery.Method),
		OrderType:           string(o.Type),
		City:                o.Delivery.City,
		State:               o.Delivery.State,
		Pincode:             o.Delivery.Pincode,
		Items:               make([]orderItemRecord, 0, len(o.Items)),
		Hampers:             make([]orderHamperRecord, 0, len(o.Hampers)),
	}
	for _, item := range o.Items {
		rec.Items = append(rec.Items, orderItemRecord{
			ProductID:           item.ProductID,
			ProductName:         item.ProductName,
			Quantity:            item.Quantity,
			UnitPrice:           item.UnitPrice,
			CustomizationCharge: item.CustomizationCharge,
			TotalPrice:          item.LineTotal,
			CustomizationData:   datatypes.JSON(item.CustomizationData),
		})
	}
	for _, h := range o.Hampers {
		rec.Hampers = append(rec.Hampers, orderHamperRecord{
			HamperBoxID:       h.HamperBoxID,
			HamperBoxName:     h.HamperBoxName,
			HamperBoxPrice:    h.HamperBoxPrice,
			ItemsTotal:        h.ItemsTotal,
			TotalPrice:        h.LineTotal,
			WithArrangement:   h.WithArrangement,
			ArrangementCharge: h.ArrangementCharge,
			HamperData:        hamperDocument(h.HamperData),
			HamperName:        h.HamperName,
			Screenshot:        h.Screenshot,
		})
	}
	return rec
}

// hamperDocument stores hamper data exactly as received; an absent document becomes {}.
func hamperDocument(raw []byte) datatypes.JSON {
	if len(raw) == 0 {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(raw)
}

func (r orderRecord) toProjection() *ports.OrderProjection {
	order := &domain.Order{
		ID:          r.ID,
		OrderNumber: r.OrderNumber,
		Customer:    domain.Customer{Name: r.CustomerName, Phone: r.CustomerPhone, Email: r.CustomerEmail},
		Delivery: domain.Delivery{
			Address: r.DeliveryAddress,
			City:    r.City,
			State:   r.State,
			Pincode: r.Pincode,
			Date:    r.DeliveryDate,
			Method:  domain.DeliveryMethod(r.DeliveryMethod),
		},
		Type:                domain.Type(r.OrderType),
		SpecialInstructions: r.SpecialInstructions,
		Status:              domain.Status(r.Status),
		TotalAmount:         r.TotalAmount,
		Items:               make([]domain.OrderItem, 0, len(r.Items)),
		Hampers:             make([]domain.OrderHamper, 0, len(r.Hampers)),
	}
	for _, item := range r.Items {
		order.Items = append(order.Items, domain.OrderItem{
			ID:                  item.ID,
			ProductID:           item.ProductID,
			ProductName:         item.ProductName,
			Quantity:            item.Quantity,
			UnitPrice:           item.UnitPrice,
			CustomizationCharge: item.CustomizationCharge,
			LineTotal:           item.TotalPrice,
			CustomizationData:   rawOrNil(item.CustomizationData),
		})
	}
	for _, h := range r.Hampers {
		order.Hampers = append(order.Hampers, domain.OrderHamper{
			ID:                h.ID,
			HamperBoxID:       h.HamperBoxID,
			HamperBoxName:     h.HamperBoxName,
			HamperBoxPrice:    h.HamperBoxPrice,
			ItemsTotal:        h.ItemsTotal,
			WithArrangement:   h.WithArrangement,
			ArrangementCharge: h.ArrangementCharge,
			LineTotal:         h.TotalPrice,
			HamperData:        rawOrNil(h.HamperData),
			HamperName:        h.HamperName,
			Screenshot:        h.Screenshot,
		})
	}
	return &ports.OrderProjection{
		Entity:   order,
		Metadata: projection.Metadata{CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt},
	}
}

func rawOrNil(doc datatypes.JSON) []byte {
	if len(doc) == 0 {
		return nil
	}
	return []byte(doc)
}
