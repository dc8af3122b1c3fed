package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/gifting-api/internal/domains/catalog/domain"
	"github.com/Apurer/gifting-api/internal/domains/catalog/ports"
	pgplatform "github.com/Apurer/gifting-api/internal/platform/postgres"
	"github.com/Apurer/gifting-api/internal/shared/projection"
)

const (
	categoryNameIndex = "idx_categories_name"
	// StockNonNegativeCheck guards stock_quantity against going below zero.
	StockNonNegativeCheck = "chk_products_stock_non_negative"
)

var (
	_ ports.CategoryRepository  = (*CategoryRepository)(nil)
	_ ports.ProductRepository   = (*ProductRepository)(nil)
	_ ports.HamperBoxRepository = (*HamperBoxRepository)(nil)
)

type categoryRecord struct {
	ID           int64     `gorm:"primaryKey;column:id"`
	Name         string    `gorm:"column:name;size:255;not null;uniqueIndex:idx_categories_name"`
	Description  string    `gorm:"column:description;type:text"`
	ImageURL     string    `gorm:"column:image_url"`
	DisplayOrder int       `gorm:"column:display_order;not null;index"`
	Active       bool      `gorm:"column:active;not null"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (categoryRecord) TableName() string { return "categories" }

type productRecord struct {
	ID                   int64            `gorm:"primaryKey;column:id"`
	CategoryID           *int64           `gorm:"column:category_id;index"`
	Category             *categoryRecord  `gorm:"foreignKey:CategoryID"`
	Name                 string           `gorm:"column:name;size:255;not null"`
	Description          string           `gorm:"column:description;type:text"`
	Price                decimal.Decimal  `gorm:"column:price;type:numeric(12,2);not null"`
	ProductType          string           `gorm:"column:product_type;type:varchar(32);not null;index"`
	ImageURL             string           `gorm:"column:image_url"`
	Customizable         bool             `gorm:"column:is_customizable;not null"`
	CustomizationCharge  decimal.Decimal  `gorm:"column:customization_charge;type:numeric(12,2);not null"`
	StockQuantity        *int             `gorm:"column:stock_quantity;check:chk_products_stock_non_negative,stock_quantity IS NULL OR stock_quantity >= 0"`
	Active               bool             `gorm:"column:active;not null;index"`
	CustomizationOptions datatypes.JSON   `gorm:"column:customization_options"`
	Specifications       datatypes.JSON   `gorm:"column:specifications"`
	WidthCm              *decimal.Decimal `gorm:"column:width_cm;type:numeric(8,2)"`
	HeightCm             *decimal.Decimal `gorm:"column:height_cm;type:numeric(8,2)"`
	DepthCm              *decimal.Decimal `gorm:"column:depth_cm;type:numeric(8,2)"`
	CreatedAt            time.Time        `gorm:"column:created_at"`
	UpdatedAt            time.Time        `gorm:"column:updated_at"`
}

func (productRecord) TableName() string { return "products" }

type hamperBoxRecord struct {
	ID          int64            `gorm:"primaryKey;column:id"`
	Name        string           `gorm:"column:name;size:255;not null"`
	Description string           `gorm:"column:description;type:text"`
	Size        string           `gorm:"column:size;type:varchar(16);not null"`
	Price       decimal.Decimal  `gorm:"column:price;type:numeric(12,2);not null;index"`
	MaxItems    int              `gorm:"column:max_items;not null"`
	ImageURL    string           `gorm:"column:image_url"`
	LengthCm    *decimal.Decimal `gorm:"column:length_cm;type:numeric(8,2)"`
	WidthCm     *decimal.Decimal `gorm:"column:width_cm;type:numeric(8,2)"`
	HeightCm    *decimal.Decimal `gorm:"column:height_cm;type:numeric(8,2)"`
	GridRows    *int             `gorm:"column:grid_rows"`
	GridCols    *int             `gorm:"column:grid_cols"`
	Active      bool             `gorm:"column:active;not null"`
	CreatedAt   time.Time        `gorm:"column:created_at"`
	UpdatedAt   time.Time        `gorm:"column:updated_at"`
}

func (hamperBoxRecord) TableName() string { return "hamper_boxes" }

// Models lists the catalog tables for schema migration.
func Models() []any {
	return []any{&categoryRecord{}, &productRecord{}, &hamperBoxRecord{}}
}

// CategoryRepository persists categories using GORM.
type CategoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository wires a PostgreSQL-backed repository. The caller owns the DB lifecycle.
func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Save(ctx context.Context, category *domain.Category) (*ports.CategoryProjection, error) {
	if err := ensureDB(r.db); err != nil {
		return nil, err
	}
	if category == nil {
		return nil, errors.New("cannot save nil category")
	}
	record := categoryRecord{
		ID:           category.ID,
		Name:         category.Name,
		Description:  category.Description,
		ImageURL:     category.ImageURL,
		DisplayOrder: category.DisplayOrder,
		Active:       category.Active,
	}
	if err := upsert(ctx, r.db, &record, "name", "description", "image_url", "display_order", "active"); err != nil {
		if pgplatform.IsUniqueViolation(err, categoryNameIndex) {
			return nil, ports.ErrDuplicateCategory
		}
		return nil, err
	}
	category.ID = record.ID
	return r.GetByID(ctx, record.ID)
}

func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*ports.CategoryProjection, error) {
	if err := ensureDB(r.db); err != nil {
		return nil, err
	}
	var record categoryRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toProjection(), nil
}

func (r *CategoryRepository) ListActive(ctx context.Context) ([]*ports.CategoryProjection, error) {
	if err := ensureDB(r.db); err != nil {
		return nil, err
	}
	var records []categoryRecord
	if err := r.db.WithContext(ctx).Where("active = ?", true).Order("display_order ASC, id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	list := make([]*ports.CategoryProjection, 0, len(records))
	for i := range records {
		list = append(list, records[i].toProjection())
	}
	return list, nil
}

// ProductRepository persists products using GORM.
type ProductRepository struct {
	db *gorm.DB
}

// NewProductRepository wires a PostgreSQL-backed repository. The caller owns the DB lifecycle.
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Save(ctx context.Context, product *domain.Product) (*ports.ProductProjection, error) {
	if err := ensureDB(r.db); err != nil {
		return nil, err
	}
	if product == nil {
		return nil, errors.New("cannot save nil product")
	}
	record := newProductRecord(product)
	if err := upsert(ctx, r.db.Omit("Category"), &record,
		"category_id", "name", "description", "price", "product_type", "image_url", "is_customizable",
		"customization_charge", "stock_quantity", "active", "customization_options", "specifications",
		"width_cm", "height_cm", "depth_cm"); err != nil {
		if pgplatform.IsCheckViolation(err, StockNonNegativeCheck) {
			return nil, domain.ErrNegativeStock
		}
		return nil, err
	}
	product.ID = record.ID
	return r.GetByID(ctx, record.ID)
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*ports.ProductProjection, error) {
	if err := ensureDB(r.db); err != nil {
		return nil, err
	}
	var record productRecord
	if err := r.db.WithContext(ctx).Preload("Category").First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toProjection(), nil
}

// GetByIDs returns the products that exist among ids, in ascending id order.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []int64) ([]*ports.ProductProjection, error) {
	if err := ensureDB(r.db); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	var records []productRecord
	if err := r.db.WithContext(ctx).Preload("Category").
		Where("id = ANY(?)", pq.Array(ids)).
		Order("id ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return productProjections(records), nil
}

func (r *ProductRepository) ListActive(ctx context.Context, filter ports.ProductFilter) ([]*ports.ProductProjection, error) {
	if err := ensureDB(r.db); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).Preload("Category").Where("active = ?", true)
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Type != nil {
		query = query.Where("product_type = ?", string(*filter.Type))
	}
	if filter.CustomizableOnly {
		query = query.Where("is_customizable = ?", true)
	}
	var records []productRecord
	if err := query.Order("id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return productProjections(records), nil
}

// LockProducts loads the given products with SELECT ... FOR UPDATE in ascending id order.
// It must run inside a transaction.
func LockProducts(ctx context.Context, tx *gorm.DB, ids []int64) ([]*domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var records []productRecord
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ANY(?)", pq.Array(ids)).
		Order("id ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	products := make([]*domain.Product, 0, len(records))
	for i := range records {
		products = append(products, records[i].toDomain())
	}
	return products, nil
}

// DecrementStock takes quantity units from a tracked stock. It reports false when the product
// has untracked stock or not enough units, leaving the row unchanged.
func DecrementStock(ctx context.Context, tx *gorm.DB, productID int64, quantity int) (bool, error) {
	result := tx.WithContext(ctx).Model(&productRecord{}).
		Where("id = ? AND stock_quantity IS NOT NULL AND stock_quantity >= ?", productID, quantity).
		Updates(map[string]any{
			"stock_quantity": gorm.Expr("stock_quantity - ?", quantity),
			"updated_at":     gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// FindHamperBox loads a hamper box through the given handle, typically a transaction.
func FindHamperBox(ctx context.Context, tx *gorm.DB, id int64) (*domain.HamperBox, error) {
	var record hamperBoxRecord
	if err := tx.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// HamperBoxRepository persists hamper boxes using GORM.
type HamperBoxRepository struct {
	db *gorm.DB
}

// NewHamperBoxRepository wires a PostgreSQL-backed repository. The caller owns the DB lifecycle.
func NewHamperBoxRepository(db *gorm.DB) *HamperBoxRepository {
	return &HamperBoxRepository{db: db}
}

func (r *HamperBoxRepository) Save(ctx context.Context, box *domain.HamperBox) (*ports.HamperBoxProjection, error) {
	if err := ensureDB(r.db); err != nil {
		return nil, err
	}
	if box == nil {
		return nil, errors.New("cannot save nil hamper box")
	}
	record := hamperBoxRecord{
		ID:          box.ID,
		Name:        box.Name,
		Description: box.Description,
		Size:        string(box.Size),
		Price:       box.Price,
		MaxItems:    box.MaxItems,
		ImageURL:    box.ImageURL,
		LengthCm:    box.LengthCm,
		WidthCm:     box.WidthCm,
		HeightCm:    box.HeightCm,
		GridRows:    box.GridRows,
		GridCols:    box.GridCols,
		Active:      box.Active,
	}
	if err := upsert(ctx, r.db, &record, "name", "description", "size", "price", "max_items", "image_url",
		"length_cm", "width_cm", "height_cm", "grid_rows", "grid_cols", "active"); err != nil {
		return nil, err
	}
	box.ID = record.ID
	return r.GetByID(ctx, record.ID)
}

func (r *HamperBoxRepository) GetByID(ctx context.Context, id int64) (*ports.HamperBoxProjection, error) {
	if err := ensureDB(r.db); err != nil {
		return nil, err
	}
	var record hamperBoxRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toProjection(), nil
}

func (r *HamperBoxRepository) ListActive(ctx context.Context) ([]*ports.HamperBoxProjection, error) {
	if err := ensureDB(r.db); err != nil {
		return nil, err
	}
	var records []hamperBoxRecord
	if err := r.db.WithContext(ctx).Where("active = ?", true).Order("price ASC, id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	list := make([]*ports.HamperBoxProjection, 0, len(records))
	for i := range records {
		list = append(list, records[i].toProjection())
	}
	return list, nil
}

// upsert inserts new rows and overwrites the listed columns of existing ones.
func upsert(ctx context.Context, db *gorm.DB, record any, columns ...string) error {
	db = db.WithContext(ctx)
	if id := recordID(record); id == 0 {
		return db.Create(record).Error
	}
	assignments := make(map[string]any, len(columns)+1)
	for _, col := range columns {
		assignments[col] = gorm.Expr("EXCLUDED." + col)
	}
	assignments["updated_at"] = gorm.Expr("NOW()")
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(record).Error
}

func recordID(record any) int64 {
	switch rec := record.(type) {
	case *categoryRecord:
		return rec.ID
	case *productRecord:
		return rec.ID
	case *hamperBoxRecord:
		return rec.ID
	default:
		return 0
	}
}

func ensureDB(db *gorm.DB) error {
	if db == nil {
		return errors.New("postgres catalog repository not configured")
	}
	return nil
}

func newProductRecord(p *domain.Product) productRecord {
	return productRecord{
		ID:                   p.ID,
		CategoryID:           p.CategoryID,
		Name:                 p.Name,
		Description:          p.Description,
		Price:                p.Price,
		ProductType:          string(p.Type),
		ImageURL:             p.ImageURL,
		Customizable:         p.Customizable,
		CustomizationCharge:  p.CustomizationCharge,
		StockQuantity:        p.StockQuantity,
		Active:               p.Active,
		CustomizationOptions: datatypes.JSON(p.CustomizationOptions),
		Specifications:       datatypes.JSON(p.Specifications),
		WidthCm:              p.Dimensions.WidthCm,
		HeightCm:             p.Dimensions.HeightCm,
		DepthCm:              p.Dimensions.DepthCm,
	}
}

func (r categoryRecord) toProjection() *ports.CategoryProjection {
	return &ports.CategoryProjection{
		Entity: &domain.Category{
			ID:           r.ID,
			Name:         r.Name,
			Description:  r.Description,
			ImageURL:     r.ImageURL,
			DisplayOrder: r.DisplayOrder,
			Active:       r.Active,
		},
		Metadata: projection.Metadata{CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt},
	}
}

func (r productRecord) toDomain() *domain.Product {
	p := &domain.Product{
		ID:                  r.ID,
		CategoryID:          r.CategoryID,
		Name:                r.Name,
		Description:         r.Description,
		Price:               r.Price,
		Type:                domain.ProductType(r.ProductType),
		ImageURL:            r.ImageURL,
		Customizable:        r.Customizable,
		CustomizationCharge: r.CustomizationCharge,
		StockQuantity:       r.StockQuantity,
		Active:              r.Active,
		Dimensions:          domain.Dimensions{WidthCm: r.WidthCm, HeightCm: r.HeightCm, DepthCm: r.DepthCm},
	}
	if len(r.CustomizationOptions) > 0 {
		p.CustomizationOptions = []byte(r.CustomizationOptions)
	}
	if len(r.Specifications) > 0 {
		p.Specifications = []byte(r.Specifications)
	}
	if r.Category != nil {
		p.CategoryName = r.Category.Name
	}
	return p
}

func (r productRecord) toProjection() *ports.ProductProjection {
	return &ports.ProductProjection{
		Entity:   r.toDomain(),
		Metadata: projection.Metadata{CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt},
	}
}

func productProjections(records []productRecord) []*ports.ProductProjection {
	list := make([]*ports.ProductProjection, 0, len(records))
	for i := range records {
		list = append(list, records[i].toProjection())
	}
	return list
}

func (r hamperBoxRecord) toDomain() *domain.HamperBox {
	return &domain.HamperBox{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Size:        domain.HamperSize(r.Size),
		Price:       r.Price,
		MaxItems:    r.MaxItems,
		ImageURL:    r.ImageURL,
		LengthCm:    r.LengthCm,
		WidthCm:     r.WidthCm,
		HeightCm:    r.HeightCm,
		GridRows:    r.GridRows,
		GridCols:    r.GridCols,
		Active:      r.Active,
	}
}

func (r hamperBoxRecord) toProjection() *ports.HamperBoxProjection {
	return &ports.HamperBoxProjection{
		Entity:   r.toDomain(),
		Metadata: projection.Metadata{CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt},
	}
}
