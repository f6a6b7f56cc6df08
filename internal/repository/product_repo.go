package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SilverPhantom1/zypos-sub000/internal/dto"
	"github.com/SilverPhantom1/zypos-sub000/internal/model"
)

// ProductRepository defines the data access contract for the product catalog.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via in-memory fakes.
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindBySKU(ctx context.Context, sku string) (*model.Product, error)
	List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error)

	// AdjustStock applies a signed delta atomically at the store level,
	// clamping at zero on decrements, and returns the resulting stock count.
	// This is deliberately not read-modify-write: concurrent deltas commute.
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (int, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	return &p, err
}

func (r *productRepo) FindBySKU(ctx context.Context, sku string) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where("sku = ? AND active = true", sku).First(&p).Error
	return &p, err
}

func (r *productRepo) List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Product{})

	switch filter.Active {
	case "false":
		q = q.Where("active = false")
	case "all":
		// no filter
	default:
		q = q.Where("active = true")
	}
	if filter.Name != "" {
		q = q.Where("name ILIKE ?", "%"+filter.Name+"%")
	}
	if filter.SKU != "" {
		q = q.Where("sku = ?", filter.SKU)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("name ASC").Limit(filter.Limit).Offset(offset).Find(&products).Error
	return products, total, err
}

func (r *productRepo) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (int, error) {
	var stock int
	res := r.db.WithContext(ctx).Raw(
		`UPDATE products
		    SET stock = GREATEST(0, stock + ?), updated_at = NOW()
		  WHERE id = ?
		  RETURNING stock`, delta, id,
	).Scan(&stock)
	if res.Error != nil {
		return 0, res.Error
	}
	// RETURNING yields no row when the id does not exist; without this check
	// the zero-value stock would read as a successful clamp to zero.
	if res.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return stock, nil
}

func (r *productRepo) DB() *gorm.DB { return r.db }
