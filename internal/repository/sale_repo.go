package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SilverPhantom1/zypos-sub000/internal/dto"
	"github.com/SilverPhantom1/zypos-sub000/internal/model"
)

type SaleRepository interface {
	Create(ctx context.Context, tx *gorm.DB, s *model.Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	NextTicketNumber(ctx context.Context, tx *gorm.DB) (int, error)
	List(ctx context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error)

	// SaveVoidTx marks the sale voided and appends the per-product audit rows.
	SaveVoidTx(tx *gorm.DB, saleID uuid.UUID, reason string, adjustments []model.SaleAdjustment) error

	// SaveAmendmentTx replaces the sale's lines with the recomputed set, updates
	// status/disposition/total, and appends the audit rows. The pre-amendment
	// line state is not retained beyond those rows.
	SaveAmendmentTx(tx *gorm.DB, sale *model.Sale, newLines []model.SaleLine, adjustments []model.SaleAdjustment) error

	DB() *gorm.DB // exposes the DB for transaction creation in the service layer
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) DB() *gorm.DB { return r.db }

func (r *saleRepo) Create(ctx context.Context, tx *gorm.DB, s *model.Sale) error {
	return tx.WithContext(ctx).Create(s).Error
}

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).Preload("Lines").Preload("Adjustments").First(&s, id).Error
	return &s, err
}

func (r *saleRepo) NextTicketNumber(ctx context.Context, tx *gorm.DB) (int, error) {
	// PostgreSQL sequence — atomic under concurrent checkouts
	var num int
	err := tx.WithContext(ctx).Raw("SELECT nextval('sales_ticket_number_seq')").Scan(&num).Error
	return num, err
}

func (r *saleRepo) List(ctx context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error) {
	var sales []model.Sale
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Sale{})

	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Date != "" {
		q = q.Where("DATE(created_at) = ?", filter.Date)
	} else {
		q = q.Where("DATE(created_at) = CURRENT_DATE")
	}
	if filter.WorkerID != "" {
		q = q.Where("worker_id = ?", filter.WorkerID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Lines").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&sales).Error

	return sales, total, err
}

func (r *saleRepo) SaveVoidTx(tx *gorm.DB, saleID uuid.UUID, reason string, adjustments []model.SaleAdjustment) error {
	if err := tx.Model(&model.Sale{}).Where("id = ?", saleID).Updates(map[string]interface{}{
		"status":      model.SaleVoided,
		"void_reason": reason,
	}).Error; err != nil {
		return err
	}
	if len(adjustments) == 0 {
		return nil
	}
	return tx.Create(&adjustments).Error
}

func (r *saleRepo) SaveAmendmentTx(tx *gorm.DB, sale *model.Sale, newLines []model.SaleLine, adjustments []model.SaleAdjustment) error {
	if err := tx.Where("sale_id = ?", sale.ID).Delete(&model.SaleLine{}).Error; err != nil {
		return err
	}
	if len(newLines) > 0 {
		if err := tx.Create(&newLines).Error; err != nil {
			return err
		}
	}
	if err := tx.Model(&model.Sale{}).Where("id = ?", sale.ID).Updates(map[string]interface{}{
		"status":      model.SaleAmended,
		"disposition": sale.Disposition,
		"total":       sale.Total,
	}).Error; err != nil {
		return err
	}
	if len(adjustments) == 0 {
		return nil
	}
	return tx.Create(&adjustments).Error
}
