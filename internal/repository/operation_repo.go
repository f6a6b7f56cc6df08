package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SilverPhantom1/zypos-sub000/internal/model"
)

type OperationRepository interface {
	CreateStep(ctx context.Context, s *model.OperationStep) error
	ListByOperation(ctx context.Context, operationID uuid.UUID) ([]model.OperationStep, error)
	ListFailed(ctx context.Context, operationID uuid.UUID) ([]model.OperationStep, error)
	Update(ctx context.Context, s *model.OperationStep) error
}

type operationRepo struct{ db *gorm.DB }

func NewOperationRepository(db *gorm.DB) OperationRepository { return &operationRepo{db: db} }

func (r *operationRepo) CreateStep(ctx context.Context, s *model.OperationStep) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *operationRepo) ListByOperation(ctx context.Context, operationID uuid.UUID) ([]model.OperationStep, error) {
	var steps []model.OperationStep
	err := r.db.WithContext(ctx).
		Where("operation_id = ?", operationID).
		Order("created_at ASC").
		Find(&steps).Error
	return steps, err
}

func (r *operationRepo) ListFailed(ctx context.Context, operationID uuid.UUID) ([]model.OperationStep, error) {
	var steps []model.OperationStep
	err := r.db.WithContext(ctx).
		Where("operation_id = ? AND status = ?", operationID, model.StepFailed).
		Order("created_at ASC").
		Find(&steps).Error
	return steps, err
}

func (r *operationRepo) Update(ctx context.Context, s *model.OperationStep) error {
	return r.db.WithContext(ctx).Save(s).Error
}
