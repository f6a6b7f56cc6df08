package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/SilverPhantom1/zypos-sub000/internal/model"
)

type SessionRepository interface {
	Create(ctx context.Context, s *model.CashSession) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.CashSession, error)
	FindOpenByWorker(ctx context.Context, workerID uuid.UUID) (*model.CashSession, error)

	// ApplyCashSale adds to the cumulative totals of an OPEN session in a single
	// guarded UPDATE. Returns the number of rows affected: 0 means the session
	// is not open (closed in the meantime, or never existed).
	ApplyCashSale(ctx context.Context, sessionID uuid.UUID, cashReceived, changeGiven decimal.Decimal) (int64, error)

	CreateMovement(ctx context.Context, m *model.CashMovement) error
	ListMovements(ctx context.Context, sessionID uuid.UUID) ([]model.CashMovement, error)

	Close(ctx context.Context, s *model.CashSession) error
	List(ctx context.Context, page, limit int) ([]model.CashSession, int64, error)
}

type sessionRepo struct{ db *gorm.DB }

func NewSessionRepository(db *gorm.DB) SessionRepository { return &sessionRepo{db: db} }

func (r *sessionRepo) Create(ctx context.Context, s *model.CashSession) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *sessionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CashSession, error) {
	var s model.CashSession
	err := r.db.WithContext(ctx).Preload("Movements").First(&s, id).Error
	return &s, err
}

func (r *sessionRepo) FindOpenByWorker(ctx context.Context, workerID uuid.UUID) (*model.CashSession, error) {
	var s model.CashSession
	err := r.db.WithContext(ctx).
		Where("worker_id = ? AND status = ?", workerID, model.SessionOpen).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepo) ApplyCashSale(ctx context.Context, sessionID uuid.UUID, cashReceived, changeGiven decimal.Decimal) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.CashSession{}).
		Where("id = ? AND status = ?", sessionID, model.SessionOpen).
		Updates(map[string]interface{}{
			"cash_received": gorm.Expr("cash_received + ?", cashReceived),
			"change_given":  gorm.Expr("change_given + ?", changeGiven),
		})
	return res.RowsAffected, res.Error
}

func (r *sessionRepo) CreateMovement(ctx context.Context, m *model.CashMovement) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *sessionRepo) ListMovements(ctx context.Context, sessionID uuid.UUID) ([]model.CashMovement, error) {
	var movs []model.CashMovement
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&movs).Error
	return movs, err
}

func (r *sessionRepo) Close(ctx context.Context, s *model.CashSession) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *sessionRepo) List(ctx context.Context, page, limit int) ([]model.CashSession, int64, error) {
	var sessions []model.CashSession
	var total int64

	q := r.db.WithContext(ctx).Model(&model.CashSession{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("opened_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&sessions).Error
	return sessions, total, err
}
