package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/SilverPhantom1/zypos-sub000/internal/dto"
	"github.com/SilverPhantom1/zypos-sub000/internal/model"
	"github.com/SilverPhantom1/zypos-sub000/internal/repository"
)

// SessionService manages the till session lifecycle: none → open → closed.
// Closing is terminal; cumulative totals are frozen at close.
type SessionService interface {
	Open(ctx context.Context, workerID uuid.UUID, req dto.OpenSessionRequest) (*dto.SessionResponse, error)
	// RecordCashSale adds a cash sale's amounts to the session's running totals
	// and appends an immutable ledger movement. Called by the sale recorder.
	RecordCashSale(ctx context.Context, sessionID, saleID uuid.UUID, cashReceived, changeGiven decimal.Decimal) error
	Close(ctx context.Context, sessionID uuid.UUID) (*dto.CloseSessionResponse, error)
	// CloseSilently is the sign-out path: best-effort, swallow-and-log —
	// a close failure must never block logout.
	CloseSilently(ctx context.Context, sessionID uuid.UUID)
	// Resume returns the worker's open session, or nil when there is none.
	// Called at startup instead of reading ambient session state.
	Resume(ctx context.Context, workerID uuid.UUID) (*dto.SessionResponse, error)
	Get(ctx context.Context, sessionID uuid.UUID) (*dto.SessionResponse, error)
	History(ctx context.Context, page, limit int) (*dto.SessionListResponse, error)
}

type sessionService struct {
	repo repository.SessionRepository
}

func NewSessionService(repo repository.SessionRepository) SessionService {
	return &sessionService{repo: repo}
}

// ── Open ─────────────────────────────────────────────────────────────────────

func (s *sessionService) Open(ctx context.Context, workerID uuid.UUID, req dto.OpenSessionRequest) (*dto.SessionResponse, error) {
	if !req.OpeningFloat.IsPositive() {
		return nil, ErrInvalidAmount
	}

	// Friendly pre-check; the partial unique index is what actually guarantees
	// exclusivity when two opens race.
	if existing, err := s.repo.FindOpenByWorker(ctx, workerID); err == nil && existing != nil {
		return nil, ErrSessionAlreadyOpen
	}

	session := &model.CashSession{
		WorkerID:     workerID,
		OpeningFloat: req.OpeningFloat,
		CashReceived: decimal.Zero,
		ChangeGiven:  decimal.Zero,
		Status:       model.SessionOpen,
		OpenedAt:     time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, session); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSessionAlreadyOpen
		}
		return nil, err
	}

	return sessionToResponse(session, nil), nil
}

// isUniqueViolation detects the open-session partial unique index firing.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// ── RecordCashSale ───────────────────────────────────────────────────────────

func (s *sessionService) RecordCashSale(ctx context.Context, sessionID, saleID uuid.UUID, cashReceived, changeGiven decimal.Decimal) error {
	if cashReceived.IsNegative() || changeGiven.IsNegative() {
		return ErrInvalidAmount
	}

	// Guarded update: only touches an open session, so totals cannot grow
	// after close regardless of interleaving.
	rows, err := s.repo.ApplyCashSale(ctx, sessionID, cashReceived, changeGiven)
	if err != nil {
		return err
	}
	if rows == 0 {
		if _, findErr := s.repo.FindByID(ctx, sessionID); findErr != nil {
			return ErrNotFound
		}
		return ErrSessionClosed
	}

	mov := &model.CashMovement{
		SessionID:    sessionID,
		SaleID:       saleID,
		CashReceived: cashReceived,
		ChangeGiven:  changeGiven,
	}
	return s.repo.CreateMovement(ctx, mov)
}

// ── Close ────────────────────────────────────────────────────────────────────

func (s *sessionService) Close(ctx context.Context, sessionID uuid.UUID) (*dto.CloseSessionResponse, error) {
	session, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, ErrNotFound
	}
	if session.Status != model.SessionOpen {
		return nil, ErrSessionAlreadyClosed
	}

	closingTotal := session.OpeningFloat.Add(session.CashReceived).Sub(session.ChangeGiven)
	now := time.Now().UTC()
	session.ClosingTotal = &closingTotal
	session.Status = model.SessionClosed
	session.ClosedAt = &now

	if err := s.repo.Close(ctx, session); err != nil {
		return nil, err
	}

	return &dto.CloseSessionResponse{
		ID:           session.ID.String(),
		ClosingTotal: closingTotal,
		Status:       session.Status,
		ClosedAt:     now.Format(time.RFC3339),
	}, nil
}

func (s *sessionService) CloseSilently(ctx context.Context, sessionID uuid.UUID) {
	if _, err := s.Close(ctx, sessionID); err != nil &&
		!errors.Is(err, ErrSessionAlreadyClosed) && !errors.Is(err, ErrNotFound) {
		log.Warn().Err(err).
			Str("session_id", sessionID.String()).
			Msg("session: best-effort close on sign-out failed")
	}
}

// ── Resume / reads ───────────────────────────────────────────────────────────

func (s *sessionService) Resume(ctx context.Context, workerID uuid.UUID) (*dto.SessionResponse, error) {
	session, err := s.repo.FindOpenByWorker(ctx, workerID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}
	movs, _ := s.repo.ListMovements(ctx, session.ID)
	return sessionToResponse(session, movs), nil
}

func (s *sessionService) Get(ctx context.Context, sessionID uuid.UUID) (*dto.SessionResponse, error) {
	session, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, ErrNotFound
	}
	return sessionToResponse(session, session.Movements), nil
}

func (s *sessionService) History(ctx context.Context, page, limit int) (*dto.SessionListResponse, error) {
	sessions, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SessionResponse, 0, len(sessions))
	for i := range sessions {
		items = append(items, *sessionToResponse(&sessions[i], nil))
	}
	return &dto.SessionListResponse{Data: items, Total: total, Page: page, Limit: limit}, nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func sessionToResponse(s *model.CashSession, movs []model.CashMovement) *dto.SessionResponse {
	resp := &dto.SessionResponse{
		ID:            s.ID.String(),
		WorkerID:      s.WorkerID.String(),
		OpeningFloat:  s.OpeningFloat,
		CashReceived:  s.CashReceived,
		ChangeGiven:   s.ChangeGiven,
		ClosingTotal:  s.ClosingTotal,
		Status:        s.Status,
		LinkedSaleIDs: []string{},
		OpenedAt:      s.OpenedAt.Format(time.RFC3339),
	}
	for _, m := range movs {
		resp.LinkedSaleIDs = append(resp.LinkedSaleIDs, m.SaleID.String())
		resp.Movements = append(resp.Movements, dto.CashMovementResponse{
			SaleID:       m.SaleID.String(),
			CashReceived: m.CashReceived,
			ChangeGiven:  m.ChangeGiven,
			CreatedAt:    m.CreatedAt.Format(time.RFC3339),
		})
	}
	if s.ClosedAt != nil {
		t := s.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &t
	}
	return resp
}
