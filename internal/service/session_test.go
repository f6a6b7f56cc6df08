package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SilverPhantom1/zypos-sub000/internal/dto"
	"github.com/SilverPhantom1/zypos-sub000/internal/model"
	"github.com/SilverPhantom1/zypos-sub000/internal/service"
)

func TestOpenSession(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := service.NewSessionService(repo)

	resp, err := svc.Open(context.Background(), uuid.New(), dto.OpenSessionRequest{
		OpeningFloat: decimal.NewFromInt(5000),
	})

	require.NoError(t, err)
	assert.Equal(t, model.SessionOpen, resp.Status)
	assert.Equal(t, "5000", resp.OpeningFloat.String())
	assert.Equal(t, "0", resp.CashReceived.String())
	assert.Equal(t, "0", resp.ChangeGiven.String())
	assert.Nil(t, resp.ClosingTotal)
}

func TestOpenSession_NonPositiveFloat(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := service.NewSessionService(repo)

	_, err := svc.Open(context.Background(), uuid.New(), dto.OpenSessionRequest{
		OpeningFloat: decimal.Zero,
	})
	assert.ErrorIs(t, err, service.ErrInvalidAmount)

	_, err = svc.Open(context.Background(), uuid.New(), dto.OpenSessionRequest{
		OpeningFloat: decimal.NewFromInt(-100),
	})
	assert.ErrorIs(t, err, service.ErrInvalidAmount)
}

func TestOpenSession_AlreadyOpen(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := service.NewSessionService(repo)
	workerID := uuid.New()

	_, err := svc.Open(context.Background(), workerID, dto.OpenSessionRequest{
		OpeningFloat: decimal.NewFromInt(1000),
	})
	require.NoError(t, err)

	// Second open for the same worker must fail
	_, err = svc.Open(context.Background(), workerID, dto.OpenSessionRequest{
		OpeningFloat: decimal.NewFromInt(2000),
	})
	assert.ErrorIs(t, err, service.ErrSessionAlreadyOpen)

	// A different worker is unaffected
	_, err = svc.Open(context.Background(), uuid.New(), dto.OpenSessionRequest{
		OpeningFloat: decimal.NewFromInt(2000),
	})
	assert.NoError(t, err)
}

func TestOpenSession_UniqueViolationMapped(t *testing.T) {
	// When two opens race past the pre-check, the unique index fires and the
	// duplicate key error must surface as ErrSessionAlreadyOpen.
	repo := newFakeSessionRepo()
	svc := service.NewSessionService(repo)
	workerID := uuid.New()

	// Seed an open session directly, bypassing the service pre-check path.
	require.NoError(t, repo.Create(context.Background(), &model.CashSession{
		WorkerID:     workerID,
		OpeningFloat: decimal.NewFromInt(500),
		CashReceived: decimal.Zero,
		ChangeGiven:  decimal.Zero,
		Status:       model.SessionOpen,
	}))

	_, err := svc.Open(context.Background(), workerID, dto.OpenSessionRequest{
		OpeningFloat: decimal.NewFromInt(1000),
	})
	assert.ErrorIs(t, err, service.ErrSessionAlreadyOpen)
}

func TestRecordCashSale_CumulativeTotals(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := service.NewSessionService(repo)

	resp, err := svc.Open(context.Background(), uuid.New(), dto.OpenSessionRequest{
		OpeningFloat: decimal.NewFromInt(1000),
	})
	require.NoError(t, err)
	sessionID := uuid.MustParse(resp.ID)

	// Two cash sales: received 2000 / change 500, then received 1500 / change 0
	require.NoError(t, svc.RecordCashSale(context.Background(), sessionID, uuid.New(),
		decimal.NewFromInt(2000), decimal.NewFromInt(500)))
	require.NoError(t, svc.RecordCashSale(context.Background(), sessionID, uuid.New(),
		decimal.NewFromInt(1500), decimal.Zero))

	report, err := svc.Get(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, "3500", report.CashReceived.String())
	assert.Equal(t, "500", report.ChangeGiven.String())
	assert.Len(t, report.LinkedSaleIDs, 2)
	assert.Len(t, report.Movements, 2)
}

func TestRecordCashSale_NegativeAmount(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := service.NewSessionService(repo)

	resp, err := svc.Open(context.Background(), uuid.New(), dto.OpenSessionRequest{
		OpeningFloat: decimal.NewFromInt(1000),
	})
	require.NoError(t, err)

	err = svc.RecordCashSale(context.Background(), uuid.MustParse(resp.ID), uuid.New(),
		decimal.NewFromInt(-100), decimal.Zero)
	assert.ErrorIs(t, err, service.ErrInvalidAmount)
}

func TestCloseSession(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := service.NewSessionService(repo)

	resp, err := svc.Open(context.Background(), uuid.New(), dto.OpenSessionRequest{
		OpeningFloat: decimal.NewFromInt(1000),
	})
	require.NoError(t, err)
	sessionID := uuid.MustParse(resp.ID)

	require.NoError(t, svc.RecordCashSale(context.Background(), sessionID, uuid.New(),
		decimal.NewFromInt(3000), decimal.NewFromInt(500)))

	// closing total = 1000 + 3000 − 500
	closeResp, err := svc.Close(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, "3500", closeResp.ClosingTotal.String())
	assert.Equal(t, model.SessionClosed, closeResp.Status)
}

func TestCloseSession_Terminal(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := service.NewSessionService(repo)

	resp, err := svc.Open(context.Background(), uuid.New(), dto.OpenSessionRequest{
		OpeningFloat: decimal.NewFromInt(1000),
	})
	require.NoError(t, err)
	sessionID := uuid.MustParse(resp.ID)

	_, err = svc.Close(context.Background(), sessionID)
	require.NoError(t, err)

	// Double close fails
	_, err = svc.Close(context.Background(), sessionID)
	assert.ErrorIs(t, err, service.ErrSessionAlreadyClosed)

	// Totals are frozen: no cash sale may land on a closed session
	err = svc.RecordCashSale(context.Background(), sessionID, uuid.New(),
		decimal.NewFromInt(100), decimal.Zero)
	assert.ErrorIs(t, err, service.ErrSessionClosed)

	report, err := svc.Get(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, "0", report.CashReceived.String())
}

func TestResumeSession(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := service.NewSessionService(repo)
	workerID := uuid.New()

	// No session yet → nil, no error
	resumed, err := svc.Resume(context.Background(), workerID)
	require.NoError(t, err)
	assert.Nil(t, resumed)

	opened, err := svc.Open(context.Background(), workerID, dto.OpenSessionRequest{
		OpeningFloat: decimal.NewFromInt(700),
	})
	require.NoError(t, err)

	resumed, err = svc.Resume(context.Background(), workerID)
	require.NoError(t, err)
	require.NotNil(t, resumed)
	assert.Equal(t, opened.ID, resumed.ID)

	// After close there is nothing to resume
	_, err = svc.Close(context.Background(), uuid.MustParse(opened.ID))
	require.NoError(t, err)
	resumed, err = svc.Resume(context.Background(), workerID)
	require.NoError(t, err)
	assert.Nil(t, resumed)
}

func TestCloseSilently_SwallowsAlreadyClosed(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := service.NewSessionService(repo)

	resp, err := svc.Open(context.Background(), uuid.New(), dto.OpenSessionRequest{
		OpeningFloat: decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	sessionID := uuid.MustParse(resp.ID)

	svc.CloseSilently(context.Background(), sessionID)
	svc.CloseSilently(context.Background(), sessionID) // second call must not panic

	report, err := svc.Get(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionClosed, report.Status)
}
