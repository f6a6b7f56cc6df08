package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SilverPhantom1/zypos-sub000/internal/dto"
	"github.com/SilverPhantom1/zypos-sub000/internal/infra"
	"github.com/SilverPhantom1/zypos-sub000/internal/model"
	"github.com/SilverPhantom1/zypos-sub000/internal/service"
)

// saleFixture wires a sale service over in-memory fakes.
type saleFixture struct {
	products   *fakeProductRepo
	sales      *fakeSaleRepo
	sessions   *fakeSessionRepo
	movements  *fakeStockMovementRepo
	operations *fakeOperationRepo
	sessionSvc service.SessionService
	svc        service.SaleService
}

func newSaleFixture(gateway service.GatewayVerifier) *saleFixture {
	f := &saleFixture{
		products:   newFakeProductRepo(),
		sales:      newFakeSaleRepo(),
		sessions:   newFakeSessionRepo(),
		movements:  &fakeStockMovementRepo{},
		operations: &fakeOperationRepo{},
	}
	ledger := service.NewStockLedger(f.products, f.movements)
	f.sessionSvc = service.NewSessionService(f.sessions)
	f.svc = service.NewSaleService(f.sales, f.products, f.sessionSvc, ledger, f.operations, gateway, nil)
	return f
}

func TestRecordCashSale(t *testing.T) {
	f := newSaleFixture(nil)
	workerID := uuid.New()
	p := f.products.add("Ground Coffee 250g", "1000.00", 10)

	opened, err := f.sessionSvc.Open(context.Background(), workerID, dto.OpenSessionRequest{
		OpeningFloat: decimal.NewFromInt(500),
	})
	require.NoError(t, err)

	resp, err := f.svc.Record(context.Background(), workerID, dto.RecordSaleRequest{
		Lines:         []dto.SaleLineRequest{{ProductID: p.ID.String(), Quantity: 2}},
		PaymentMethod: model.PayCash,
		SessionID:     &opened.ID,
		Cash:          &dto.CashDetails{CashReceived: decimal.NewFromInt(2500)},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.TicketNumber)
	assert.Equal(t, model.SaleCompleted, resp.Status)
	assert.Equal(t, "2000", resp.Total.String())
	require.NotNil(t, resp.ChangeGiven)
	assert.Equal(t, "500", resp.ChangeGiven.String())
	assert.NotEmpty(t, resp.OperationID)

	// Stock decremented 10 → 8, with a ledger movement
	assert.Equal(t, 8, f.products.products[p.ID].Stock)
	require.Len(t, f.movements.movements, 1)
	assert.Equal(t, "sale", f.movements.movements[0].Type)
	assert.Equal(t, -2, f.movements.movements[0].Quantity)

	// Till totals updated and the sale linked
	report, err := f.sessionSvc.Get(context.Background(), uuid.MustParse(opened.ID))
	require.NoError(t, err)
	assert.Equal(t, "2500", report.CashReceived.String())
	assert.Equal(t, "500", report.ChangeGiven.String())
	require.Len(t, report.LinkedSaleIDs, 1)
	assert.Equal(t, resp.ID, report.LinkedSaleIDs[0])

	// One applied operation step
	require.Len(t, f.operations.steps, 1)
	assert.Equal(t, model.StepApplied, f.operations.steps[0].Status)
}

func TestRecordSale_InsufficientCash(t *testing.T) {
	f := newSaleFixture(nil)
	p := f.products.add("Sugar 1kg", "620.00", 5)

	_, err := f.svc.Record(context.Background(), uuid.New(), dto.RecordSaleRequest{
		Lines:         []dto.SaleLineRequest{{ProductID: p.ID.String(), Quantity: 2}},
		PaymentMethod: model.PayCash,
		Cash:          &dto.CashDetails{CashReceived: decimal.NewFromInt(1000)},
	})
	assert.ErrorIs(t, err, service.ErrInsufficientCash)

	// Nothing persisted, no stock touched
	assert.Empty(t, f.sales.sales)
	assert.Equal(t, 5, f.products.products[p.ID].Stock)
}

func TestRecordSale_UnknownProduct(t *testing.T) {
	f := newSaleFixture(nil)

	_, err := f.svc.Record(context.Background(), uuid.New(), dto.RecordSaleRequest{
		Lines:         []dto.SaleLineRequest{{ProductID: uuid.NewString(), Quantity: 1}},
		PaymentMethod: model.PayTransfer,
	})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestRecordSale_InactiveProduct(t *testing.T) {
	f := newSaleFixture(nil)
	p := f.products.add("Discontinued Item", "100.00", 3)
	p.Active = false

	_, err := f.svc.Record(context.Background(), uuid.New(), dto.RecordSaleRequest{
		Lines:         []dto.SaleLineRequest{{ProductID: p.ID.String(), Quantity: 1}},
		PaymentMethod: model.PayTransfer,
	})
	assert.ErrorContains(t, err, "inactive")
}

func TestRecordSale_GatewayConfirmed(t *testing.T) {
	gw := &fakeGateway{charges: map[string]*infra.GatewayCharge{
		"ch_123": {Reference: "ch_123", Status: "confirmed"},
	}}
	f := newSaleFixture(gw)
	p := f.products.add("Black Tea 20 bags", "890.50", 4)
	ref := "ch_123"

	resp, err := f.svc.Record(context.Background(), uuid.New(), dto.RecordSaleRequest{
		Lines:         []dto.SaleLineRequest{{ProductID: p.ID.String(), Quantity: 1}},
		PaymentMethod: model.PayGateway,
		GatewayRef:    &ref,
	})
	require.NoError(t, err)
	assert.Equal(t, model.PayGateway, resp.PaymentMethod)
	assert.Nil(t, resp.CashReceived)
}

func TestRecordSale_GatewayUnconfirmed(t *testing.T) {
	gw := &fakeGateway{charges: map[string]*infra.GatewayCharge{
		"ch_456": {Reference: "ch_456", Status: "pending"},
	}}
	f := newSaleFixture(gw)
	p := f.products.add("Black Tea 20 bags", "890.50", 4)
	ref := "ch_456"

	_, err := f.svc.Record(context.Background(), uuid.New(), dto.RecordSaleRequest{
		Lines:         []dto.SaleLineRequest{{ProductID: p.ID.String(), Quantity: 1}},
		PaymentMethod: model.PayGateway,
		GatewayRef:    &ref,
	})
	assert.ErrorIs(t, err, service.ErrGatewayUnconfirmed)
	assert.Empty(t, f.sales.sales)
}

func TestRecordSale_StockClampsAtZero(t *testing.T) {
	f := newSaleFixture(nil)
	p := f.products.add("Whole Milk 1L", "540.00", 1)

	// Overselling: quantity 3 against stock 1 — the sale completes, stock clamps at 0
	_, err := f.svc.Record(context.Background(), uuid.New(), dto.RecordSaleRequest{
		Lines:         []dto.SaleLineRequest{{ProductID: p.ID.String(), Quantity: 3}},
		PaymentMethod: model.PayTransfer,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, f.products.products[p.ID].Stock)
}

func TestRecordSale_FailedStepLoggedAndRetried(t *testing.T) {
	f := newSaleFixture(nil)
	pOK := f.products.add("Biscuits 300g", "780.00", 10)
	pBad := f.products.add("Sugar 1kg", "620.00", 10)
	f.products.failAdjustFor[pBad.ID] = true

	// Sale completes despite the failed stock delta on the second line
	resp, err := f.svc.Record(context.Background(), uuid.New(), dto.RecordSaleRequest{
		Lines: []dto.SaleLineRequest{
			{ProductID: pOK.ID.String(), Quantity: 1},
			{ProductID: pBad.ID.String(), Quantity: 2},
		},
		PaymentMethod: model.PayTransfer,
	})
	require.NoError(t, err)
	assert.Equal(t, model.SaleCompleted, resp.Status)
	assert.Equal(t, 9, f.products.products[pOK.ID].Stock)
	assert.Equal(t, 10, f.products.products[pBad.ID].Stock) // untouched

	// One applied + one failed step under the same operation
	operationID := uuid.MustParse(resp.OperationID)
	var failed, applied int
	for _, s := range f.operations.steps {
		require.Equal(t, operationID, s.OperationID)
		switch s.Status {
		case model.StepFailed:
			failed++
			require.NotNil(t, s.LastError)
		case model.StepApplied:
			applied++
		}
	}
	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, applied)

	// Operator fixes the store and retries — only the failed step re-runs
	f.products.failAdjustFor[pBad.ID] = false
	ledger := service.NewStockLedger(f.products, f.movements)
	opSvc := service.NewOperationService(f.operations, ledger)

	retry, err := opSvc.Retry(context.Background(), operationID)
	require.NoError(t, err)
	assert.Equal(t, 1, retry.Retried)
	assert.Equal(t, 1, retry.Applied)
	assert.Equal(t, 0, retry.StillFailed)
	assert.Equal(t, 8, f.products.products[pBad.ID].Stock)

	// The response lists every step of the operation, all applied by now
	require.Len(t, retry.Steps, 2)
	for _, s := range retry.Steps {
		assert.Equal(t, model.StepApplied, s.Status)
	}
	assert.Equal(t, 9, f.products.products[pOK.ID].Stock) // applied step not re-run
}

func TestRetryOperation_UnknownOperation(t *testing.T) {
	f := newSaleFixture(nil)
	ledger := service.NewStockLedger(f.products, f.movements)
	opSvc := service.NewOperationService(f.operations, ledger)

	_, err := opSvc.Retry(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestRecordSale_ClosedSessionDoesNotBlockSale(t *testing.T) {
	// A cash sale against a closed session is still recorded; the till update
	// failure is logged only.
	f := newSaleFixture(nil)
	workerID := uuid.New()
	p := f.products.add("Ground Coffee 250g", "1000.00", 10)

	opened, err := f.sessionSvc.Open(context.Background(), workerID, dto.OpenSessionRequest{
		OpeningFloat: decimal.NewFromInt(500),
	})
	require.NoError(t, err)
	_, err = f.sessionSvc.Close(context.Background(), uuid.MustParse(opened.ID))
	require.NoError(t, err)

	resp, err := f.svc.Record(context.Background(), workerID, dto.RecordSaleRequest{
		Lines:         []dto.SaleLineRequest{{ProductID: p.ID.String(), Quantity: 1}},
		PaymentMethod: model.PayCash,
		SessionID:     &opened.ID,
		Cash:          &dto.CashDetails{CashReceived: decimal.NewFromInt(1000)},
	})
	require.NoError(t, err)
	assert.Equal(t, model.SaleCompleted, resp.Status)

	// Session totals remain frozen
	report, err := f.sessionSvc.Get(context.Background(), uuid.MustParse(opened.ID))
	require.NoError(t, err)
	assert.Equal(t, "0", report.CashReceived.String())
}
