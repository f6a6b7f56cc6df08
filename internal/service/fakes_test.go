package service_test

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/SilverPhantom1/zypos-sub000/internal/dto"
	"github.com/SilverPhantom1/zypos-sub000/internal/infra"
	"github.com/SilverPhantom1/zypos-sub000/internal/model"
	"github.com/SilverPhantom1/zypos-sub000/internal/repository"
)

// ── In-memory ProductRepository ──────────────────────────────────────────────

type fakeProductRepo struct {
	products map[uuid.UUID]*model.Product
	// failAdjustFor forces AdjustStock to fail for specific products,
	// simulating a store-level write failure mid-workflow.
	failAdjustFor map[uuid.UUID]bool
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{
		products:      make(map[uuid.UUID]*model.Product),
		failAdjustFor: make(map[uuid.UUID]bool),
	}
}

func (r *fakeProductRepo) add(name string, price string, stock int) *model.Product {
	p := &model.Product{
		ID:        uuid.New(),
		SKU:       "SKU-" + uuid.NewString()[:8],
		Name:      name,
		UnitPrice: decimal.RequireFromString(price),
		Stock:     stock,
		Active:    true,
	}
	r.products[p.ID] = p
	return p
}

func (r *fakeProductRepo) Create(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return p, nil
}

func (r *fakeProductRepo) FindBySKU(_ context.Context, sku string) (*model.Product, error) {
	for _, p := range r.products {
		if p.SKU == sku && p.Active {
			return p, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *fakeProductRepo) List(_ context.Context, _ dto.ProductFilter) ([]model.Product, int64, error) {
	var all []model.Product
	for _, p := range r.products {
		all = append(all, *p)
	}
	return all, int64(len(all)), nil
}

func (r *fakeProductRepo) AdjustStock(_ context.Context, id uuid.UUID, delta int) (int, error) {
	if r.failAdjustFor[id] {
		return 0, errors.New("store write failed")
	}
	p, ok := r.products[id]
	if !ok {
		return 0, errors.New("not found")
	}
	p.Stock += delta
	if p.Stock < 0 {
		p.Stock = 0
	}
	return p.Stock, nil
}

func (r *fakeProductRepo) DB() *gorm.DB { return nil }

var _ repository.ProductRepository = (*fakeProductRepo)(nil)

// ── In-memory SaleRepository ─────────────────────────────────────────────────

type fakeSaleRepo struct {
	sales      map[uuid.UUID]*model.Sale
	nextTicket int
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{sales: make(map[uuid.UUID]*model.Sale)}
}

func (r *fakeSaleRepo) Create(_ context.Context, _ *gorm.DB, s *model.Sale) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	for i := range s.Lines {
		s.Lines[i].ID = uuid.New()
		s.Lines[i].SaleID = s.ID
	}
	s.CreatedAt = time.Now()
	r.sales[s.ID] = s
	return nil
}

func (r *fakeSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	s, ok := r.sales[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return s, nil
}

func (r *fakeSaleRepo) NextTicketNumber(_ context.Context, _ *gorm.DB) (int, error) {
	r.nextTicket++
	return r.nextTicket, nil
}

func (r *fakeSaleRepo) List(_ context.Context, _ dto.SaleFilter) ([]model.Sale, int64, error) {
	var all []model.Sale
	for _, s := range r.sales {
		all = append(all, *s)
	}
	return all, int64(len(all)), nil
}

func (r *fakeSaleRepo) SaveVoidTx(_ *gorm.DB, saleID uuid.UUID, reason string, adjustments []model.SaleAdjustment) error {
	s, ok := r.sales[saleID]
	if !ok {
		return errors.New("not found")
	}
	s.Status = model.SaleVoided
	s.VoidReason = &reason
	s.Adjustments = append(s.Adjustments, adjustments...)
	return nil
}

func (r *fakeSaleRepo) SaveAmendmentTx(_ *gorm.DB, sale *model.Sale, newLines []model.SaleLine, adjustments []model.SaleAdjustment) error {
	s, ok := r.sales[sale.ID]
	if !ok {
		return errors.New("not found")
	}
	s.Lines = newLines
	s.Status = model.SaleAmended
	s.Disposition = sale.Disposition
	s.Total = sale.Total
	s.Adjustments = append(s.Adjustments, adjustments...)
	return nil
}

func (r *fakeSaleRepo) DB() *gorm.DB { return nil }

var _ repository.SaleRepository = (*fakeSaleRepo)(nil)

// ── In-memory SessionRepository ──────────────────────────────────────────────

type fakeSessionRepo struct {
	sessions  map[uuid.UUID]*model.CashSession
	movements []model.CashMovement
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]*model.CashSession)}
}

func (r *fakeSessionRepo) Create(_ context.Context, s *model.CashSession) error {
	// Mirrors the partial unique index: one open session per worker.
	for _, existing := range r.sessions {
		if existing.WorkerID == s.WorkerID && existing.Status == model.SessionOpen {
			return gorm.ErrDuplicatedKey
		}
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.sessions[s.ID] = s
	return nil
}

func (r *fakeSessionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.CashSession, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, errors.New("not found")
	}
	s.Movements = nil
	for _, m := range r.movements {
		if m.SessionID == id {
			s.Movements = append(s.Movements, m)
		}
	}
	return s, nil
}

func (r *fakeSessionRepo) FindOpenByWorker(_ context.Context, workerID uuid.UUID) (*model.CashSession, error) {
	for _, s := range r.sessions {
		if s.WorkerID == workerID && s.Status == model.SessionOpen {
			return s, nil
		}
	}
	return nil, nil
}

func (r *fakeSessionRepo) ApplyCashSale(_ context.Context, sessionID uuid.UUID, cashReceived, changeGiven decimal.Decimal) (int64, error) {
	s, ok := r.sessions[sessionID]
	if !ok || s.Status != model.SessionOpen {
		return 0, nil
	}
	s.CashReceived = s.CashReceived.Add(cashReceived)
	s.ChangeGiven = s.ChangeGiven.Add(changeGiven)
	return 1, nil
}

func (r *fakeSessionRepo) CreateMovement(_ context.Context, m *model.CashMovement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	r.movements = append(r.movements, *m)
	return nil
}

func (r *fakeSessionRepo) ListMovements(_ context.Context, sessionID uuid.UUID) ([]model.CashMovement, error) {
	var result []model.CashMovement
	for _, m := range r.movements {
		if m.SessionID == sessionID {
			result = append(result, m)
		}
	}
	return result, nil
}

func (r *fakeSessionRepo) Close(_ context.Context, s *model.CashSession) error {
	r.sessions[s.ID] = s
	return nil
}

func (r *fakeSessionRepo) List(_ context.Context, page, limit int) ([]model.CashSession, int64, error) {
	all := make([]model.CashSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		all = append(all, *s)
	}
	total := int64(len(all))
	start := (page - 1) * limit
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

var _ repository.SessionRepository = (*fakeSessionRepo)(nil)

// ── In-memory StockMovementRepository ────────────────────────────────────────

type fakeStockMovementRepo struct {
	movements []model.StockMovement
}

func (r *fakeStockMovementRepo) Create(_ context.Context, m *model.StockMovement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	r.movements = append(r.movements, *m)
	return nil
}

func (r *fakeStockMovementRepo) ListByProduct(_ context.Context, productID uuid.UUID, _ int) ([]model.StockMovement, error) {
	var result []model.StockMovement
	for _, m := range r.movements {
		if m.ProductID == productID {
			result = append(result, m)
		}
	}
	return result, nil
}

var _ repository.StockMovementRepository = (*fakeStockMovementRepo)(nil)

// ── In-memory OperationRepository ────────────────────────────────────────────

type fakeOperationRepo struct {
	steps []*model.OperationStep
}

func (r *fakeOperationRepo) CreateStep(_ context.Context, s *model.OperationStep) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.CreatedAt = time.Now()
	copied := *s
	r.steps = append(r.steps, &copied)
	return nil
}

func (r *fakeOperationRepo) ListByOperation(_ context.Context, operationID uuid.UUID) ([]model.OperationStep, error) {
	var result []model.OperationStep
	for _, s := range r.steps {
		if s.OperationID == operationID {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (r *fakeOperationRepo) ListFailed(_ context.Context, operationID uuid.UUID) ([]model.OperationStep, error) {
	var result []model.OperationStep
	for _, s := range r.steps {
		if s.OperationID == operationID && s.Status == model.StepFailed {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (r *fakeOperationRepo) Update(_ context.Context, s *model.OperationStep) error {
	for i, existing := range r.steps {
		if existing.ID == s.ID {
			copied := *s
			r.steps[i] = &copied
			return nil
		}
	}
	return errors.New("not found")
}

var _ repository.OperationRepository = (*fakeOperationRepo)(nil)

// ── Fake payment gateway ─────────────────────────────────────────────────────

type fakeGateway struct {
	charges map[string]*infra.GatewayCharge
	err     error
}

func (g *fakeGateway) GetCharge(_ context.Context, reference string) (*infra.GatewayCharge, error) {
	if g.err != nil {
		return nil, g.err
	}
	charge, ok := g.charges[reference]
	if !ok {
		return nil, errors.New("charge not found")
	}
	return charge, nil
}
