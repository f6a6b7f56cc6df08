package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/SilverPhantom1/zypos-sub000/internal/dto"
	"github.com/SilverPhantom1/zypos-sub000/internal/infra"
	"github.com/SilverPhantom1/zypos-sub000/internal/model"
	"github.com/SilverPhantom1/zypos-sub000/internal/repository"
	"github.com/SilverPhantom1/zypos-sub000/internal/worker"
)

// GatewayVerifier confirms an external payment-gateway charge before a
// gateway-paid sale is recorded. Payment processing itself lives entirely
// on the gateway side.
type GatewayVerifier interface {
	GetCharge(ctx context.Context, reference string) (*infra.GatewayCharge, error)
}

type SaleService interface {
	Record(ctx context.Context, workerID uuid.UUID, req dto.RecordSaleRequest) (*dto.SaleResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error)
	List(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error)
}

type saleService struct {
	repo       repository.SaleRepository
	products   repository.ProductRepository
	sessions   SessionService
	ledger     StockLedger
	steps      repository.OperationRepository
	gateway    GatewayVerifier    // nil disables gateway verification (tests)
	dispatcher *worker.Dispatcher // nil disables receipt emails (tests)
}

func NewSaleService(
	repo repository.SaleRepository,
	products repository.ProductRepository,
	sessions SessionService,
	ledger StockLedger,
	steps repository.OperationRepository,
	gateway GatewayVerifier,
	dispatcher *worker.Dispatcher,
) SaleService {
	return &saleService{
		repo:       repo,
		products:   products,
		sessions:   sessions,
		ledger:     ledger,
		steps:      steps,
		gateway:    gateway,
		dispatcher: dispatcher,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Record ───────────────────────────────────────────────────────────────────
// Checkout sequence:
//  1. Resolve products, compute line totals and the sale total.
//  2. Validate the payment (cash sufficiency / gateway confirmation).
//  3. TX: ticket number, persist sale + lines, status=completed.
//  4. Post-commit, best-effort: one stock decrement per line, each outcome
//     logged as an operation step; a failed delta never aborts the rest.
//  5. Cash sale with a session: update the till's running totals — failure is
//     logged, the sale is NOT rolled back (accepted inconsistency).
//  6. Optional receipt email, fire-and-forget.

func (s *saleService) Record(ctx context.Context, workerID uuid.UUID, req dto.RecordSaleRequest) (*dto.SaleResponse, error) {
	var sessionID *uuid.UUID
	if req.SessionID != nil {
		id, err := uuid.Parse(*req.SessionID)
		if err != nil {
			return nil, fmt.Errorf("invalid session_id: %w", err)
		}
		sessionID = &id
	}

	// 1. Resolve products and compute totals (pre-flight, outside TX)
	type resolvedLine struct {
		productID uuid.UUID
		name      string
		unitPrice decimal.Decimal
		quantity  int
		lineTotal decimal.Decimal
	}

	var resolved []resolvedLine
	total := decimal.Zero
	for _, line := range req.Lines {
		if line.Quantity < 1 {
			return nil, fmt.Errorf("%w: line quantity must be at least 1", ErrInvalidAmount)
		}
		pid, err := uuid.Parse(line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("invalid product_id: %w", err)
		}
		p, err := s.products.FindByID(ctx, pid)
		if err != nil {
			return nil, fmt.Errorf("product %s: %w", line.ProductID, ErrNotFound)
		}
		if !p.Active {
			return nil, fmt.Errorf("product %q is inactive and cannot be sold", p.Name)
		}
		if p.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: product %q has a negative price", ErrInvalidAmount, p.Name)
		}
		lineTotal := p.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		total = total.Add(lineTotal)
		resolved = append(resolved, resolvedLine{
			productID: pid,
			name:      p.Name,
			unitPrice: p.UnitPrice,
			quantity:  line.Quantity,
			lineTotal: lineTotal,
		})
	}

	// 2. Payment validation
	var cashReceived, changeGiven *decimal.Decimal
	switch req.PaymentMethod {
	case model.PayCash:
		if req.Cash == nil {
			return nil, fmt.Errorf("%w: cash details are required for cash sales", ErrInvalidAmount)
		}
		if req.Cash.CashReceived.LessThan(total) {
			return nil, ErrInsufficientCash
		}
		change := req.Cash.CashReceived.Sub(total)
		received := req.Cash.CashReceived
		cashReceived, changeGiven = &received, &change
	case model.PayGateway:
		if req.GatewayRef == nil {
			return nil, fmt.Errorf("%w: gateway_ref is required for gateway sales", ErrGatewayUnconfirmed)
		}
		if s.gateway != nil {
			charge, err := s.gateway.GetCharge(ctx, *req.GatewayRef)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrGatewayUnconfirmed, err)
			}
			if !charge.Confirmed() {
				return nil, ErrGatewayUnconfirmed
			}
		}
	}

	// 3. Persist sale + lines
	var sale model.Sale
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		ticket, err := s.repo.NextTicketNumber(ctx, tx)
		if err != nil {
			return err
		}

		sale = model.Sale{
			TicketNumber:  ticket,
			SessionID:     sessionID,
			WorkerID:      workerID,
			PaymentMethod: req.PaymentMethod,
			GatewayRef:    req.GatewayRef,
			CashReceived:  cashReceived,
			ChangeGiven:   changeGiven,
			Total:         total,
			Status:        model.SaleCompleted,
		}
		for _, r := range resolved {
			sale.Lines = append(sale.Lines, model.SaleLine{
				ProductID: r.productID,
				Name:      r.name,
				UnitPrice: r.unitPrice,
				Quantity:  r.quantity,
				LineTotal: r.lineTotal,
			})
		}
		return s.repo.Create(ctx, tx, &sale)
	})
	if txErr != nil {
		return nil, txErr
	}

	// 4. Best-effort stock decrements, one operation step per line
	operationID := uuid.New()
	for _, r := range resolved {
		s.applyLoggedDelta(ctx, operationID, sale.ID, model.OpSaleStock, r.productID, -r.quantity,
			fmt.Sprintf("sale #%d", sale.TicketNumber))
	}

	// 5. Till update for cash sales — logged, never rolled back
	if req.PaymentMethod == model.PayCash && sessionID != nil {
		if err := s.sessions.RecordCashSale(ctx, *sessionID, sale.ID, *cashReceived, *changeGiven); err != nil {
			log.Error().Err(err).
				Str("sale_id", sale.ID.String()).
				Str("session_id", sessionID.String()).
				Msg("sale: till update failed after sale was recorded")
		}
	}

	// 6. Receipt email (fire & forget)
	if s.dispatcher != nil && req.CustomerEmail != nil && *req.CustomerEmail != "" {
		_ = s.dispatcher.EnqueueReceipt(ctx, worker.ReceiptJobPayload{
			ToEmail:      *req.CustomerEmail,
			TicketNumber: sale.TicketNumber,
			Total:        total.StringFixed(2),
		})
	}

	resp := saleToResponse(&sale)
	resp.OperationID = operationID.String()
	return resp, nil
}

// applyLoggedDelta runs one stock delta and persists its outcome as an
// operation step so a failed delta can be retried later. Never returns an
// error: the workflow continues with the remaining steps regardless.
func (s *saleService) applyLoggedDelta(ctx context.Context, operationID, saleID uuid.UUID, kind string, productID uuid.UUID, delta int, reason string) {
	step := &model.OperationStep{
		OperationID: operationID,
		SaleID:      saleID,
		Kind:        kind,
		ProductID:   productID,
		Delta:       delta,
		Status:      model.StepApplied,
	}
	if _, err := s.ledger.Apply(ctx, productID, delta, kindToMovementType(kind), reason, &saleID); err != nil {
		msg := err.Error()
		step.Status = model.StepFailed
		step.LastError = &msg
		log.Error().Err(err).
			Str("sale_id", saleID.String()).
			Str("product_id", productID.String()).
			Int("delta", delta).
			Msg("sale: stock delta failed — continuing with remaining steps")
	}
	if err := s.steps.CreateStep(ctx, step); err != nil {
		log.Error().Err(err).Str("sale_id", saleID.String()).Msg("sale: failed to persist operation step")
	}
}

func kindToMovementType(kind string) string {
	switch kind {
	case model.OpSaleStock:
		return "sale"
	case model.OpVoidRestock:
		return "void_restock"
	case model.OpAmendRestock:
		return "return_restock"
	case model.OpExchangeOut:
		return "exchange_out"
	default:
		return "manual_adjust"
	}
}

// ── Reads ────────────────────────────────────────────────────────────────────

func (s *saleService) Get(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return saleToResponse(sale), nil
}

func (s *saleService) List(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	sales, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SaleResponse, 0, len(sales))
	for i := range sales {
		items = append(items, *saleToResponse(&sales[i]))
	}
	return &dto.SaleListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func saleToResponse(v *model.Sale) *dto.SaleResponse {
	lines := make([]dto.SaleLineResponse, 0, len(v.Lines))
	for _, l := range v.Lines {
		lines = append(lines, dto.SaleLineResponse{
			ProductID: l.ProductID.String(),
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			LineTotal: l.LineTotal,
		})
	}
	resp := &dto.SaleResponse{
		ID:            v.ID.String(),
		TicketNumber:  v.TicketNumber,
		Lines:         lines,
		Total:         v.Total,
		PaymentMethod: v.PaymentMethod,
		CashReceived:  v.CashReceived,
		ChangeGiven:   v.ChangeGiven,
		Status:        v.Status,
		VoidReason:    v.VoidReason,
		Disposition:   v.Disposition,
		CreatedAt:     v.CreatedAt.Format(time.RFC3339),
	}
	if v.SessionID != nil {
		id := v.SessionID.String()
		resp.SessionID = &id
	}
	return resp
}
