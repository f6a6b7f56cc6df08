package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/SilverPhantom1/zypos-sub000/internal/dto"
	"github.com/SilverPhantom1/zypos-sub000/internal/model"
	"github.com/SilverPhantom1/zypos-sub000/internal/repository"
)

// Dispositions for partial amendments.
const (
	DispositionReturn   = "return"
	DispositionExchange = "exchange"
)

// AmendmentService mutates a previously recorded sale at unit granularity:
// whole-sale void, partial return, or partial exchange. Stock-restoring
// writes are issued sequentially per product group and each is awaited
// before the sale document is rewritten; there is no cross-operation
// isolation (last writer wins on the sale row).
type AmendmentService interface {
	Void(ctx context.Context, saleID uuid.UUID, req dto.VoidSaleRequest) (*dto.AmendmentResponse, error)
	Amend(ctx context.Context, saleID uuid.UUID, req dto.AmendSaleRequest) (*dto.AmendmentResponse, error)
}

type amendmentService struct {
	repo     repository.SaleRepository
	products repository.ProductRepository
	ledger   StockLedger
	steps    repository.OperationRepository
}

func NewAmendmentService(
	repo repository.SaleRepository,
	products repository.ProductRepository,
	ledger StockLedger,
	steps repository.OperationRepository,
) AmendmentService {
	return &amendmentService{repo: repo, products: products, ledger: ledger, steps: steps}
}

// ── Void ─────────────────────────────────────────────────────────────────────
// A void always applies to ALL units of the sale — there is no partial void.
// Good-condition units restock; damaged units are recorded but never do.

func (s *amendmentService) Void(ctx context.Context, saleID uuid.UUID, req dto.VoidSaleRequest) (*dto.AmendmentResponse, error) {
	sale, err := s.repo.FindByID(ctx, saleID)
	if err != nil {
		return nil, ErrNotFound
	}
	if sale.Status == model.SaleVoided {
		return nil, ErrSaleNotAmendable
	}

	units := expandUnits(sale)
	// Every unit participates in a void; the request only marks the damaged ones.
	for i := range units {
		units[i].Selected = true
	}
	if err := markDamaged(units, sale, req.Damaged); err != nil {
		return nil, err
	}

	groups := groupSelected(units)
	adjustments := make([]model.SaleAdjustment, 0, len(groups))
	for _, g := range groups {
		adjustments = append(adjustments, model.SaleAdjustment{
			SaleID:       sale.ID,
			ProductID:    g.ProductID,
			Kind:         "void",
			Quantity:     g.Quantity,
			GoodCount:    g.Good,
			DamagedCount: g.Damaged,
		})
	}

	// Restock first, sale rewrite after — per-group, awaited, best-effort.
	operationID := uuid.New()
	failed := 0
	for _, g := range groups {
		if g.Good == 0 {
			continue
		}
		if !s.applyLoggedDelta(ctx, operationID, sale.ID, model.OpVoidRestock, g.ProductID, g.Good,
			fmt.Sprintf("void sale #%d", sale.TicketNumber)) {
			failed++
		}
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.SaveVoidTx(tx, sale.ID, req.Reason, adjustments)
	})
	if txErr != nil {
		return nil, txErr
	}

	sale.Status = model.SaleVoided
	if req.Reason != "" {
		sale.VoidReason = &req.Reason
	}
	return buildAmendmentResponse(sale, adjustments, operationID, failed), nil
}

// markDamaged applies damage markings to an all-selected unit set. Like
// markSelection, counts are validated per line in aggregate so duplicate
// entries for the same line cannot slip past the quantity check.
func markDamaged(units []Unit, sale *model.Sale, damaged []dto.UnitSelection) error {
	requested := make(map[int]int)
	for _, sel := range damaged {
		if sel.LineIndex < 0 || sel.LineIndex >= len(sale.Lines) {
			return fmt.Errorf("%w: line index %d out of range", ErrUnitSelection, sel.LineIndex)
		}
		requested[sel.LineIndex] += sel.Count
		if requested[sel.LineIndex] > sale.Lines[sel.LineIndex].Quantity {
			return fmt.Errorf("%w: line %d holds %d units", ErrUnitSelection, sel.LineIndex, sale.Lines[sel.LineIndex].Quantity)
		}
	}
	for _, sel := range damaged {
		marked := 0
		for i := range units {
			if units[i].SourceLine != sel.LineIndex || units[i].Damaged {
				continue
			}
			if marked == sel.Count {
				break
			}
			units[i].Damaged = true
			marked++
		}
	}
	return nil
}

// ── Amend ────────────────────────────────────────────────────────────────────
// Partial return or exchange of an operator-selected unit subset:
//  1. Mark and group the selected units per product (good vs damaged).
//  2. Restock good-condition counts of the returned products.
//  3. Exchange only: decrement the replacement product by the TOTAL selected
//     count (damaged units were still handed over and replaced).
//  4. Recompute remaining lines; drop lines that reach zero.
//  5. Exchange only: merge the replacement into the remaining lines.
//  6. Persist status=amended with the recomputed lines/total and the
//     per-product audit breakdown. This overwrites the previous line state.

func (s *amendmentService) Amend(ctx context.Context, saleID uuid.UUID, req dto.AmendSaleRequest) (*dto.AmendmentResponse, error) {
	sale, err := s.repo.FindByID(ctx, saleID)
	if err != nil {
		return nil, ErrNotFound
	}
	if sale.Status == model.SaleVoided {
		return nil, ErrSaleNotAmendable
	}
	if len(req.Units) == 0 {
		return nil, ErrNoSelection
	}

	var replacement *model.Product
	if req.Disposition == DispositionExchange {
		if req.ReplacementProductID == nil {
			return nil, ErrMissingReplacement
		}
		rid, err := uuid.Parse(*req.ReplacementProductID)
		if err != nil {
			return nil, fmt.Errorf("invalid replacement_product_id: %w", err)
		}
		replacement, err = s.products.FindByID(ctx, rid)
		if err != nil {
			return nil, fmt.Errorf("replacement product: %w", ErrNotFound)
		}
		if !replacement.Active {
			return nil, fmt.Errorf("replacement product %q is inactive", replacement.Name)
		}
	}

	// 1. Derive units from the sale's current lines and mark the selection.
	units := expandUnits(sale)
	if err := markSelection(units, sale, req.Units); err != nil {
		return nil, err
	}
	groups := groupSelected(units)
	totalSelected := 0
	for _, g := range groups {
		totalSelected += g.Quantity
	}
	if totalSelected == 0 {
		return nil, ErrNoSelection
	}

	adjustmentKind := DispositionReturn
	if req.Disposition == DispositionExchange {
		adjustmentKind = "exchange_out"
	}
	adjustments := make([]model.SaleAdjustment, 0, len(groups)+1)
	for _, g := range groups {
		adjustments = append(adjustments, model.SaleAdjustment{
			SaleID:       sale.ID,
			ProductID:    g.ProductID,
			Kind:         adjustmentKind,
			Quantity:     g.Quantity,
			GoodCount:    g.Good,
			DamagedCount: g.Damaged,
		})
	}

	// 2–3. Stock adjustments — sequential, awaited, best-effort.
	operationID := uuid.New()
	failed := 0
	for _, g := range groups {
		if g.Good == 0 {
			continue
		}
		if !s.applyLoggedDelta(ctx, operationID, sale.ID, model.OpAmendRestock, g.ProductID, g.Good,
			fmt.Sprintf("%s on sale #%d", req.Disposition, sale.TicketNumber)) {
			failed++
		}
	}
	if replacement != nil {
		if !s.applyLoggedDelta(ctx, operationID, sale.ID, model.OpExchangeOut, replacement.ID, -totalSelected,
			fmt.Sprintf("exchange on sale #%d", sale.TicketNumber)) {
			failed++
		}
		adjustments = append(adjustments, model.SaleAdjustment{
			SaleID:    sale.ID,
			ProductID: replacement.ID,
			Kind:      "exchange_in",
			Quantity:  totalSelected,
		})
	}

	// 4. Recompute remaining lines.
	drawn := selectedPerLine(units)
	var newLines []model.SaleLine
	for i, line := range sale.Lines {
		remaining := line.Quantity - drawn[i]
		if remaining <= 0 {
			continue
		}
		newLines = append(newLines, model.SaleLine{
			SaleID:    sale.ID,
			ProductID: line.ProductID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice,
			Quantity:  remaining,
			LineTotal: line.UnitPrice.Mul(decimal.NewFromInt(int64(remaining))),
		})
	}

	// 5. Merge the replacement into the remaining lines.
	if replacement != nil {
		merged := false
		for i := range newLines {
			if newLines[i].ProductID == replacement.ID {
				newLines[i].Quantity += totalSelected
				newLines[i].LineTotal = newLines[i].UnitPrice.Mul(decimal.NewFromInt(int64(newLines[i].Quantity)))
				merged = true
				break
			}
		}
		if !merged {
			newLines = append(newLines, model.SaleLine{
				SaleID:    sale.ID,
				ProductID: replacement.ID,
				Name:      replacement.Name,
				UnitPrice: replacement.UnitPrice,
				Quantity:  totalSelected,
				LineTotal: replacement.UnitPrice.Mul(decimal.NewFromInt(int64(totalSelected))),
			})
		}
	}

	// 6. Recompute the total and persist.
	newTotal := decimal.Zero
	for _, l := range newLines {
		newTotal = newTotal.Add(l.LineTotal)
	}
	disposition := req.Disposition
	sale.Total = newTotal
	sale.Disposition = &disposition
	sale.Status = model.SaleAmended

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.SaveAmendmentTx(tx, sale, newLines, adjustments)
	})
	if txErr != nil {
		return nil, txErr
	}

	sale.Lines = newLines
	return buildAmendmentResponse(sale, adjustments, operationID, failed), nil
}

// applyLoggedDelta mirrors the sale recorder's step logging: run the delta,
// persist the outcome, keep going. Returns false when the delta failed.
func (s *amendmentService) applyLoggedDelta(ctx context.Context, operationID, saleID uuid.UUID, kind string, productID uuid.UUID, delta int, reason string) bool {
	step := &model.OperationStep{
		OperationID: operationID,
		SaleID:      saleID,
		Kind:        kind,
		ProductID:   productID,
		Delta:       delta,
		Status:      model.StepApplied,
	}
	ok := true
	if _, err := s.ledger.Apply(ctx, productID, delta, kindToMovementType(kind), reason, &saleID); err != nil {
		msg := err.Error()
		step.Status = model.StepFailed
		step.LastError = &msg
		ok = false
		log.Error().Err(err).
			Str("sale_id", saleID.String()).
			Str("product_id", productID.String()).
			Int("delta", delta).
			Msg("amendment: stock delta failed — continuing with remaining steps")
	}
	if err := s.steps.CreateStep(ctx, step); err != nil {
		log.Error().Err(err).Str("sale_id", saleID.String()).Msg("amendment: failed to persist operation step")
	}
	return ok
}

func buildAmendmentResponse(sale *model.Sale, adjustments []model.SaleAdjustment, operationID uuid.UUID, failed int) *dto.AmendmentResponse {
	adj := make([]dto.AdjustmentResponse, 0, len(adjustments))
	for _, a := range adjustments {
		adj = append(adj, dto.AdjustmentResponse{
			ProductID:    a.ProductID.String(),
			Kind:         a.Kind,
			Quantity:     a.Quantity,
			GoodCount:    a.GoodCount,
			DamagedCount: a.DamagedCount,
		})
	}
	resp := &dto.AmendmentResponse{
		Sale:        *saleToResponse(sale),
		Adjustments: adj,
		OperationID: operationID.String(),
		FailedSteps: failed,
	}
	resp.Sale.OperationID = operationID.String()
	return resp
}
