package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/SilverPhantom1/zypos-sub000/internal/model"
	"github.com/SilverPhantom1/zypos-sub000/internal/repository"
)

// StockLedger applies signed stock deltas to products. Each delta is a single
// atomic store-level increment clamped at zero on decrements — there is no
// read-modify-write window, so concurrent deltas commute safely.
//
// Callers decide how to treat failures: checkout and the amendment engine
// treat them as best-effort and log the failed step for later retry.
type StockLedger interface {
	// Apply adjusts the product's stock by delta and records an immutable
	// StockMovement. Returns the resulting stock count. Store failures wrap
	// ErrStockUpdate.
	Apply(ctx context.Context, productID uuid.UUID, delta int, movementType, reason string, refID *uuid.UUID) (int, error)
}

type stockLedger struct {
	products  repository.ProductRepository
	movements repository.StockMovementRepository
}

func NewStockLedger(products repository.ProductRepository, movements repository.StockMovementRepository) StockLedger {
	return &stockLedger{products: products, movements: movements}
}

func (s *stockLedger) Apply(ctx context.Context, productID uuid.UUID, delta int, movementType, reason string, refID *uuid.UUID) (int, error) {
	newStock, err := s.products.AdjustStock(ctx, productID, delta)
	if err != nil {
		return 0, fmt.Errorf("%w: product %s: %v", ErrStockUpdate, productID, err)
	}

	mov := &model.StockMovement{
		ProductID:  productID,
		Type:       movementType,
		Quantity:   delta,
		StockAfter: newStock,
		Reason:     reason,
		RefID:      refID,
	}
	if err := s.movements.Create(ctx, mov); err != nil {
		// The stock change itself landed; losing the audit row is not worth
		// failing the caller's workflow over.
		log.Error().Err(err).
			Str("product_id", productID.String()).
			Int("delta", delta).
			Msg("stock ledger: failed to record movement")
	}
	return newStock, nil
}
