package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/SilverPhantom1/zypos-sub000/internal/dto"
	"github.com/SilverPhantom1/zypos-sub000/internal/model"
	"github.com/SilverPhantom1/zypos-sub000/internal/repository"
)

// OperationService re-applies the failed steps of a past stock-delta workflow.
// Applied steps are skipped, so a retry is idempotent with respect to work
// that already landed. Retries are operator-triggered only — nothing in the
// core retries automatically.
type OperationService interface {
	Retry(ctx context.Context, operationID uuid.UUID) (*dto.RetryOperationResponse, error)
}

type operationService struct {
	repo   repository.OperationRepository
	ledger StockLedger
}

func NewOperationService(repo repository.OperationRepository, ledger StockLedger) OperationService {
	return &operationService{repo: repo, ledger: ledger}
}

func (s *operationService) Retry(ctx context.Context, operationID uuid.UUID) (*dto.RetryOperationResponse, error) {
	// Only the failed steps are fetched for re-application; applied steps
	// never re-run.
	failed, err := s.repo.ListFailed(ctx, operationID)
	if err != nil {
		return nil, err
	}

	resp := &dto.RetryOperationResponse{OperationID: operationID.String()}
	for i := range failed {
		step := &failed[i]
		resp.Retried++

		_, applyErr := s.ledger.Apply(ctx, step.ProductID, step.Delta, kindToMovementType(step.Kind),
			"operator retry", &step.SaleID)
		if applyErr != nil {
			msg := applyErr.Error()
			step.LastError = &msg
			resp.StillFailed++
			log.Warn().Err(applyErr).
				Str("operation_id", operationID.String()).
				Str("product_id", step.ProductID.String()).
				Msg("operation retry: step failed again")
		} else {
			step.Status = model.StepApplied
			step.LastError = nil
			resp.Applied++
		}
		if err := s.repo.Update(ctx, step); err != nil {
			log.Error().Err(err).Str("operation_id", operationID.String()).Msg("operation retry: failed to persist step outcome")
		}
	}

	// The response lists every step of the operation with its post-retry
	// status; re-read after the updates above have been persisted.
	all, err := s.repo.ListByOperation(ctx, operationID)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, ErrNotFound
	}
	for _, step := range all {
		resp.Steps = append(resp.Steps, dto.OperationStepResponse{
			ProductID: step.ProductID.String(),
			Kind:      step.Kind,
			Delta:     step.Delta,
			Status:    step.Status,
			LastError: step.LastError,
		})
	}
	return resp, nil
}
