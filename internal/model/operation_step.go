package model

import (
	"time"

	"github.com/google/uuid"
)

// Operation step statuses.
const (
	StepApplied = "applied"
	StepFailed  = "failed"
)

// Operation kinds.
const (
	OpSaleStock    = "sale_stock"
	OpVoidRestock  = "void_restock"
	OpAmendRestock = "amend_restock"
	OpExchangeOut  = "exchange_out"
)

// OperationStep is the persisted outcome log for one stock delta inside a
// multi-step workflow (checkout decrement, void restock, amendment restock or
// exchange). No distributed transaction wraps these workflows; a step that
// fails is recorded here and can be re-applied later, so partial failure is a
// visible, resumable task list instead of a silent inconsistency.
//
// Retries are operator-triggered only — the core never retries on its own.
type OperationStep struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	// OperationID groups the steps of one workflow run.
	OperationID uuid.UUID `gorm:"type:uuid;not null;index"`
	SaleID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Kind        string    `gorm:"type:varchar(20);not null"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null"`
	Delta       int       `gorm:"not null"`
	Status      string    `gorm:"type:varchar(10);not null"`
	LastError   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
