package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale statuses.
const (
	SaleCompleted = "completed"
	SaleVoided    = "voided"
	SaleAmended   = "amended"
)

// Payment methods.
const (
	PayCash     = "cash"
	PayTransfer = "transfer"
	PayGateway  = "gateway"
)

// Sale is a completed transaction. It is created once at checkout and mutated
// only by the amendment engine (status → voided or amended, with recomputed
// lines and total). Sales are never deleted.
//
// Invariant: Total == SUM(lines.LineTotal) and LineTotal == UnitPrice × Quantity
// for every line, at creation and after every amendment.
type Sale struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TicketNumber int        `gorm:"uniqueIndex;not null"`
	SessionID    *uuid.UUID `gorm:"type:uuid;index"`
	WorkerID     uuid.UUID  `gorm:"type:uuid;not null;index"`

	PaymentMethod string `gorm:"type:varchar(20);not null"`
	// GatewayRef is the external charge reference for gateway-paid sales.
	GatewayRef   *string          `gorm:"type:varchar(80)"`
	CashReceived *decimal.Decimal `gorm:"type:decimal(12,2)"`
	ChangeGiven  *decimal.Decimal `gorm:"type:decimal(12,2)"`

	Total  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status string          `gorm:"type:varchar(20);not null;default:'completed'"`

	VoidReason *string
	// Disposition records the last amendment type: "return" | "exchange".
	Disposition *string `gorm:"type:varchar(20)"`

	Lines       []SaleLine       `gorm:"foreignKey:SaleID"`
	Adjustments []SaleAdjustment `gorm:"foreignKey:SaleID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SaleLine is one line item of a sale. Name and UnitPrice are captured at sale
// time so later catalog edits do not rewrite history.
type SaleLine struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"`
	Name      string          `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Quantity  int             `gorm:"not null"`
	LineTotal decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

// SaleAdjustment is the per-product audit breakdown written by a void or
// amendment: how many units were affected and how they were dispositioned.
// Rows are append-only; the pre-amendment line state is not retained beyond them.
// Kind: "void" | "return" | "exchange_out" | "exchange_in"
type SaleAdjustment struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID       uuid.UUID `gorm:"type:uuid;index;not null"`
	ProductID    uuid.UUID `gorm:"type:uuid;not null"`
	Kind         string    `gorm:"type:varchar(20);not null"`
	Quantity     int       `gorm:"not null"`
	GoodCount    int       `gorm:"not null"`
	DamagedCount int       `gorm:"not null"`
	CreatedAt    time.Time
}
