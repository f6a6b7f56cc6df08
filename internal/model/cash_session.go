package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cash session statuses. Transitions: open → closed. Closing is terminal.
const (
	SessionOpen   = "open"
	SessionClosed = "closed"
)

// CashSession is one open-drawer period for one worker: the span between
// declaring an opening float and closing out. Cumulative totals only grow
// while the session is open and are frozen at close.
//
// At most one open session may exist per worker — enforced by a partial
// unique index on (worker_id) WHERE status = 'open' (see infra schema patches),
// not by a check-then-act query.
type CashSession struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	WorkerID uuid.UUID `gorm:"type:uuid;not null;index"`

	OpeningFloat decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CashReceived decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ChangeGiven  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	// ClosingTotal is computed at close: OpeningFloat + CashReceived − ChangeGiven.
	ClosingTotal *decimal.Decimal `gorm:"type:decimal(12,2)"`

	Status   string `gorm:"type:varchar(10);not null;default:'open'"`
	OpenedAt time.Time
	ClosedAt *time.Time

	Movements []CashMovement `gorm:"foreignKey:SessionID"`
}

// CashMovement is an immutable ledger entry recording one cash sale against a
// session. Movements are never modified or deleted; the ordered set of SaleIDs
// is the session's linked-sale sequence.
type CashMovement struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	SaleID       uuid.UUID       `gorm:"type:uuid;not null"`
	CashReceived decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ChangeGiven  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt    time.Time
}
