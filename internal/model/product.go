package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry with a live stock count.
// Stock is only ever changed through signed deltas (see repository.ProductRepository.AdjustStock);
// the column is clamped at zero on decrements at the store level.
type Product struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SKU       string          `gorm:"uniqueIndex;not null"`
	Name      string          `gorm:"index;not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Stock     int             `gorm:"not null;default:0"`
	Active    bool            `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
