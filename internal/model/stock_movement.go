package model

import (
	"time"

	"github.com/google/uuid"
)

// StockMovement records each signed stock change applied to a product.
// Created automatically on sale, void, return, exchange, and manual adjustment.
type StockMovement struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Type       string    `gorm:"not null"` // "sale" | "void_restock" | "return_restock" | "exchange_out" | "manual_adjust"
	Quantity   int       `gorm:"not null"` // positive = in, negative = out
	StockAfter int       `gorm:"not null"`
	Reason     string
	// RefID links to the originating sale or operation if applicable.
	RefID     *uuid.UUID `gorm:"type:uuid"`
	CreatedAt time.Time
}

// TableName overrides GORM's default pluralization.
func (StockMovement) TableName() string { return "stock_movements" }
