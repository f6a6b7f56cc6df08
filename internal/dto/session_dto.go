package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OpenSessionRequest struct {
	OpeningFloat decimal.Decimal `json:"opening_float" validate:"required"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CashMovementResponse struct {
	SaleID       string          `json:"sale_id"`
	CashReceived decimal.Decimal `json:"cash_received"`
	ChangeGiven  decimal.Decimal `json:"change_given"`
	CreatedAt    string          `json:"created_at"`
}

type SessionResponse struct {
	ID           string          `json:"id"`
	WorkerID     string          `json:"worker_id"`
	OpeningFloat decimal.Decimal `json:"opening_float"`
	CashReceived decimal.Decimal `json:"cash_received"`
	ChangeGiven  decimal.Decimal `json:"change_given"`
	// ClosingTotal = opening_float + cash_received − change_given; only set once closed.
	ClosingTotal  *decimal.Decimal       `json:"closing_total,omitempty"`
	Status        string                 `json:"status"`
	LinkedSaleIDs []string               `json:"linked_sale_ids"`
	Movements     []CashMovementResponse `json:"movements,omitempty"`
	OpenedAt      string                 `json:"opened_at"`
	ClosedAt      *string                `json:"closed_at,omitempty"`
}

type CloseSessionResponse struct {
	ID           string          `json:"id"`
	ClosingTotal decimal.Decimal `json:"closing_total"`
	Status       string          `json:"status"`
	ClosedAt     string          `json:"closed_at"`
}

type SessionListResponse struct {
	Data  []SessionResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
