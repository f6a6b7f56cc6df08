package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// SaleFilter is bound from the query string of GET /v1/sales.
type SaleFilter struct {
	Date     string `form:"date"`   // YYYY-MM-DD; empty = today
	Status   string `form:"status"` // completed | voided | amended | all
	WorkerID string `form:"worker_id"`
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type SaleLineRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"   validate:"required,min=1"`
}

// CashDetails accompanies cash-paid sales.
type CashDetails struct {
	CashReceived decimal.Decimal `json:"cash_received" validate:"required"`
}

type RecordSaleRequest struct {
	Lines         []SaleLineRequest `json:"lines"          validate:"required,min=1,dive"`
	PaymentMethod string            `json:"payment_method" validate:"required,oneof=cash transfer gateway"`
	// SessionID links a cash sale to the worker's open till session; optional.
	SessionID *string      `json:"session_id"    validate:"omitempty,uuid"`
	Cash      *CashDetails `json:"cash"          validate:"omitempty"`
	// GatewayRef is required when payment_method = gateway.
	GatewayRef *string `json:"gateway_ref"   validate:"omitempty,min=4"`
	// CustomerEmail: optional — when present, a receipt is mailed asynchronously.
	CustomerEmail *string `json:"customer_email" validate:"omitempty,email"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaleLineResponse struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type SaleResponse struct {
	ID            string             `json:"id"`
	TicketNumber  int                `json:"ticket_number"`
	SessionID     *string            `json:"session_id,omitempty"`
	Lines         []SaleLineResponse `json:"lines"`
	Total         decimal.Decimal    `json:"total"`
	PaymentMethod string             `json:"payment_method"`
	CashReceived  *decimal.Decimal   `json:"cash_received,omitempty"`
	ChangeGiven   *decimal.Decimal   `json:"change_given,omitempty"`
	Status        string             `json:"status"`
	VoidReason    *string            `json:"void_reason,omitempty"`
	Disposition   *string            `json:"disposition,omitempty"`
	// OperationID identifies the stock-delta workflow run for this request;
	// failed steps can be retried via POST /v1/operations/:id/retry.
	OperationID string `json:"operation_id,omitempty"`
	CreatedAt   string `json:"created_at"`
}

type SaleListResponse struct {
	Data  []SaleResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}
