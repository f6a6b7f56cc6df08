package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

// UnitSelection picks units from one sale line at unit granularity. Units
// within a line are identical, so a selection is a count plus how many of the
// selected units came back damaged (damaged_count ≤ count). Damaged units are
// recorded in the audit breakdown but never restocked.
type UnitSelection struct {
	LineIndex    int `json:"line_index"    validate:"min=0"`
	Count        int `json:"count"         validate:"required,min=1"`
	DamagedCount int `json:"damaged_count" validate:"min=0"`
}

// VoidSaleRequest voids the whole sale — every unit of every line. Only the
// damaged units need listing; unlisted units default to good condition and
// are restocked. Reason is optional.
type VoidSaleRequest struct {
	Reason  string          `json:"reason"  validate:"omitempty,min=3"`
	Damaged []UnitSelection `json:"damaged" validate:"omitempty,dive"`
}

// AmendSaleRequest partially modifies a completed sale: the selected units are
// either returned (restocked if good) or exchanged for a single replacement
// product.
type AmendSaleRequest struct {
	Disposition string          `json:"disposition" validate:"required,oneof=return exchange"`
	Units       []UnitSelection `json:"units"       validate:"required,dive"`
	// ReplacementProductID is required when disposition = exchange.
	ReplacementProductID *string `json:"replacement_product_id" validate:"omitempty,uuid"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type AdjustmentResponse struct {
	ProductID    string `json:"product_id"`
	Kind         string `json:"kind"`
	Quantity     int    `json:"quantity"`
	GoodCount    int    `json:"good_count"`
	DamagedCount int    `json:"damaged_count"`
}

type AmendmentResponse struct {
	Sale        SaleResponse         `json:"sale"`
	Adjustments []AdjustmentResponse `json:"adjustments"`
	OperationID string               `json:"operation_id"`
	// FailedSteps counts stock deltas that did not apply; retry via the
	// operations endpoint.
	FailedSteps int `json:"failed_steps"`
}

// ─── Operations ──────────────────────────────────────────────────────────────

type OperationStepResponse struct {
	ProductID string  `json:"product_id"`
	Kind      string  `json:"kind"`
	Delta     int     `json:"delta"`
	Status    string  `json:"status"`
	LastError *string `json:"last_error,omitempty"`
}

type RetryOperationResponse struct {
	OperationID string                  `json:"operation_id"`
	Retried     int                     `json:"retried"`
	Applied     int                     `json:"applied"`
	StillFailed int                     `json:"still_failed"`
	Steps       []OperationStepResponse `json:"steps"`
}
