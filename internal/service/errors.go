package service

import "errors"

// Domain error taxonomy. Handlers map these onto HTTP statuses; everything
// else surfaces as a generic store error.
var (
	ErrInvalidAmount        = errors.New("amount must be greater than zero")
	ErrSessionAlreadyOpen   = errors.New("an open cash session already exists for this worker")
	ErrSessionClosed        = errors.New("cash session is not open")
	ErrSessionAlreadyClosed = errors.New("cash session is already closed")
	ErrNotFound             = errors.New("not found")
	ErrNoSelection          = errors.New("no units selected")
	ErrMissingReplacement   = errors.New("exchange requires a replacement product")
	ErrUnitSelection        = errors.New("selected units exceed the line's quantity")
	ErrStockUpdate          = errors.New("stock update failed")
	ErrSaleNotAmendable     = errors.New("sale is voided and cannot be modified")
	ErrInsufficientCash     = errors.New("cash received is less than the sale total")
	ErrGatewayUnconfirmed   = errors.New("payment gateway has not confirmed this charge")
)
