package infra

import (
	"context"
)

// BreakeredGateway wraps a GatewayClient with a circuit breaker so that a
// downed gateway fast-fails checkout instead of stalling it.
type BreakeredGateway struct {
	client *GatewayClient
	cb     *CircuitBreaker
}

func NewBreakeredGateway(client *GatewayClient, cb *CircuitBreaker) *BreakeredGateway {
	return &BreakeredGateway{client: client, cb: cb}
}

// GetCharge fetches a charge through the circuit breaker.
func (g *BreakeredGateway) GetCharge(ctx context.Context, reference string) (*GatewayCharge, error) {
	var charge *GatewayCharge
	err := g.cb.Execute(func() error {
		var callErr error
		charge, callErr = g.client.GetCharge(ctx, reference)
		return callErr
	})
	if err != nil {
		return nil, err
	}
	return charge, nil
}
