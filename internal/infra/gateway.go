package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// GatewayCharge is the gateway's view of a charge, as returned by its REST API.
// Payment processing itself happens entirely on the gateway side; the core only
// verifies that a charge reference is confirmed before recording a gateway sale.
type GatewayCharge struct {
	Reference string `json:"reference"`
	Status    string `json:"status"` // "confirmed" | "pending" | "failed"
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
}

// Confirmed reports whether the gateway settled the charge.
func (c *GatewayCharge) Confirmed() bool { return c.Status == "confirmed" }

// GatewayClient is an HTTP client for the external payment gateway.
// Calls should go through the circuit breaker so a downed gateway fast-fails
// instead of stalling every checkout.
type GatewayClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewGatewayClient(baseURL, apiKey string) *GatewayClient {
	return &GatewayClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// GetCharge fetches the charge identified by reference.
func (c *GatewayClient) GetCharge(ctx context.Context, reference string) (*GatewayCharge, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/charges/"+reference, nil)
	if err != nil {
		return nil, fmt.Errorf("gateway: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway: unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("gateway: charge %s not found", reference)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway: returned %d", resp.StatusCode)
	}

	var charge GatewayCharge
	if err := json.NewDecoder(resp.Body).Decode(&charge); err != nil {
		return nil, fmt.Errorf("gateway: decode response: %w", err)
	}
	return &charge, nil
}
