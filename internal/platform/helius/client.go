// Package helius is the REST client for the Helius Solana balances API,
// the primary balance source for Solana-family addresses.
package helius

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"folioscope/internal/domain"
)

const serviceName = "helius"

// TokenBalance is one SPL token balance with resolved metadata.
type TokenBalance struct {
	Mint     string  `json:"mint"`
	Symbol   string  `json:"symbol"`
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
	Decimals int     `json:"decimals"`
	PriceUSD float64 `json:"priceUsd"`
}

// Balances is the full balance response for one address.
type Balances struct {
	NativeBalance int64          `json:"nativeBalance"` // lamports
	Tokens        []TokenBalance `json:"tokens"`
}

// Client is the REST client for the Helius API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a Helius client. baseURL is the API root, e.g.
// "https://api.helius.xyz".
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// GetBalances returns native and SPL token balances for a Solana address.
func (c *Client) GetBalances(ctx context.Context, address string) (Balances, error) {
	params := url.Values{}
	params.Set("api-key", c.apiKey)
	path := fmt.Sprintf("/v0/addresses/%s/balances?%s", url.PathEscape(address), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return Balances{}, fmt.Errorf("helius: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Balances{}, fmt.Errorf("helius: http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Balances{}, fmt.Errorf("helius: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Balances{}, domain.NewUpstreamError(serviceName, resp.StatusCode, string(body))
	}

	var balances Balances
	if err := json.Unmarshal(body, &balances); err != nil {
		return Balances{}, fmt.Errorf("helius: decode balances: %w", err)
	}
	return balances, nil
}
