// Package solscan is the REST client for the Solscan public API, used as
// the secondary Solana balance source when the primary returns nothing or
// errors.
package solscan

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

const serviceName = "solscan"

// TokenHolding is one token balance from the account tokens endpoint.
type TokenHolding struct {
	TokenAddress string  `json:"tokenAddress"`
	TokenSymbol  string  `json:"tokenSymbol"`
	TokenName    string  `json:"tokenName"`
	Amount       Amount  `json:"tokenAmount"`
	PriceUSDT    float64 `json:"priceUsdt"`
}

// Amount is Solscan's token amount shape with a pre-divided UI amount.
type Amount struct {
	UIAmount float64 `json:"uiAmount"`
	Decimals int     `json:"decimals"`
}

// Client is the REST client for the Solscan API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Solscan client. baseURL is the API root, e.g.
// "https://public-api.solscan.io".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetAccountTokens returns SPL token holdings for a Solana address.
func (c *Client) GetAccountTokens(ctx context.Context, address string) ([]TokenHolding, error) {
	params := url.Values{}
	params.Set("account", address)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/account/tokens?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("solscan: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("solscan: http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("solscan: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, domain.NewUpstreamError(serviceName, resp.StatusCode, string(body))
	}

	var holdings []TokenHolding
	if err := json.Unmarshal(body, &holdings); err != nil {
		return nil, fmt.Errorf("solscan: decode account tokens: %w", err)
	}
	return holdings, nil
}
