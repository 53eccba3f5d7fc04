// Package ethereal is the REST client for the Ethereal perpetuals
// exchange API.
package ethereal

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

const serviceName = "ethereal"

// Client is the REST client for the Ethereal API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an Ethereal client. baseURL is the API root, e.g.
// "https://api.etherealtest.net".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetSubaccounts lists the sub-accounts owned by a (checksummed) address.
func (c *Client) GetSubaccounts(ctx context.Context, address string) ([]Subaccount, error) {
	params := url.Values{}
	params.Set("account", address)
	return doList[Subaccount](ctx, c, "/v1/subaccount?"+params.Encode(), "get subaccounts")
}

// GetProducts lists every perp market with index pricing.
func (c *Client) GetProducts(ctx context.Context) ([]Product, error) {
	return doList[Product](ctx, c, "/v1/product", "get products")
}

// GetPositions lists open positions for a sub-account.
func (c *Client) GetPositions(ctx context.Context, subaccountID string) ([]PerpPosition, error) {
	params := url.Values{}
	params.Set("subaccountId", subaccountID)
	params.Set("open", "true")
	return doList[PerpPosition](ctx, c, "/v1/position?"+params.Encode(), "get positions")
}

// GetBalances lists collateral balances for a sub-account. An empty list
// with open positions is a legitimate response shape.
func (c *Client) GetBalances(ctx context.Context, subaccountID string) ([]Balance, error) {
	params := url.Values{}
	params.Set("subaccountId", subaccountID)
	return doList[Balance](ctx, c, "/v1/subaccount/balance?"+params.Encode(), "get balances")
}

// doList fetches a list endpoint and unwraps the standard envelope.
func doList[T any](ctx context.Context, c *Client, path, op string) ([]T, error) {
	body, err := c.doRequest(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("ethereal: %s: %w", op, err)
	}

	var env listEnvelope[T]
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("ethereal: decode %s: %w", op, err)
	}
	if env.Code != 0 && env.Code != 200 {
		return nil, domain.NewUpstreamError(serviceName, 0, env.Message)
	}
	return env.Data, nil
}

func (c *Client) doRequest(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, domain.NewUpstreamError(serviceName, resp.StatusCode, string(body))
	}
	return body, nil
}
