// Package lighter is the REST client for the Lighter perpetuals exchange
// API (zkLighter mainnet).
package lighter

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

const serviceName = "lighter"

// Client is the REST client for the Lighter API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Lighter client. baseURL is the API root, e.g.
// "https://mainnet.zklighter.elliot.ai".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetOrderBookDetails returns metadata and index pricing for every listed
// market.
func (c *Client) GetOrderBookDetails(ctx context.Context) ([]OrderBookDetail, error) {
	body, err := c.doRequest(ctx, "/api/v1/orderBookDetails")
	if err != nil {
		return nil, fmt.Errorf("lighter: get order book details: %w", err)
	}

	var resp orderBookDetailsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("lighter: decode order book details: %w", err)
	}
	if resp.Code != 0 && resp.Code != 200 {
		return nil, domain.NewUpstreamError(serviceName, 0, resp.Message)
	}
	return resp.OrderBookDetails, nil
}

// GetAccountsByL1Address returns every sub-account owned by the given L1
// address. The address must already be in checksummed form.
func (c *Client) GetAccountsByL1Address(ctx context.Context, address string) ([]SubAccount, error) {
	params := url.Values{}
	params.Set("l1_address", address)

	body, err := c.doRequest(ctx, "/api/v1/accountsByL1Address?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("lighter: get accounts by l1 address: %w", err)
	}

	var resp accountsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("lighter: decode accounts: %w", err)
	}
	if resp.Code != 0 && resp.Code != 200 {
		return nil, domain.NewUpstreamError(serviceName, 0, resp.Message)
	}
	return resp.Accounts, nil
}

// GetAccount is the single-account lookup, used as a fallback when the
// multi-account lookup returns nothing.
func (c *Client) GetAccount(ctx context.Context, address string) (SubAccount, error) {
	params := url.Values{}
	params.Set("by", "l1_address")
	params.Set("value", address)

	body, err := c.doRequest(ctx, "/api/v1/account?"+params.Encode())
	if err != nil {
		return SubAccount{}, fmt.Errorf("lighter: get account: %w", err)
	}

	var resp accountsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return SubAccount{}, fmt.Errorf("lighter: decode account: %w", err)
	}
	if resp.Code != 0 && resp.Code != 200 {
		return SubAccount{}, domain.NewUpstreamError(serviceName, 0, resp.Message)
	}
	if len(resp.Accounts) == 0 {
		return SubAccount{}, domain.ErrNotFound
	}
	return resp.Accounts[0], nil
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
