// Package debank is the REST client for the DeBank-style wallet
// aggregator API, the source of truth for raw wallet token balances and
// DeFi protocol holdings on EVM chains.
package debank

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

const serviceName = "debank"

// Client is the REST client for the wallet aggregator API.
type Client struct {
	baseURL    string
	accessKey  string
	httpClient *http.Client
}

// NewClient creates a wallet aggregator client. baseURL is the API root,
// e.g. "https://pro-openapi.debank.com". accessKey may be empty; callers
// are expected to route to demo data in that case before reaching here.
func NewClient(baseURL, accessKey string) *Client {
	return &Client{
		baseURL:   baseURL,
		accessKey: accessKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Configured reports whether an access key is present.
func (c *Client) Configured() bool {
	return c.accessKey != ""
}

// GetWalletTokens returns every token balance held directly by the
// address across all supported chains.
func (c *Client) GetWalletTokens(ctx context.Context, address string) ([]RawToken, error) {
	params := url.Values{}
	params.Set("id", address)
	params.Set("is_all", "false")

	body, err := c.doRequest(ctx, "/v1/user/all_token_list?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("debank: get wallet tokens: %w", err)
	}

	var tokens []RawToken
	if err := json.Unmarshal(body, &tokens); err != nil {
		return nil, fmt.Errorf("debank: decode wallet tokens: %w", err)
	}
	return tokens, nil
}

// GetWalletProtocols returns the address's DeFi protocol positions with
// full portfolio item breakdowns.
func (c *Client) GetWalletProtocols(ctx context.Context, address string) ([]RawProtocol, error) {
	params := url.Values{}
	params.Set("id", address)

	body, err := c.doRequest(ctx, "/v1/user/all_complex_protocol_list?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("debank: get wallet protocols: %w", err)
	}

	var protocols []RawProtocol
	if err := json.Unmarshal(body, &protocols); err != nil {
		return nil, fmt.Errorf("debank: decode wallet protocols: %w", err)
	}
	return protocols, nil
}

// doRequest sends a GET request with the access key header and returns
// the response body after error normalization.
func (c *Client) doRequest(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("AccessKey", c.accessKey)

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

	// Some failures come back as HTTP 200 with an embedded error envelope.
	var embedded apiError
	if json.Unmarshal(body, &embedded) == nil && embedded.ErrorCode != 0 {
		return nil, domain.NewUpstreamError(serviceName, 0, embedded.Message)
	}

	return body, nil
}
