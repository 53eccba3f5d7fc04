// Package coinbase is the REST client for the Coinbase Advanced Trade
// accounts API. Requests are HMAC-signed server-side.
package coinbase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"folioscope/internal/crypto"
	"folioscope/internal/domain"
)

const serviceName = "coinbase"

// Account is one currency account with its available and held balances.
type Account struct {
	UUID             string       `json:"uuid"`
	Currency         string       `json:"currency"`
	AvailableBalance AmountString `json:"available_balance"`
	Hold             AmountString `json:"hold"`
}

// AmountString is Coinbase's {value, currency} money shape.
type AmountString struct {
	Value    float64 `json:"value,string"`
	Currency string  `json:"currency"`
}

type accountsResponse struct {
	Accounts []Account `json:"accounts"`
	HasNext  bool      `json:"has_next"`
	Cursor   string    `json:"cursor"`
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Client is the REST client for the Coinbase API.
type Client struct {
	baseURL    string
	auth       *crypto.HMACAuth
	httpClient *http.Client
}

// NewClient creates a Coinbase client with the given credentials.
// baseURL is the API root, e.g. "https://api.coinbase.com".
func NewClient(baseURL, apiKey, apiSecret string) *Client {
	return &Client{
		baseURL: baseURL,
		auth:    &crypto.HMACAuth{Key: apiKey, Secret: apiSecret},
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetAccounts returns every currency account, following pagination.
func (c *Client) GetAccounts(ctx context.Context) ([]Account, error) {
	var accounts []Account
	cursor := ""

	for {
		path := "/api/v3/brokerage/accounts?limit=250"
		if cursor != "" {
			path += "&cursor=" + cursor
		}

		page, err := c.getAccountsPage(ctx, path)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, page.Accounts...)

		if !page.HasNext || page.Cursor == "" {
			return accounts, nil
		}
		cursor = page.Cursor
	}
}

func (c *Client) getAccountsPage(ctx context.Context, path string) (accountsResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return accountsResponse{}, fmt.Errorf("coinbase: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range c.auth.CoinbaseHeaders(http.MethodGet, path, "") {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return accountsResponse{}, fmt.Errorf("coinbase: http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return accountsResponse{}, fmt.Errorf("coinbase: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var embedded apiError
		_ = json.Unmarshal(body, &embedded)
		msg := embedded.Message
		if msg == "" {
			msg = string(body)
		}
		return accountsResponse{}, domain.NewUpstreamError(serviceName, resp.StatusCode, msg)
	}

	var page accountsResponse
	if err := json.Unmarshal(body, &page); err != nil {
		return accountsResponse{}, fmt.Errorf("coinbase: decode accounts: %w", err)
	}
	return page, nil
}
