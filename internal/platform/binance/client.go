// Package binance is the REST client for the Binance spot account API.
// Requests are HMAC-signed server-side so credentials never reach the
// browser.
package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"folioscope/internal/crypto"
	"folioscope/internal/domain"
)

const serviceName = "binance"

// Balance is one asset balance from the account endpoint.
type Balance struct {
	Asset  string  `json:"asset"`
	Free   float64 `json:"free,string"`
	Locked float64 `json:"locked,string"`
}

// accountResponse is the signed account endpoint response.
type accountResponse struct {
	Balances []Balance `json:"balances"`
}

// apiError is Binance's embedded error envelope.
type apiError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// Client is the REST client for the Binance API.
type Client struct {
	baseURL    string
	auth       *crypto.HMACAuth
	httpClient *http.Client
}

// NewClient creates a Binance client with the given credentials. baseURL
// is the API root, e.g. "https://api.binance.com".
func NewClient(baseURL, apiKey, apiSecret string) *Client {
	return &Client{
		baseURL: baseURL,
		auth:    &crypto.HMACAuth{Key: apiKey, Secret: apiSecret},
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetBalances returns every non-zero asset balance on the spot account.
func (c *Client) GetBalances(ctx context.Context) ([]Balance, error) {
	params := url.Values{}
	params.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
	params.Set("omitZeroBalances", "true")
	query := params.Encode()
	query += "&signature=" + c.auth.SignQuery(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v3/account?"+query, nil)
	if err != nil {
		return nil, fmt.Errorf("binance: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-MBX-APIKEY", c.auth.Key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("binance: http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("binance: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var embedded apiError
		_ = json.Unmarshal(body, &embedded)
		msg := embedded.Msg
		if msg == "" {
			msg = string(body)
		}
		return nil, domain.NewUpstreamError(serviceName, resp.StatusCode, msg)
	}

	// Binance can also embed an error code in an HTTP 200 body.
	var embedded apiError
	if json.Unmarshal(body, &embedded) == nil && embedded.Code != 0 {
		return nil, domain.NewUpstreamError(serviceName, 0, embedded.Msg)
	}

	var account accountResponse
	if err := json.Unmarshal(body, &account); err != nil {
		return nil, fmt.Errorf("binance: decode account: %w", err)
	}
	return account.Balances, nil
}
