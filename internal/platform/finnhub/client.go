// Package finnhub is the REST client for the Finnhub stock quote API.
package finnhub

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

const serviceName = "finnhub"

// Quote is one symbol's quote: current price, absolute and percent
// change, and the quote timestamp.
type Quote struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	ChangePercent float64 `json:"dp"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	PrevClose     float64 `json:"pc"`
	Timestamp     int64   `json:"t"`
}

// SearchResult is one match from symbol search.
type SearchResult struct {
	Symbol      string `json:"symbol"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

type searchResponse struct {
	Count  int            `json:"count"`
	Result []SearchResult `json:"result"`
}

// Client is the REST client for the Finnhub API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a Finnhub client. baseURL is the API root, e.g.
// "https://finnhub.io/api/v1".
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Configured reports whether an API token is present.
func (c *Client) Configured() bool {
	return c.token != ""
}

// GetQuote returns the current quote for one ticker symbol.
func (c *Client) GetQuote(ctx context.Context, symbol string) (Quote, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("token", c.token)

	body, err := c.doRequest(ctx, "/quote?"+params.Encode())
	if err != nil {
		return Quote{}, fmt.Errorf("finnhub: get quote %s: %w", symbol, err)
	}

	var q Quote
	if err := json.Unmarshal(body, &q); err != nil {
		return Quote{}, fmt.Errorf("finnhub: decode quote %s: %w", symbol, err)
	}
	return q, nil
}

// SearchSymbols looks up ticker symbols matching a free-text query.
func (c *Client) SearchSymbols(ctx context.Context, query string) ([]SearchResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("token", c.token)

	body, err := c.doRequest(ctx, "/search?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("finnhub: search symbols: %w", err)
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("finnhub: decode search: %w", err)
	}
	return resp.Result, nil
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
