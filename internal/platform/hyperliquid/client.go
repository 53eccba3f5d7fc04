// Package hyperliquid is the client for the Hyperliquid info API. All
// queries go through a single POST /info endpoint discriminated by a
// type field in the request body.
package hyperliquid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"folioscope/internal/domain"
)

const serviceName = "hyperliquid"

// Client is the client for the Hyperliquid info API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Hyperliquid client. baseURL is the API root, e.g.
// "https://api.hyperliquid.xyz".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetClearinghouseState returns the perp account state for a user:
// margin summary, withdrawable balance, and open positions. The address
// must already be in checksummed form.
func (c *Client) GetClearinghouseState(ctx context.Context, address string) (ClearinghouseState, error) {
	body, err := c.doInfo(ctx, infoRequest{Type: "clearinghouseState", User: address})
	if err != nil {
		return ClearinghouseState{}, fmt.Errorf("hyperliquid: get clearinghouse state: %w", err)
	}

	var state ClearinghouseState
	if err := json.Unmarshal(body, &state); err != nil {
		return ClearinghouseState{}, fmt.Errorf("hyperliquid: decode clearinghouse state: %w", err)
	}
	return state, nil
}

// GetAllMids returns the current mid price for every listed coin.
func (c *Client) GetAllMids(ctx context.Context) (map[string]float64, error) {
	body, err := c.doInfo(ctx, infoRequest{Type: "allMids"})
	if err != nil {
		return nil, fmt.Errorf("hyperliquid: get all mids: %w", err)
	}

	var raw map[string]string
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("hyperliquid: decode all mids: %w", err)
	}

	mids := make(map[string]float64, len(raw))
	for coin, s := range raw {
		px, err := strconv.ParseFloat(s, 64)
		if err != nil {
			continue // skip unparseable entries rather than failing the map
		}
		mids[coin] = px
	}
	return mids, nil
}

func (c *Client) doInfo(ctx context.Context, reqBody infoRequest) ([]byte, error) {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/info", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
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
