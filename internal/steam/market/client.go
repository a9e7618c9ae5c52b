// Package market resolves marketplace listing prices for items via the
// Steam Community Market price overview endpoint.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"opnskin/internal/httpx"
)

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=market_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

const defaultBaseURL = "https://steamcommunity.com/market/priceoverview/"

// Client is a client for the price overview endpoint.
type Client struct {
	baseURL    string
	httpClient HTTPClient
	header     http.Header
}

// ClientOption is a configuration option for the Client.
type ClientOption func(*Client)

// WithBaseURL sets the endpoint URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithHeader sets additional headers to be sent with each request.
func WithHeader(header http.Header) ClientOption {
	return func(c *Client) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// NewClient creates a new price overview client.
func NewClient(options ...ClientOption) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
	}
	for _, option := range options {
		option(c)
	}
	return c
}

type overviewResponse struct {
	Success     bool   `json:"success"`
	LowestPrice string `json:"lowest_price"`
	MedianPrice string `json:"median_price"`
	Volume      string `json:"volume"`
}

// LowestPrice fetches the lowest listed price for the item as the upstream's
// locale-formatted string (e.g. "30,24€"). An empty string means the market
// has no listing.
func (c *Client) LowestPrice(ctx context.Context, appID, currencyCode int, name string) (string, error) {
	q := url.Values{}
	q.Set("appid", fmt.Sprintf("%d", appID))
	q.Set("currency", fmt.Sprintf("%d", currencyCode))
	q.Set("market_hash_name", name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("market: build request: %w", err)
	}
	for key, values := range c.header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("market: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return "", &httpx.StatusError{Status: resp.StatusCode, Body: string(b)}
	}
	if err := httpx.ExpectJSON(resp); err != nil {
		return "", err
	}

	var ov overviewResponse
	if err := json.NewDecoder(resp.Body).Decode(&ov); err != nil {
		return "", fmt.Errorf("market: decode: %w", err)
	}
	if !ov.Success {
		return "", nil
	}
	return ov.LowestPrice, nil
}
