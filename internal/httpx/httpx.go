package httpx

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a small wrapper around http.Client with sane defaults,
// optional proxy routing, and retry with exponential backoff.
//
// Steam endpoints sit behind anti-bot protections and will happily answer
// HTTP 200 with an HTML error page when throttled, so ExpectJSON treats a
// non-JSON content type as a failure regardless of status.
type Client struct {
	HTTP      *http.Client
	Direct    *http.Client // fallback when the proxied path fails
	UserAgent string
	Headers   map[string]string

	MaxRetries int
	BackoffMin time.Duration

	proxied bool
}

// Options controls construction of a Client.
type Options struct {
	Timeout    time.Duration
	ProxyURL   string // empty disables proxy routing
	MaxRetries int
	BackoffMin time.Duration
}

func New(opts Options) (*Client, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.BackoffMin <= 0 {
		opts.BackoffMin = 500 * time.Millisecond
	}

	c := &Client{
		UserAgent:  "opnskin/1.0",
		MaxRetries: opts.MaxRetries,
		BackoffMin: opts.BackoffMin,
	}

	direct := &http.Client{Timeout: opts.Timeout, Transport: newTransport(nil)}
	c.Direct = direct
	c.HTTP = direct

	if opts.ProxyURL != "" {
		pu, err := url.Parse(opts.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("httpx: parse proxy url: %w", err)
		}
		c.HTTP = &http.Client{Timeout: opts.Timeout, Transport: newTransport(pu)}
		c.proxied = true
	}
	return c, nil
}

func newTransport(proxy *url.URL) *http.Transport {
	t := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 3 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          200,
		MaxIdleConnsPerHost:   100,
		MaxConnsPerHost:       100,
		ForceAttemptHTTP2:     true,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   3 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: 5 * time.Second,
	}
	if proxy != nil {
		t.Proxy = http.ProxyURL(proxy)
	}
	return t
}

// Do sends the request applying default headers.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	c.applyHeaders(req)
	return c.HTTP.Do(req.WithContext(ctx))
}

func (c *Client) applyHeaders(req *http.Request) {
	if c.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	for k, v := range c.Headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}
}

// GetJSON fetches url, retrying transient failures with exponential backoff.
// It validates that the response declares a JSON content type and returns the
// body. If the proxied path keeps failing, one final direct attempt is made
// before giving up.
func (c *Client) GetJSON(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.BackoffMin << (attempt - 1)
			t := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return nil, ctx.Err()
			case <-t.C:
			}
		}
		body, err := c.getJSONOnce(ctx, c.HTTP, rawURL, headers)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, lastErr
		}
	}

	if c.proxied {
		// degrade gracefully: one direct attempt before reporting failure
		body, err := c.getJSONOnce(ctx, c.Direct, rawURL, headers)
		if err == nil {
			return body, nil
		}
		lastErr = fmt.Errorf("direct fallback: %w", err)
	}
	return nil, lastErr
}

func (c *Client) getJSONOnce(ctx context.Context, hc *http.Client, rawURL string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	c.applyHeaders(req)

	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{Status: resp.StatusCode, Body: string(b)}
	}
	if err := ExpectJSON(resp); err != nil {
		return nil, err
	}
	return io.ReadAll(resp.Body)
}

// ExpectJSON fails when the response does not declare a JSON content type.
func ExpectJSON(resp *http.Response) error {
	ct := resp.Header.Get("Content-Type")
	if strings.Contains(ct, "json") {
		return nil
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
	return fmt.Errorf("httpx: non-JSON response (content-type %q): %s", ct, strings.TrimSpace(string(b)))
}

// StatusError reports a non-2xx upstream status with a body sample.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("httpx: status %d: %s", e.Status, strings.TrimSpace(e.Body))
}
