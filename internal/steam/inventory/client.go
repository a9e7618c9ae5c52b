package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"opnskin/internal/httpx"
	"opnskin/internal/steam"
)

// ErrShapeMismatch reports a JSON page that parses but lacks the expected
// assets/descriptions fields. Retrying does not help, so it is a hard
// failure for the whole fetch.
var ErrShapeMismatch = errors.New("inventory: unexpected upstream payload shape")

const (
	defaultBaseURL  = "https://steamcommunity.com/inventory"
	defaultPageSize = 100
	defaultMaxPages = 15
)

// Client fetches a user's full inventory for one game, merging the paginated
// upstream responses into a single Payload.
type Client struct {
	http     *httpx.Client
	baseURL  string
	pageSize int
	maxPages int
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the upstream endpoint, mainly for tests.
func WithBaseURL(u string) Option { return func(c *Client) { c.baseURL = u } }

// WithPageSize overrides the per-page item count.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithMaxPages bounds the pagination loop. The cap guards against an
// upstream that keeps answering more=true forever; when it fires the result
// is marked Truncated instead of being silently cut short.
func WithMaxPages(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxPages = n
		}
	}
}

func NewClient(hc *httpx.Client, opts ...Option) *Client {
	c := &Client{
		http:     hc,
		baseURL:  defaultBaseURL,
		pageSize: defaultPageSize,
		maxPages: defaultMaxPages,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type page struct {
	Assets       *[]Asset       `json:"assets"`
	Descriptions *[]Description `json:"descriptions"`
	More         bool           `json:"more"`
	LastAssetID  string         `json:"last_assetid"`
}

// Fetch retrieves every page of the user's inventory for game. It follows
// the start_assetid cursor while the upstream signals more pages, up to the
// configured page cap.
func (c *Client) Fetch(ctx context.Context, steamID string, game steam.Game) (*Payload, error) {
	out := &Payload{}
	cursor := ""

	for pageNum := 0; ; pageNum++ {
		if pageNum >= c.maxPages {
			out.Truncated = true
			break
		}

		body, err := c.http.GetJSON(ctx, c.pageURL(steamID, game, cursor), nil)
		if err != nil {
			return nil, fmt.Errorf("inventory: page %d for %s/%s: %w", pageNum+1, steamID, game.ID, err)
		}

		var p page
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, fmt.Errorf("inventory: decode page %d: %w", pageNum+1, err)
		}
		if p.Assets == nil || p.Descriptions == nil {
			sample := body
			if len(sample) > 200 {
				sample = sample[:200]
			}
			return nil, fmt.Errorf("%w: %s", ErrShapeMismatch, string(sample))
		}

		out.Assets = append(out.Assets, *p.Assets...)
		out.Descriptions = append(out.Descriptions, *p.Descriptions...)

		if !p.More || p.LastAssetID == "" {
			break
		}
		cursor = p.LastAssetID
	}

	return out, nil
}

func (c *Client) pageURL(steamID string, game steam.Game, cursor string) string {
	u := fmt.Sprintf("%s/%s/%d/%d", c.baseURL, url.PathEscape(steamID), game.AppID, game.ContextID)
	q := url.Values{}
	q.Set("l", "english")
	q.Set("count", fmt.Sprintf("%d", c.pageSize))
	if cursor != "" {
		q.Set("start_assetid", cursor)
	}
	return u + "?" + q.Encode()
}
