// Package service holds the inventory orchestration logic: decide between
// cache and live fetch, price the result, persist it, and degrade to stale
// data when the upstream is down.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"opnskin/internal/ratelimit"
	"opnskin/internal/shaping"
	"opnskin/internal/steam"
	"opnskin/internal/steam/inventory"
	"opnskin/internal/store"
)

// ErrUnknownGame is returned for game identifiers outside the registry.
var ErrUnknownGame = errors.New("service: unknown game")

// RateLimitedError reports that a live fetch was denied by the limiter.
// It carries the wait hint and is surfaced to the caller as-is, never
// converted into a stale-cache response: the caller asked for fresh data
// and should retry instead.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("service: rate limited, retry in %s", e.RetryAfter.Round(time.Second))
}

// Fetcher retrieves a user's raw inventory. *inventory.Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, steamID string, game steam.Game) (*inventory.Payload, error)
}

// PriceResolver resolves one item's adjusted market price. *market.Resolver
// implements it.
type PriceResolver interface {
	Price(ctx context.Context, appID int, name, currency string) float64
}

// FetchOptions guards entry into the fetch state machine.
type FetchOptions struct {
	// ForceFresh bypasses the cache even when a row exists.
	ForceFresh bool
	// PreferCache serves an existing row without any network call. This is
	// the default and the fastest path.
	PreferCache bool
}

// DefaultFetchOptions returns the cache-first defaults.
func DefaultFetchOptions() FetchOptions {
	return FetchOptions{PreferCache: true}
}

// Result is the orchestrator's answer for one (steamID, game, currency) key.
type Result struct {
	Items              []inventory.Item `json:"items"`
	LastUpdatedSeconds int64            `json:"lastUpdatedSeconds"`
	Stale              bool             `json:"stale,omitempty"`
	Truncated          bool             `json:"truncated,omitempty"`
	Message            string           `json:"message,omitempty"`
}

// Config tunes the inventory service.
type Config struct {
	// FastMode skips price resolution during the fetch; clients ask for
	// prices separately. Cuts latency for large inventories.
	FastMode bool
	// PriceConcurrency caps in-flight price lookups.
	PriceConcurrency int64
	// PriceSpacing is the minimum delay between price lookup submissions.
	PriceSpacing time.Duration
}

func (c *Config) defaults() {
	if c.PriceConcurrency <= 0 {
		c.PriceConcurrency = 4
	}
	if c.PriceSpacing < 0 {
		c.PriceSpacing = 0
	}
}

// Inventory composes the rate limiter, the fetcher, the price resolver and
// the durable cache.
type Inventory struct {
	cfg     Config
	limiter *ratelimit.Limiter // nil disables limiting
	fetcher Fetcher
	prices  PriceResolver
	cache   store.Store

	now func() time.Time
}

func NewInventory(cfg Config, limiter *ratelimit.Limiter, fetcher Fetcher, prices PriceResolver, cache store.Store) *Inventory {
	cfg.defaults()
	return &Inventory{cfg: cfg, limiter: limiter, fetcher: fetcher, prices: prices, cache: cache, now: time.Now}
}

// GetOrFetch is the per-request state machine:
//
//	cache hit + cache preferred   -> serve cache, no network
//	fresh fetch succeeds          -> price, persist, serve with age 0
//	fresh fetch fails, cache hit  -> serve cache marked stale
//	fresh fetch fails, no cache   -> error
func (s *Inventory) GetOrFetch(ctx context.Context, steamID, gameID, currency string, opts FetchOptions) (*Result, error) {
	game, ok := steam.GameByID(gameID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGame, gameID)
	}

	row, err := s.cache.Read(ctx, steamID, game.ID, currency)
	if err != nil {
		// a broken cache read degrades to "no cache", it must not block a fetch
		log.Printf("[service] cache read failed for %s/%s/%s: %v", steamID, game.ID, currency, err)
		row = nil
	}

	if row != nil && !opts.ForceFresh && opts.PreferCache {
		return &Result{
			Items:              row.Items,
			LastUpdatedSeconds: int64(s.now().Sub(row.UpdatedAt).Seconds()),
		}, nil
	}

	if s.limiter != nil {
		if d := s.limiter.Check(steamID); !d.Allowed {
			return nil, &RateLimitedError{RetryAfter: d.RetryAfter}
		}
	}

	res, err := s.fetchFresh(ctx, steamID, game, currency)
	if err != nil {
		if row != nil {
			return &Result{
				Items:              row.Items,
				LastUpdatedSeconds: int64(s.now().Sub(row.UpdatedAt).Seconds()),
				Stale:              true,
				Message:            "inventory temporarily unavailable, showing previous data",
			}, nil
		}
		return nil, err
	}
	return res, nil
}

func (s *Inventory) fetchFresh(ctx context.Context, steamID string, game steam.Game, currency string) (*Result, error) {
	payload, err := s.fetcher.Fetch(ctx, steamID, game)
	if err != nil {
		return nil, err
	}

	items := inventory.Normalize(payload, game)

	if !s.cfg.FastMode {
		s.priceItems(ctx, items, game, currency)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		raw = json.RawMessage("{}")
	}
	if err := s.cache.Write(ctx, steamID, game.ID, currency, items, raw); err != nil {
		// the fresh result is still good; losing the cache write only costs
		// the next request a fetch
		log.Printf("[service] cache write failed for %s/%s/%s: %v", steamID, game.ID, currency, err)
	}

	return &Result{Items: items, LastUpdatedSeconds: 0, Truncated: payload.Truncated}, nil
}

// priceItems resolves prices for the unique names among items and stamps
// them back onto every matching item. Lookups run through a shaped pool so
// the price endpoint sees neither more than PriceConcurrency in-flight
// requests nor a burst of submissions.
func (s *Inventory) priceItems(ctx context.Context, items []inventory.Item, game steam.Game, currency string) {
	names := inventory.UniqueNames(items)
	if len(names) == 0 {
		return
	}

	priceByName := make(map[string]float64, len(names))
	var mu sync.Mutex

	pool := shaping.Pool{Limit: s.cfg.PriceConcurrency, Spacing: s.cfg.PriceSpacing}
	err := pool.Run(ctx, len(names), func(ctx context.Context, i int) error {
		p := s.prices.Price(ctx, game.AppID, names[i], currency)
		mu.Lock()
		priceByName[names[i]] = p
		mu.Unlock()
		return nil
	})
	if err != nil {
		log.Printf("[service] price resolution interrupted: %v", err)
	}

	for i := range items {
		items[i].MarketPrice = priceByName[items[i].Name]
	}
}
