package market

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"opnskin/internal/cache"
)

// currencyCodes maps ISO currency names to Steam's numeric codes.
// Unsupported currencies fall back to EUR.
var currencyCodes = map[string]int{
	"USD": 1,
	"GBP": 2,
	"EUR": 3,
	"RUB": 5,
	"CNY": 23,
}

// CurrencyCode returns Steam's numeric code for currency.
func CurrencyCode(currency string) int {
	if code, ok := currencyCodes[strings.ToUpper(currency)]; ok {
		return code
	}
	return currencyCodes["EUR"]
}

const (
	// Markdown applied to the raw market quote before listing.
	Markdown = 0.75
	// DefaultTTL is how long a cached quote stays authoritative.
	DefaultTTL = 6 * time.Hour
)

// entry is the cached quote for one (name, currency) key.
type entry struct {
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"ts"`
}

// Resolver returns the adjusted market price for an item. It never returns
// an error: 0 means "no price known". Entries are never evicted; an expired
// entry is distrusted for serving but kept as the fallback when the upstream
// cannot produce a better answer, so a transient outage never erases a
// previously known good price.
type Resolver struct {
	client *Client
	store  cache.Store
	ttl    time.Duration

	sf  singleflight.Group
	now func() time.Time
}

// NewResolver builds a Resolver over client, caching entries in store.
func NewResolver(client *Client, store cache.Store, ttl time.Duration) *Resolver {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Resolver{client: client, store: store, ttl: ttl, now: time.Now}
}

func cacheKey(name, currency string) string {
	return "price:" + strings.ToUpper(currency) + ":" + name
}

// Price resolves the adjusted price for one item name in currency.
func (r *Resolver) Price(ctx context.Context, appID int, name, currency string) float64 {
	key := cacheKey(name, currency)

	prev, found := r.load(ctx, key)
	if found && r.now().Sub(prev.Timestamp) < r.ttl {
		return prev.Price
	}

	// coalesce concurrent misses on the same key
	v, _, _ := r.sf.Do(key, func() (any, error) {
		return r.refresh(ctx, appID, name, currency, key, prev, found), nil
	})
	return v.(float64)
}

func (r *Resolver) refresh(ctx context.Context, appID int, name, currency, key string, prev entry, hadPrev bool) float64 {
	raw, err := r.client.LowestPrice(ctx, appID, CurrencyCode(currency), name)
	if err != nil {
		log.Printf("[market] %q: upstream failed, using fallback: %v", name, err)
		if hadPrev {
			return prev.Price
		}
		return 0
	}

	parsed, err := ParsePrice(raw)
	if err != nil {
		parsed = 0
	}
	adjusted := math.Round(parsed*Markdown*100) / 100

	if adjusted <= 0 {
		// no listing or unparseable quote: a stale price beats no price
		if hadPrev {
			return prev.Price
		}
		return 0
	}

	r.save(ctx, key, entry{Price: adjusted, Timestamp: r.now()})
	return adjusted
}

func (r *Resolver) load(ctx context.Context, key string) (entry, bool) {
	b, ok, err := r.store.Get(ctx, key)
	if err != nil || !ok {
		return entry{}, false
	}
	var e entry
	if err := json.Unmarshal(b, &e); err != nil {
		return entry{}, false
	}
	return e, true
}

func (r *Resolver) save(ctx context.Context, key string, e entry) {
	b, err := json.Marshal(e)
	if err != nil {
		return
	}
	if err := r.store.Set(ctx, key, b); err != nil {
		log.Printf("[market] cache write failed for %s: %v", key, err)
	}
}

// ParsePrice converts a locale-formatted price string ("30,24€", "$1,234.56",
// "1 234,56 pуб.") into a float. The rightmost of '.' and ',' is taken as
// the decimal separator; everything non-numeric is stripped.
func ParsePrice(s string) (float64, error) {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0, fmt.Errorf("market: no digits in price %q", s)
	}

	lastDot := strings.LastIndexByte(cleaned, '.')
	lastComma := strings.LastIndexByte(cleaned, ',')
	switch {
	case lastComma > lastDot:
		// comma decimal: drop dots (thousands), last comma becomes the point
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		if i := strings.LastIndexByte(cleaned, ','); i >= 0 {
			cleaned = strings.ReplaceAll(cleaned[:i], ",", "") + "." + cleaned[i+1:]
		}
	case lastDot > lastComma:
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}

	var v float64
	if _, err := fmt.Sscanf(cleaned, "%g", &v); err != nil {
		return 0, fmt.Errorf("market: parse price %q: %w", s, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("market: negative price %q", s)
	}
	return v, nil
}
