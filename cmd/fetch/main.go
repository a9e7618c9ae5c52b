// Command fetch pulls one user's inventory, prices it, and prints the result
// as JSON. Useful for poking at the pipeline without running the server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"opnskin/internal/cache"
	"opnskin/internal/httpx"
	"opnskin/internal/service"
	"opnskin/internal/steam"
	"opnskin/internal/steam/inventory"
	"opnskin/internal/steam/market"
	"opnskin/internal/store"
)

func main() {
	var (
		steamID    = flag.String("steamid", os.Getenv("STEAM_ID"), "64-bit Steam ID to fetch")
		gameID     = flag.String("game", "cs2", "game id or app id (cs2, dota2, rust, tf2)")
		currency   = flag.String("currency", "EUR", "price currency (USD, GBP, EUR, RUB, CNY)")
		proxyURL   = flag.String("proxy", os.Getenv("STEAM_PROXY_URL"), "optional proxy URL for Steam traffic")
		timeout    = flag.Duration("timeout", 60*time.Second, "overall timeout")
		skipPrices = flag.Bool("no-prices", false, "skip price resolution")
	)
	flag.Parse()

	if *steamID == "" {
		log.Fatal("-steamid is required")
	}
	game, ok := steam.GameByID(*gameID)
	if !ok {
		log.Fatalf("unknown game %q", *gameID)
	}

	httpClient, err := httpx.New(httpx.Options{
		Timeout:    15 * time.Second,
		ProxyURL:   *proxyURL,
		MaxRetries: 2,
	})
	if err != nil {
		log.Fatalf("http client: %v", err)
	}

	marketClient := market.NewClient(
		market.WithHTTPClient(httpClient.HTTP),
		market.WithHeader(http.Header{"User-Agent": []string{"opnskin/1.0"}}),
	)
	resolver := market.NewResolver(marketClient, cache.NewMemory(), market.DefaultTTL)
	fetcher := inventory.NewClient(httpClient)

	svc := service.NewInventory(service.Config{
		FastMode:         *skipPrices,
		PriceConcurrency: 4,
		PriceSpacing:     500 * time.Millisecond,
	}, nil, fetcher, resolver, memStore{})

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	res, err := svc.GetOrFetch(ctx, *steamID, game.ID, *currency, service.FetchOptions{ForceFresh: true})
	if err != nil {
		log.Fatalf("fetch: %v", err)
	}

	log.Printf("%d items (truncated=%v)", len(res.Items), res.Truncated)
	b, _ := json.MarshalIndent(res, "", "  ")
	fmt.Println(string(b))
}

// memStore is a no-op inventory store; the one-shot tool has nothing to
// persist between runs.
type memStore struct{}

func (memStore) Read(context.Context, string, string, string) (*store.Row, error) {
	return nil, nil
}

func (memStore) Write(context.Context, string, string, string, []inventory.Item, json.RawMessage) error {
	return nil
}
