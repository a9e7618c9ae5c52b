package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"opnskin/internal/cache"
	"opnskin/internal/config"
	"opnskin/internal/handler"
	"opnskin/internal/httpx"
	"opnskin/internal/ratelimit"
	"opnskin/internal/router"
	"opnskin/internal/service"
	"opnskin/internal/steam/inventory"
	"opnskin/internal/steam/market"
	"opnskin/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	httpClient, err := httpx.New(httpx.Options{
		Timeout:    cfg.Steam.FetchTimeout,
		ProxyURL:   cfg.Steam.ProxyURL,
		MaxRetries: cfg.Steam.MaxRetries,
		BackoffMin: cfg.Steam.BackoffMin,
	})
	if err != nil {
		log.Fatalf("http client: %v", err)
	}
	if cfg.Steam.ProxyURL != "" {
		log.Printf("routing Steam traffic through proxy")
	}

	priceCache, err := newPriceCache(cfg.Cache)
	if err != nil {
		log.Fatalf("price cache: %v", err)
	}

	invStore, err := newInventoryStore(cfg.Store.Path)
	if err != nil {
		log.Fatalf("inventory store: %v", err)
	}
	defer invStore.Close()

	marketClient := market.NewClient(
		market.WithHTTPClient(httpClient.HTTP),
		market.WithHeader(http.Header{"User-Agent": []string{"opnskin/1.0"}}),
	)
	resolver := market.NewResolver(marketClient, priceCache, cfg.Steam.PriceCacheTTL)

	fetcher := inventory.NewClient(httpClient, inventory.WithMaxPages(cfg.Steam.MaxPages))

	limiter := ratelimit.New(ratelimit.Config{
		Window:         cfg.RateLimit.Window,
		MaxPerWindow:   cfg.RateLimit.MaxPerWindow,
		GlobalCooldown: cfg.RateLimit.GlobalCooldown,
	})

	svc := service.NewInventory(service.Config{
		FastMode:         cfg.Steam.FastInventory,
		PriceConcurrency: cfg.Steam.PriceConcurrency,
		PriceSpacing:     cfg.Steam.PriceSpacing,
	}, limiter, fetcher, resolver, invStore)

	r := router.New(router.Config{
		Inventory: handler.NewInventoryHandler(svc),
		Price:     handler.NewPriceHandler(resolver),
	})

	srv := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go prune(ctx, invStore, cfg.Store)

	go func() {
		log.Printf("server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

func newPriceCache(cfg config.CacheConfig) (cache.Store, error) {
	if cfg.Type == "redis" {
		log.Println("using redis price cache")
		return cache.NewRedis(cache.RedisConfig{
			Addr:     cfg.RedisAddress(),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	}
	log.Println("using in-memory price cache")
	return cache.NewMemory(), nil
}

func newInventoryStore(path string) (*store.SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return store.NewSQLite(path)
}

// prune periodically drops inventory rows nobody has refreshed in a month.
func prune(ctx context.Context, s *store.SQLite, cfg config.StoreConfig) {
	if cfg.PruneInterval <= 0 || cfg.PruneAfter <= 0 {
		return
	}
	t := time.NewTicker(cfg.PruneInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := s.Prune(ctx, cfg.PruneAfter)
			if err != nil {
				log.Printf("prune: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("pruned %d stale inventory rows", n)
			}
		}
	}
}
