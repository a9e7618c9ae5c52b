// Package router wires handlers and middleware into the HTTP mux.
package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"opnskin/internal/handler"
	"opnskin/internal/middleware"
)

// Config holds the handlers the router needs.
type Config struct {
	Inventory *handler.InventoryHandler
	Price     *handler.PriceHandler
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID", "X-Steam-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", handler.Health)
	r.Get("/api/v1/games", handler.Games)

	// routes that need an authenticated Steam session
	r.Group(func(r chi.Router) {
		r.Use(middleware.SteamSession)
		if cfg.Inventory != nil {
			r.Get("/api/v1/inventory", cfg.Inventory.Get)
		}
		if cfg.Price != nil {
			r.Get("/api/v1/price", cfg.Price.Get)
		}
	})

	return r
}
