// Package store persists the last good inventory result per
// (steamID, gameID, currency) key.
package store

import (
	"context"
	"encoding/json"
	"time"

	"opnskin/internal/steam/inventory"
)

// Row is one cached inventory result. Read whole, replaced whole; never
// mutated in place.
type Row struct {
	SteamID   string           `json:"steamId"`
	GameID    string           `json:"gameId"`
	Currency  string           `json:"currency"`
	Items     []inventory.Item `json:"items"`
	Raw       json.RawMessage  `json:"raw"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// Store is the durable inventory cache.
type Store interface {
	// Read returns the row for the key, or nil when none exists.
	Read(ctx context.Context, steamID, gameID, currency string) (*Row, error)
	// Write replaces the row for the key atomically.
	Write(ctx context.Context, steamID, gameID, currency string, items []inventory.Item, raw json.RawMessage) error
}
