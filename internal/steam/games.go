// Package steam holds the registry of supported games and the identifiers
// Steam uses for them.
package steam

import "strconv"

// Game describes one tradable-inventory game.
type Game struct {
	ID        string // short slug used in API params and cache keys
	Name      string
	AppID     int
	ContextID int
	// ExcludedTypes lists description type substrings that never reach the
	// marketplace (consumables, containers, vanity items).
	ExcludedTypes []string
}

var games = []Game{
	{
		ID:        "cs2",
		Name:      "Counter-Strike 2",
		AppID:     730,
		ContextID: 2,
		ExcludedTypes: []string{
			"Graffiti", "Patch", "Music Kit", "Collectible", "Gift", "Coupon",
		},
	},
	{
		ID:        "dota2",
		Name:      "Dota 2",
		AppID:     570,
		ContextID: 2,
		ExcludedTypes: []string{
			"Treasure", "Announcer", "Loading Screen", "Bundle",
		},
	},
	{
		ID:        "rust",
		Name:      "Rust",
		AppID:     252490,
		ContextID: 2,
		ExcludedTypes: []string{
			"Twitch Drop",
		},
	},
	{
		ID:        "tf2",
		Name:      "Team Fortress 2",
		AppID:     440,
		ContextID: 2,
		ExcludedTypes: []string{
			"Crate", "Key", "Tool", "Party Favor",
		},
	},
}

// GameByID resolves a game by slug or numeric app id.
func GameByID(id string) (Game, bool) {
	for _, g := range games {
		if g.ID == id || strconv.Itoa(g.AppID) == id {
			return g, true
		}
	}
	return Game{}, false
}

// Games returns all supported games.
func Games() []Game {
	out := make([]Game, len(games))
	copy(out, games)
	return out
}
