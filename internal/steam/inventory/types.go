// Package inventory fetches and normalizes Steam user inventories.
package inventory

// Asset is one owned unit, as returned by the upstream inventory endpoint.
// It exists only during a fetch cycle.
type Asset struct {
	AssetID    string `json:"assetid"`
	ClassID    string `json:"classid"`
	InstanceID string `json:"instanceid"`
	Amount     string `json:"amount"`
}

// Tag is a category/value pair on a description. The "Rarity" category
// carries the rarity code.
type Tag struct {
	Category     string `json:"category"`
	InternalName string `json:"internal_name"`
	LocalizedTag string `json:"localized_tag_name"`
}

// Description is the shared metadata for a class of items, joined to assets
// by (classid, instanceid).
type Description struct {
	ClassID        string `json:"classid"`
	InstanceID     string `json:"instanceid"`
	MarketHashName string `json:"market_hash_name"`
	IconURL        string `json:"icon_url"`
	Type           string `json:"type"`
	Tradable       int    `json:"tradable"`
	Marketable     int    `json:"marketable"`
	Tags           []Tag  `json:"tags"`
}

// Payload is the merged result of all inventory pages.
type Payload struct {
	Assets       []Asset       `json:"assets"`
	Descriptions []Description `json:"descriptions"`
	// Truncated is set when the page cap stopped the fetch while the
	// upstream still reported more pages.
	Truncated bool `json:"truncated,omitempty"`
}

// Item is the normalized unit handed to the marketplace layer. Constructed
// fresh on every live fetch, never mutated afterwards.
type Item struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Icon        string  `json:"icon"`
	MarketPrice float64 `json:"marketPrice,omitempty"`
	RarityCode  string  `json:"rarityCode,omitempty"`
	// MetadataFallback marks items whose description was joined by classid
	// alone because no (classid, instanceid) match existed. Their icon and
	// rarity may belong to a sibling instance variant.
	MetadataFallback bool `json:"metadataFallback,omitempty"`
}
