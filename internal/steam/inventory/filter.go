package inventory

import (
	"strings"

	"opnskin/internal/steam"
)

type descKey struct {
	classID    string
	instanceID string
}

// Normalize joins assets to their descriptions and drops everything the
// marketplace cannot list: assets with no description, non-tradable or
// non-marketable items, and types on the game's exclusion list.
//
// The join key is (classid, instanceid). When that misses, a classid-only
// fallback is tried; items joined that way get MetadataFallback set because
// the metadata may belong to a different instance variant. Pure function of
// its input.
func Normalize(p *Payload, game steam.Game) []Item {
	byKey := make(map[descKey]*Description, len(p.Descriptions))
	byClass := make(map[string]*Description, len(p.Descriptions))
	for i := range p.Descriptions {
		d := &p.Descriptions[i]
		byKey[descKey{d.ClassID, d.InstanceID}] = d
		if _, ok := byClass[d.ClassID]; !ok {
			byClass[d.ClassID] = d
		}
	}

	items := make([]Item, 0, len(p.Assets))
	for _, a := range p.Assets {
		d, fallback := lookup(byKey, byClass, a)
		if d == nil {
			continue
		}
		if d.Tradable == 0 || d.Marketable == 0 {
			continue
		}
		if excludedType(d.Type, game.ExcludedTypes) {
			continue
		}
		items = append(items, Item{
			ID:               a.AssetID,
			Name:             d.MarketHashName,
			Icon:             d.IconURL,
			RarityCode:       rarityCode(d.Tags),
			MetadataFallback: fallback,
		})
	}
	return items
}

func lookup(byKey map[descKey]*Description, byClass map[string]*Description, a Asset) (*Description, bool) {
	if d, ok := byKey[descKey{a.ClassID, a.InstanceID}]; ok {
		return d, false
	}
	if d, ok := byClass[a.ClassID]; ok {
		return d, true
	}
	return nil, false
}

func excludedType(typ string, excluded []string) bool {
	for _, ex := range excluded {
		if strings.Contains(typ, ex) {
			return true
		}
	}
	return false
}

func rarityCode(tags []Tag) string {
	for _, t := range tags {
		if t.Category == "Rarity" {
			return t.InternalName
		}
	}
	return ""
}

// UniqueNames returns the distinct market hash names among items, preserving
// first-seen order.
func UniqueNames(items []Item) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it.Name == "" {
			continue
		}
		if _, ok := seen[it.Name]; ok {
			continue
		}
		seen[it.Name] = struct{}{}
		out = append(out, it.Name)
	}
	return out
}
