// Package aggregate folds per-source listings into deduplicated
// businesses. Listings sharing a normalized name and address collapse into
// one Business; field conflicts resolve by the fixed source priority.
package aggregate

import (
	"sort"

	"go.uber.org/zap"

	"github.com/ikjoobang/xivix-best-map/internal/model"
)

// SourceListings is one succeeded source's contribution to a merge.
type SourceListings struct {
	Source   model.SourceID
	Listings []model.RawListing
}

// Merge deduplicates listings across sources. The fold visits sources in
// priority order regardless of input order, so the first value seen for a
// field is the highest-priority one; later listings only fill gaps and
// extend Sources.
func Merge(perSource []SourceListings) []model.Business {
	ordered := make([]SourceListings, len(perSource))
	copy(ordered, perSource)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Source.PriorityRank() < ordered[j].Source.PriorityRank()
	})

	merged := make(map[string]*model.Business)
	var keys []string

	for _, sl := range ordered {
		for _, l := range sl.Listings {
			key, ok := listingKey(l)
			if !ok {
				// A nameless listing cannot form an identity; losing it is
				// an upstream bug, not a control path.
				zap.L().Warn("dropping listing without a usable name",
					zap.String("source", string(sl.Source)),
					zap.String("address", l.Address),
				)
				continue
			}

			if b, seen := merged[key]; seen {
				fill(b, l)
			} else {
				merged[key] = fromListing(l)
				keys = append(keys, key)
			}
		}
	}

	type keyed struct {
		key string
		biz *model.Business
	}
	entries := make([]keyed, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, keyed{key: k, biz: merged[k]})
	}

	// Cross-verified entries first, then nearest first, then by key so
	// equal inputs always produce equal output order.
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if la, lb := len(a.biz.Sources), len(b.biz.Sources); la != lb {
			return la > lb
		}
		if c := compareDistance(a.biz.DistanceM, b.biz.DistanceM); c != 0 {
			return c < 0
		}
		return a.key < b.key
	})

	out := make([]model.Business, len(entries))
	for i, e := range entries {
		out[i] = *e.biz
	}
	return out
}

func fromListing(l model.RawListing) *model.Business {
	return &model.Business{
		Name:             l.Name,
		Address:          l.Address,
		Category:         l.Category,
		Phone:            normalizePhone(l.Phone),
		Coord:            l.Coord,
		DistanceM:        l.DistanceM,
		IsTargetCategory: l.TargetMatch,
		Sources:          []model.SourceID{l.Source},
	}
}

// fill unions the listing's source and fills fields the higher-priority
// contributions left empty. A target match from any source sticks.
func fill(b *model.Business, l model.RawListing) {
	if !b.HasSource(l.Source) {
		b.Sources = append(b.Sources, l.Source)
	}
	if b.Address == "" {
		b.Address = l.Address
	}
	if b.Category == "" {
		b.Category = l.Category
	}
	if b.Phone == "" {
		b.Phone = normalizePhone(l.Phone)
	}
	if b.Coord == nil {
		b.Coord = l.Coord
	}
	if b.DistanceM == nil {
		b.DistanceM = l.DistanceM
	}
	if l.TargetMatch {
		b.IsTargetCategory = true
	}
}

// compareDistance orders ascending with unknown distances last.
func compareDistance(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	default:
		return 0
	}
}
