package model

// Business is the canonical, deduplicated entity for one physical business.
// Listings from multiple providers that share the same normalized name and
// address fold into a single Business; Sources records which providers
// contributed.
type Business struct {
	Name             string      `json:"name"`
	Address          string      `json:"address,omitempty"`
	Category         string      `json:"category,omitempty"`
	Phone            string      `json:"phone,omitempty"`
	Coord            *Coordinate `json:"coord,omitempty"`
	DistanceM        *float64    `json:"distanceMeters,omitempty"`
	IsTargetCategory bool        `json:"isTargetCategory"`
	Sources          []SourceID  `json:"sources"`
}

// CrossVerified reports whether more than one independent provider saw
// this business.
func (b *Business) CrossVerified() bool {
	return len(b.Sources) > 1
}

// HasSource reports whether the given provider contributed to this entry.
func (b *Business) HasSource(s SourceID) bool {
	for _, src := range b.Sources {
		if src == s {
			return true
		}
	}
	return false
}
