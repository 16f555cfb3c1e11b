package model

// RawListing is one business record as returned by a single provider,
// normalized into the common shape but not yet deduplicated. The owning
// adapter fills every field; downstream components never see a
// provider-specific payload.
type RawListing struct {
	Name string `json:"name"`

	// Category is the provider's display category, mapped through the
	// adapter's own vocabulary table where one exists.
	Category string `json:"category,omitempty"`

	// CategoryCode is the raw provider-vocabulary code (e.g. a SEMAS
	// mid-class code or a Kakao group code), kept for diagnostics.
	CategoryCode string `json:"categoryCode,omitempty"`

	// Address is the road address when the provider returns one, the lot
	// address otherwise.
	Address string `json:"address,omitempty"`

	Phone string      `json:"phone,omitempty"`
	Coord *Coordinate `json:"coord,omitempty"`

	// DistanceM is the distance from the query center in meters. Providers
	// that do not report it leave it nil; adapters with coordinates compute
	// it themselves.
	DistanceM *float64 `json:"distanceMeters,omitempty"`

	Source SourceID `json:"source"`

	// TargetMatch marks the listing as matching the requested category,
	// decided by the adapter via its code table or the keyword fallback.
	TargetMatch bool `json:"targetMatch"`
}
