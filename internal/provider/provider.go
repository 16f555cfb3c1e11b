// Package provider fetches business listings from the external sources and
// normalizes them into raw listings for aggregation. Each source gets one
// adapter; FetchAll runs every adapter concurrently and a degraded source
// never aborts the rest.
package provider

import (
	"context"

	"github.com/ikjoobang/xivix-best-map/internal/category"
	"github.com/ikjoobang/xivix-best-map/internal/model"
)

// Query describes one radius search around a center point.
type Query struct {
	Center      model.Coordinate
	RadiusM     int
	Category    category.Category
	AddressHint string
}

// Result holds what one source returned for a query.
type Result struct {
	// ReportedTotal is the provider-claimed count of matching businesses.
	// Nil when the source cannot scope its total to the search radius.
	ReportedTotal *int
	Listings      []model.RawListing
	// CategoryCounts is the industry mix around the center, keyed by
	// category display name. Only the store directory reports it.
	CategoryCounts map[string]int
}

// Adapter fetches listings from a single source.
type Adapter interface {
	Source() model.SourceID
	Fetch(ctx context.Context, q Query) (*Result, error)
}
