package provider

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ikjoobang/xivix-best-map/internal/geo"
	"github.com/ikjoobang/xivix-best-map/internal/model"
	"github.com/ikjoobang/xivix-best-map/internal/resilience"
	"github.com/ikjoobang/xivix-best-map/pkg/naver"
)

// The local search endpoint returns at most five items per query.
const naverDisplay = 5

// titleCleaner strips the search-term highlight tags Naver embeds in titles.
var titleCleaner = strings.NewReplacer("<b>", "", "</b>", "", "&amp;", "&")

// NaverLocalAdapter searches the Naver local directory. The endpoint has no
// radius parameter, so the adapter scopes the query with the address hint and
// drops results outside the radius by distance.
type NaverLocalAdapter struct {
	client naver.Client
	retry  resilience.RetryConfig
}

// NewNaverLocal creates the local search adapter.
func NewNaverLocal(client naver.Client, retry resilience.RetryConfig) *NaverLocalAdapter {
	return &NaverLocalAdapter{client: client, retry: retry}
}

func (a *NaverLocalAdapter) Source() model.SourceID {
	return model.SourceNaverLocal
}

func (a *NaverLocalAdapter) Fetch(ctx context.Context, q Query) (*Result, error) {
	cfg := a.retry
	cfg.ShouldRetry = retryable
	cfg.OnRetry = resilience.RetryLogger(string(a.Source()), "local_search")

	resp, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) (*naver.LocalSearchResponse, error) {
		return a.client.LocalSearch(ctx, naver.LocalQuery{
			Query:   searchTerm(q),
			Display: naverDisplay,
		})
	})
	if err != nil {
		return nil, Classify(a.Source(), err)
	}

	listings := make([]model.RawListing, 0, len(resp.Items))
	dropped := 0
	for _, item := range resp.Items {
		lon, lat, coordErr := item.Coord()
		if coordErr != nil {
			dropped++
			continue
		}
		coord := model.Coordinate{Lon: lon, Lat: lat}
		dist := geo.HaversineMeters(q.Center, coord)
		if dist > float64(q.RadiusM) {
			dropped++
			continue
		}

		listings = append(listings, model.RawListing{
			Name:        titleCleaner.Replace(item.Title),
			Category:    naverCategoryLabel(item.Category),
			Address:     firstNonEmpty(item.RoadAddress, item.Address),
			Phone:       item.Telephone,
			Coord:       &coord,
			DistanceM:   &dist,
			Source:      a.Source(),
			TargetMatch: matchesKeywords(q.Category, "", item.Category),
		})
	}
	if dropped > 0 {
		zap.L().Debug("dropped out-of-radius or unlocatable results",
			zap.String("source", string(a.Source())),
			zap.Int("dropped", dropped),
		)
	}

	listings = applyKeywordFallback(a.Source(), q.Category, listings)

	// The response total counts keyword hits nationwide, so it cannot stand
	// in for a radius-scoped figure.
	return &Result{Listings: listings}, nil
}

// naverCategoryLabel keeps the finest segment of a path like "카페,디저트>카페".
func naverCategoryLabel(category string) string {
	if i := strings.LastIndex(category, ">"); i >= 0 {
		return strings.TrimSpace(category[i+1:])
	}
	return strings.TrimSpace(category)
}
