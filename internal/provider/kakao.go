package provider

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ikjoobang/xivix-best-map/internal/category"
	"github.com/ikjoobang/xivix-best-map/internal/geo"
	"github.com/ikjoobang/xivix-best-map/internal/model"
	"github.com/ikjoobang/xivix-best-map/internal/resilience"
	"github.com/ikjoobang/xivix-best-map/pkg/kakao"
)

// Kakao caps place search at 45 results (3 pages of 15).
const (
	kakaoPageSize = 15
	kakaoMaxPages = 3
)

// KakaoKeywordAdapter searches places by keyword near the center.
type KakaoKeywordAdapter struct {
	client kakao.Client
	retry  resilience.RetryConfig
}

// NewKakaoKeyword creates the keyword search adapter.
func NewKakaoKeyword(client kakao.Client, retry resilience.RetryConfig) *KakaoKeywordAdapter {
	return &KakaoKeywordAdapter{client: client, retry: retry}
}

func (a *KakaoKeywordAdapter) Source() model.SourceID {
	return model.SourceKakaoKeyword
}

func (a *KakaoKeywordAdapter) Fetch(ctx context.Context, q Query) (*Result, error) {
	term := searchTerm(q)

	cfg := a.retry
	cfg.ShouldRetry = retryable
	cfg.OnRetry = resilience.RetryLogger(string(a.Source()), "search_keyword")

	docs, total, err := collectKakaoPages(ctx, func(page int) (*kakao.SearchResponse, error) {
		return resilience.DoVal(ctx, cfg, func(ctx context.Context) (*kakao.SearchResponse, error) {
			return a.client.SearchKeyword(ctx, kakao.KeywordQuery{
				Query:     term,
				Longitude: q.Center.Lon,
				Latitude:  q.Center.Lat,
				RadiusM:   q.RadiusM,
				Page:      page,
				Size:      kakaoPageSize,
				Sort:      "distance",
			})
		})
	})
	if err != nil {
		return nil, Classify(a.Source(), err)
	}

	listings := kakaoListings(a.Source(), q, docs)
	listings = applyKeywordFallback(a.Source(), q.Category, listings)

	return &Result{
		ReportedTotal: &total,
		Listings:      listings,
	}, nil
}

// KakaoCategoryAdapter searches places by category group code near the center.
type KakaoCategoryAdapter struct {
	client kakao.Client
	retry  resilience.RetryConfig
}

// NewKakaoCategory creates the category search adapter.
func NewKakaoCategory(client kakao.Client, retry resilience.RetryConfig) *KakaoCategoryAdapter {
	return &KakaoCategoryAdapter{client: client, retry: retry}
}

func (a *KakaoCategoryAdapter) Source() model.SourceID {
	return model.SourceKakaoCategory
}

func (a *KakaoCategoryAdapter) Fetch(ctx context.Context, q Query) (*Result, error) {
	if q.Category.KakaoGroupCode == "" {
		return nil, &AdapterError{
			Source: a.Source(),
			Kind:   ErrProvider,
			Err:    eris.Errorf("category %s has no kakao group code", q.Category.Key),
		}
	}

	cfg := a.retry
	cfg.ShouldRetry = retryable
	cfg.OnRetry = resilience.RetryLogger(string(a.Source()), "search_category")

	docs, total, err := collectKakaoPages(ctx, func(page int) (*kakao.SearchResponse, error) {
		return resilience.DoVal(ctx, cfg, func(ctx context.Context) (*kakao.SearchResponse, error) {
			return a.client.SearchCategory(ctx, kakao.CategoryQuery{
				GroupCode: q.Category.KakaoGroupCode,
				Longitude: q.Center.Lon,
				Latitude:  q.Center.Lat,
				RadiusM:   q.RadiusM,
				Page:      page,
				Size:      kakaoPageSize,
				Sort:      "distance",
			})
		})
	})
	if err != nil {
		return nil, Classify(a.Source(), err)
	}

	listings := kakaoListings(a.Source(), q, docs)
	listings = applyKeywordFallback(a.Source(), q.Category, listings)

	res := &Result{Listings: listings}
	if len(q.Category.KakaoNameFilters) == 0 {
		// With name filters the group total counts the whole group, not the
		// filtered subset, so it cannot stand in for a category total.
		res.ReportedTotal = &total
	}
	return res, nil
}

// searchTerm builds the query string from the category's primary keyword,
// optionally scoped by the address hint.
func searchTerm(q Query) string {
	term := q.Category.Display
	if len(q.Category.Keywords) > 0 {
		term = q.Category.Keywords[0]
	}
	if q.AddressHint != "" {
		return q.AddressHint + " " + term
	}
	return term
}

func collectKakaoPages(ctx context.Context, fetch func(page int) (*kakao.SearchResponse, error)) ([]kakao.Document, int, error) {
	var docs []kakao.Document
	total := 0

	for page := 1; page <= kakaoMaxPages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}

		resp, err := fetch(page)
		if err != nil {
			return nil, 0, err
		}
		if page == 1 {
			total = resp.Meta.TotalCount
		}
		docs = append(docs, resp.Documents...)
		if resp.Meta.IsEnd || len(resp.Documents) == 0 {
			break
		}
	}
	return docs, total, nil
}

func kakaoListings(source model.SourceID, q Query, docs []kakao.Document) []model.RawListing {
	listings := make([]model.RawListing, 0, len(docs))
	for _, doc := range docs {
		l := model.RawListing{
			Name:         doc.PlaceName,
			Category:     kakaoCategoryLabel(doc),
			CategoryCode: doc.CategoryGroupCode,
			Address:      firstNonEmpty(doc.RoadAddressName, doc.AddressName),
			Phone:        doc.Phone,
			Source:       source,
			TargetMatch:  kakaoStructuredMatch(q.Category, doc),
		}

		if lon, lat, err := doc.Coord(); err == nil {
			l.Coord = &model.Coordinate{Lon: lon, Lat: lat}
		} else {
			zap.L().Debug("dropping unparseable coordinates",
				zap.String("source", string(source)),
				zap.String("place", doc.PlaceName),
				zap.Error(err),
			)
		}

		if m, ok := doc.DistanceMeters(); ok {
			l.DistanceM = &m
		} else if l.Coord != nil {
			m := geo.HaversineMeters(q.Center, *l.Coord)
			l.DistanceM = &m
		}

		listings = append(listings, l)
	}
	return listings
}

// kakaoStructuredMatch checks the group code, then any name filters that
// narrow a coarse group (e.g. chicken shops inside the restaurant group).
func kakaoStructuredMatch(cat category.Category, doc kakao.Document) bool {
	if cat.KakaoGroupCode == "" || doc.CategoryGroupCode != cat.KakaoGroupCode {
		return false
	}
	if len(cat.KakaoNameFilters) == 0 {
		return true
	}
	text := doc.PlaceName + " " + doc.CategoryName
	for _, f := range cat.KakaoNameFilters {
		if f != "" && strings.Contains(text, f) {
			return true
		}
	}
	return false
}

func kakaoCategoryLabel(doc kakao.Document) string {
	if doc.CategoryGroupName != "" {
		return doc.CategoryGroupName
	}
	// Fall back to the top segment of the category path.
	if i := strings.Index(doc.CategoryName, " > "); i > 0 {
		return doc.CategoryName[:i]
	}
	return doc.CategoryName
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
