package provider

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ikjoobang/xivix-best-map/internal/geo"
	"github.com/ikjoobang/xivix-best-map/internal/model"
	"github.com/ikjoobang/xivix-best-map/internal/resilience"
	"github.com/ikjoobang/xivix-best-map/pkg/semas"
)

const (
	semasListingRows = 100
	// The unfiltered neighborhood pull feeds the category mix; one large
	// page keeps it a single round trip.
	semasMixRows = 1000
)

// SemasStoreAdapter queries the public store directory. It is the only
// source that carries an industry mix for the neighborhood, so a fetch runs
// the category-filtered listing calls and one unfiltered mix call together.
type SemasStoreAdapter struct {
	client semas.Client
	retry  resilience.RetryConfig
}

// NewSemasStore creates the store directory adapter.
func NewSemasStore(client semas.Client, retry resilience.RetryConfig) *SemasStoreAdapter {
	return &SemasStoreAdapter{client: client, retry: retry}
}

func (a *SemasStoreAdapter) Source() model.SourceID {
	return model.SourceSemasStore
}

func (a *SemasStoreAdapter) Fetch(ctx context.Context, q Query) (*Result, error) {
	cfg := a.retry
	cfg.ShouldRetry = retryable
	cfg.OnRetry = resilience.RetryLogger(string(a.Source()), "store_list_in_radius")

	codes := q.Category.SemasCodes

	g, gctx := errgroup.WithContext(ctx)

	perCode := make([]*semas.StoreListResponse, len(codes))
	for i, code := range codes {
		g.Go(func() error {
			resp, err := resilience.DoVal(gctx, cfg, func(ctx context.Context) (*semas.StoreListResponse, error) {
				return a.client.StoreListInRadius(ctx, semas.RadiusQuery{
					Longitude:  q.Center.Lon,
					Latitude:   q.Center.Lat,
					RadiusM:    q.RadiusM,
					IndsMclsCd: code,
					NumOfRows:  semasListingRows,
				})
			})
			if err != nil {
				return err
			}
			perCode[i] = resp
			return nil
		})
	}

	var mixResp *semas.StoreListResponse
	var mixErr error
	g.Go(func() error {
		resp, err := resilience.DoVal(gctx, cfg, func(ctx context.Context) (*semas.StoreListResponse, error) {
			return a.client.StoreListInRadius(ctx, semas.RadiusQuery{
				Longitude: q.Center.Lon,
				Latitude:  q.Center.Lat,
				RadiusM:   q.RadiusM,
				NumOfRows: semasMixRows,
			})
		})
		if err != nil {
			if len(codes) == 0 {
				// The mix call is the only call; its failure is the fetch's.
				return err
			}
			mixErr = err
			return nil
		}
		mixResp = resp
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, Classify(a.Source(), err)
	}

	// The filtered calls alone decide success; a dead mix call only costs
	// the category breakdown.
	if mixErr != nil {
		zap.L().Warn("category mix unavailable",
			zap.String("source", string(a.Source())),
			zap.Error(mixErr),
		)
	}

	res := &Result{CategoryCounts: bucketMix(mixResp)}

	if len(codes) > 0 {
		total := 0
		var listings []model.RawListing
		for _, resp := range perCode {
			total += resp.Body.TotalCount
			for _, st := range resp.Body.Items {
				listings = append(listings, semasListing(q, st))
			}
		}
		res.ReportedTotal = &total
		res.Listings = listings
		return res, nil
	}

	// No directory codes for this category. Salvage listings by keyword
	// against the neighborhood mix; the matched count is not a trustworthy
	// total, so none is reported.
	var listings []model.RawListing
	for _, st := range mixResp.Body.Items {
		if matchesKeywords(q.Category, storeName(st), st.IndsMclsNm+" "+st.IndsSclsNm) {
			listings = append(listings, semasListing(q, st))
		}
	}
	if len(listings) > 0 {
		zap.L().Info("category match fell back to keywords",
			zap.String("source", string(a.Source())),
			zap.String("category", string(q.Category.Key)),
			zap.Int("matched", len(listings)),
		)
	}
	res.Listings = listings
	return res, nil
}

func bucketMix(resp *semas.StoreListResponse) map[string]int {
	if resp == nil || len(resp.Body.Items) == 0 {
		return nil
	}
	counts := make(map[string]int)
	for _, st := range resp.Body.Items {
		if st.IndsMclsNm == "" {
			continue
		}
		counts[st.IndsMclsNm]++
	}
	return counts
}

func semasListing(q Query, st semas.Store) model.RawListing {
	l := model.RawListing{
		Name:         storeName(st),
		Category:     st.IndsMclsNm,
		CategoryCode: st.IndsMclsCd,
		Address:      firstNonEmpty(st.RdnmAdr, st.LnoAdr),
		Source:       model.SourceSemasStore,
		TargetMatch:  true,
	}
	if st.Lon != 0 || st.Lat != 0 {
		coord := model.Coordinate{Lon: st.Lon, Lat: st.Lat}
		dist := geo.HaversineMeters(q.Center, coord)
		l.Coord = &coord
		l.DistanceM = &dist
	}
	return l
}

func storeName(st semas.Store) string {
	if st.BrchNm == "" {
		return st.BizesNm
	}
	return strings.TrimSpace(st.BizesNm + " " + st.BrchNm)
}
