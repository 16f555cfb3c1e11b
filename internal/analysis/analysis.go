// Package analysis orchestrates one viability analysis: request validation,
// category resolution, address backfill, provider fan-out, aggregation,
// classification, estimation, and report assembly.
package analysis

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ikjoobang/xivix-best-map/internal/aggregate"
	"github.com/ikjoobang/xivix-best-map/internal/category"
	"github.com/ikjoobang/xivix-best-map/internal/classify"
	"github.com/ikjoobang/xivix-best-map/internal/estimate"
	"github.com/ikjoobang/xivix-best-map/internal/metrics"
	"github.com/ikjoobang/xivix-best-map/internal/model"
	"github.com/ikjoobang/xivix-best-map/internal/provider"
	"github.com/ikjoobang/xivix-best-map/internal/report"
	"github.com/ikjoobang/xivix-best-map/pkg/kakao"
)

const (
	defaultAdapterTimeout = 3 * time.Second

	// maxRadiusMeters is the hard API bound; Kakao rejects larger radii.
	maxRadiusMeters = 20000
)

// Request is one analysis request as received from the CLI or HTTP layer.
type Request struct {
	CenterLon    float64 `json:"centerLon" validate:"min=-180,max=180"`
	CenterLat    float64 `json:"centerLat" validate:"min=-90,max=90"`
	RadiusMeters int     `json:"radiusMeters" validate:"gt=0,lte=20000"`
	Category     string  `json:"category" validate:"required"`
	AddressHint  string  `json:"addressHint"`
}

// RequestError rejects a request before any provider work starts.
// Transports map it to a client error instead of a server fault.
type RequestError struct {
	cause error
}

func (e *RequestError) Error() string { return e.cause.Error() }

func (e *RequestError) Unwrap() error { return e.cause }

// Geocoder is the slice of the Kakao client used to backfill an empty
// address hint. Nil disables the backfill.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, longitude, latitude float64) (*kakao.Coord2AddressResponse, error)
}

// Analyzer runs analyses against a fixed adapter set.
type Analyzer struct {
	adapters  []provider.Adapter
	registry  *category.Registry
	estimator *estimate.Estimator
	geocoder  Geocoder
	validate  *validator.Validate
	timeout   time.Duration
	maxRadius int
	sampleCap int
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithAdapterTimeout bounds each provider call.
func WithAdapterTimeout(d time.Duration) Option {
	return func(a *Analyzer) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithMaxRadius lowers the request radius cap below the API bound.
func WithMaxRadius(m int) Option {
	return func(a *Analyzer) {
		if m > 0 && m < maxRadiusMeters {
			a.maxRadius = m
		}
	}
}

// WithSampleCap bounds sample listings kept per category bucket.
func WithSampleCap(n int) Option {
	return func(a *Analyzer) {
		a.sampleCap = n
	}
}

// New creates an Analyzer.
func New(adapters []provider.Adapter, reg *category.Registry, est *estimate.Estimator, geo Geocoder, opts ...Option) *Analyzer {
	a := &Analyzer{
		adapters:  adapters,
		registry:  reg,
		estimator: est,
		geocoder:  geo,
		validate:  validator.New(),
		timeout:   defaultAdapterTimeout,
		maxRadius: maxRadiusMeters,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Analyze runs one full analysis. Provider failures only degrade the
// report; the call itself fails solely on an invalid request.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*model.AnalysisReport, error) {
	start := time.Now()

	q, err := a.buildQuery(ctx, req)
	if err != nil {
		return nil, err
	}

	log := zap.L().With(
		zap.String("component", "analysis"),
		zap.String("category", string(q.Category.Key)),
		zap.Int("radius_m", q.RadiusM),
	)
	log.Info("analysis started",
		zap.Float64("lon", q.Center.Lon),
		zap.Float64("lat", q.Center.Lat),
	)

	outcomes := provider.FetchAll(ctx, a.adapters, q, a.timeout)

	// Fold successful outcomes into the aggregation inputs. Totals carry
	// one entry per succeeded source even when that source reported no
	// usable total; failed sources stay absent so the estimator can tell
	// "nobody answered" from "answered zero".
	perSource := make([]aggregate.SourceListings, 0, len(outcomes))
	totals := make(map[model.SourceID]*int, len(outcomes))
	var directoryCounts map[string]int
	succeeded := 0
	for _, o := range outcomes {
		if o.Err != nil {
			continue
		}
		succeeded++
		perSource = append(perSource, aggregate.SourceListings{
			Source:   o.Source,
			Listings: o.Result.Listings,
		})
		totals[o.Source] = o.Result.ReportedTotal
		if len(o.Result.CategoryCounts) > 0 {
			directoryCounts = o.Result.CategoryCounts
		}
	}

	businesses := aggregate.Merge(perSource)
	breakdown, competitors := classify.Classify(businesses, directoryCounts, a.sampleCap)
	summary := a.estimator.Estimate(totals, businesses, q.RadiusM)

	r := report.Assemble(q, outcomes, breakdown, competitors, summary)

	metrics.ObserveAnalysis(string(summary.RiskTier), string(summary.Reliability), start)
	log.Info("analysis complete",
		zap.String("analysis_id", r.Meta.AnalysisID),
		zap.Int("sources_ok", succeeded),
		zap.Int("businesses", len(businesses)),
		zap.Int("estimate", summary.EstimatedCompetitorCount),
		zap.String("risk_tier", string(summary.RiskTier)),
		zap.String("reliability", string(summary.Reliability)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return r, nil
}

func (a *Analyzer) buildQuery(ctx context.Context, req Request) (provider.Query, error) {
	if err := a.validate.Struct(req); err != nil {
		return provider.Query{}, &RequestError{cause: eris.Wrap(err, "analysis: invalid request")}
	}
	if req.RadiusMeters > a.maxRadius {
		return provider.Query{}, &RequestError{cause: eris.Errorf("analysis: radius %dm exceeds maximum %dm", req.RadiusMeters, a.maxRadius)}
	}

	cat, err := a.registry.Resolve(req.Category)
	if err != nil {
		return provider.Query{}, &RequestError{cause: err}
	}

	q := provider.Query{
		Center:      model.Coordinate{Lon: req.CenterLon, Lat: req.CenterLat},
		RadiusM:     req.RadiusMeters,
		Category:    cat,
		AddressHint: strings.TrimSpace(req.AddressHint),
	}
	if q.AddressHint == "" && a.geocoder != nil {
		q.AddressHint = a.lookupAddress(ctx, q.Center)
	}
	return q, nil
}

// lookupAddress reverse-geocodes the center. Best effort: a failed lookup
// leaves the hint empty and costs nothing else.
func (a *Analyzer) lookupAddress(ctx context.Context, c model.Coordinate) string {
	resp, err := a.geocoder.ReverseGeocode(ctx, c.Lon, c.Lat)
	if err != nil {
		zap.L().Warn("reverse geocode failed",
			zap.Float64("lon", c.Lon),
			zap.Float64("lat", c.Lat),
			zap.Error(err),
		)
		return ""
	}
	return resp.PrimaryAddress()
}
