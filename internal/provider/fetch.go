package provider

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ikjoobang/xivix-best-map/internal/metrics"
	"github.com/ikjoobang/xivix-best-map/internal/model"
)

// Outcome is the per-source result of a fan-out. Exactly one of Result and
// Err is set.
type Outcome struct {
	Source  model.SourceID
	Result  *Result
	Err     *AdapterError
	Elapsed time.Duration
}

// FetchAll runs every adapter concurrently against the same query, each under
// its own timeout. Failures are captured per source and never abort the
// remaining adapters.
func FetchAll(ctx context.Context, adapters []Adapter, q Query, timeout time.Duration) []Outcome {
	log := zap.L().With(zap.String("component", "provider.fetch"))

	outcomes := make([]Outcome, len(adapters))
	g, gctx := errgroup.WithContext(ctx)

	for i, a := range adapters {
		g.Go(func() error {
			start := time.Now()
			fetchCtx, cancel := context.WithTimeout(gctx, timeout)
			res, err := a.Fetch(fetchCtx, q)
			cancel()
			elapsed := time.Since(start)

			metrics.ObserveProvider(string(a.Source()), start, err)

			if err != nil {
				aerr := Classify(a.Source(), err)
				log.Warn("source fetch failed",
					zap.String("source", string(a.Source())),
					zap.String("kind", string(aerr.Kind)),
					zap.Duration("elapsed", elapsed),
					zap.Error(err),
				)
				outcomes[i] = Outcome{Source: a.Source(), Err: aerr, Elapsed: elapsed}
				return nil // degraded sources must not abort the others
			}

			log.Debug("source fetch complete",
				zap.String("source", string(a.Source())),
				zap.Int("listings", len(res.Listings)),
				zap.Bool("has_total", res.ReportedTotal != nil),
				zap.Duration("elapsed", elapsed),
			)
			outcomes[i] = Outcome{Source: a.Source(), Result: res, Elapsed: elapsed}
			return nil
		})
	}

	_ = g.Wait()
	return outcomes
}
