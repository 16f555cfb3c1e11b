// Package classify derives the competitor list and the category mix from
// the aggregated businesses.
package classify

import (
	"sort"

	"go.uber.org/zap"

	"github.com/ikjoobang/xivix-best-map/internal/model"
)

// defaultSampleCap bounds how many businesses a bucket carries as examples
// when the caller does not set its own cap.
const defaultSampleCap = 30

// uncategorized labels businesses whose providers reported no category.
const uncategorized = "기타"

// Bucket is one category's share of the neighborhood.
type Bucket struct {
	Category string           `json:"category"`
	Count    int              `json:"count"`
	Samples  []model.Business `json:"samples,omitempty"`
}

// Breakdown is the per-category mix, ordered by descending count with ties
// broken by name.
type Breakdown []Bucket

// Counts flattens the breakdown for the report schema.
func (bd Breakdown) Counts() map[string]int {
	if len(bd) == 0 {
		return nil
	}
	m := make(map[string]int, len(bd))
	for _, b := range bd {
		m[b.Category] = b.Count
	}
	return m
}

// Classify splits out the target-category competitors and builds the
// category mix. Directory counts win when present; otherwise the mix is
// regrouped from the merged businesses themselves, which is logged because
// those counts cover only fetched listings, not directory statistics.
// sampleCap <= 0 selects the default cap.
func Classify(businesses []model.Business, authoritative map[string]int, sampleCap int) (Breakdown, []model.Business) {
	if sampleCap <= 0 {
		sampleCap = defaultSampleCap
	}

	var competitors []model.Business
	for _, b := range businesses {
		if b.IsTargetCategory {
			competitors = append(competitors, b)
		}
	}

	samples := sampleByCategory(businesses, sampleCap)

	var bd Breakdown
	if len(authoritative) > 0 {
		bd = make(Breakdown, 0, len(authoritative))
		for name, count := range authoritative {
			bd = append(bd, Bucket{Category: name, Count: count, Samples: samples[name]})
		}
	} else {
		zap.L().Info("no directory category counts, regrouping merged businesses",
			zap.Int("businesses", len(businesses)),
		)
		bd = make(Breakdown, 0, len(samples))
		counts := make(map[string]int)
		for _, b := range businesses {
			counts[categoryLabel(b)]++
		}
		for name, count := range counts {
			bd = append(bd, Bucket{Category: name, Count: count, Samples: samples[name]})
		}
	}

	sort.Slice(bd, func(i, j int) bool {
		if bd[i].Count != bd[j].Count {
			return bd[i].Count > bd[j].Count
		}
		return bd[i].Category < bd[j].Category
	})
	return bd, competitors
}

func sampleByCategory(businesses []model.Business, limit int) map[string][]model.Business {
	samples := make(map[string][]model.Business)
	for _, b := range businesses {
		label := categoryLabel(b)
		if len(samples[label]) >= limit {
			continue
		}
		samples[label] = append(samples[label], b)
	}
	return samples
}

func categoryLabel(b model.Business) string {
	if b.Category == "" {
		return uncategorized
	}
	return b.Category
}
