package provider

import (
	"strings"

	"go.uber.org/zap"

	"github.com/ikjoobang/xivix-best-map/internal/category"
	"github.com/ikjoobang/xivix-best-map/internal/model"
)

// matchesKeywords reports whether any of the category's keywords appear in
// the listing name or its category text.
func matchesKeywords(cat category.Category, name, categoryText string) bool {
	haystack := strings.ToLower(name + " " + categoryText)
	for _, kw := range cat.Keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(haystack, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// applyKeywordFallback marks keyword hits when no listing carried a
// structured category match. Listings with any structured match pass through
// unchanged; the fallback is logged so degraded matching stays visible.
func applyKeywordFallback(source model.SourceID, cat category.Category, listings []model.RawListing) []model.RawListing {
	for _, l := range listings {
		if l.TargetMatch {
			return listings
		}
	}

	matched := 0
	for i := range listings {
		if matchesKeywords(cat, listings[i].Name, listings[i].Category) {
			listings[i].TargetMatch = true
			matched++
		}
	}
	if matched > 0 {
		zap.L().Info("category match fell back to keywords",
			zap.String("source", string(source)),
			zap.String("category", string(cat.Key)),
			zap.Int("matched", matched),
		)
	}
	return listings
}
