package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ikjoobang/xivix-best-map/internal/category"
	"github.com/ikjoobang/xivix-best-map/internal/model"
)

func TestMatchesKeywords(t *testing.T) {
	cat := category.Category{
		Key:      "cafe",
		Keywords: []string{"카페", "커피", "", "Cafe"},
	}

	tests := []struct {
		name         string
		listingName  string
		categoryText string
		want         bool
	}{
		{"korean in name", "봄날커피", "", true},
		{"korean in category", "온화", "음식점>카페", true},
		{"latin case folded", "Blue Bottle CAFE", "", true},
		{"no hit", "망원문구", "문구,사무용품", false},
		{"empty inputs", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchesKeywords(cat, tt.listingName, tt.categoryText))
		})
	}
}

func TestApplyKeywordFallback_StructuredMatchWins(t *testing.T) {
	listings := []model.RawListing{
		{Name: "커피한약방", TargetMatch: true},
		{Name: "망원문구", TargetMatch: false},
	}

	got := applyKeywordFallback(model.SourceKakaoKeyword, cafeCategory(), listings)

	// One structured match means keyword matching never runs.
	assert.True(t, got[0].TargetMatch)
	assert.False(t, got[1].TargetMatch)
}

func TestApplyKeywordFallback_MarksKeywordHits(t *testing.T) {
	listings := []model.RawListing{
		{Name: "봄날커피", Category: "음식점"},
		{Name: "온화", Category: "카페"},
		{Name: "망원문구", Category: "문구"},
	}

	got := applyKeywordFallback(model.SourceKakaoKeyword, cafeCategory(), listings)

	assert.True(t, got[0].TargetMatch)
	assert.True(t, got[1].TargetMatch)
	assert.False(t, got[2].TargetMatch)
}
