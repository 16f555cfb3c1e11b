package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikjoobang/xivix-best-map/internal/model"
)

func fptr(v float64) *float64 { return &v }

func TestMerge_DedupAcrossSources(t *testing.T) {
	perSource := []SourceListings{
		{
			Source: model.SourceKakaoKeyword,
			Listings: []model.RawListing{
				{
					Name:        "커피 한약방",
					Category:    "카페",
					Address:     "서울특별시 마포구 포은로 81",
					Phone:       "02-1234-5678",
					DistanceM:   fptr(208),
					Source:      model.SourceKakaoKeyword,
					TargetMatch: true,
				},
			},
		},
		{
			Source: model.SourceSemasStore,
			Listings: []model.RawListing{
				{
					Name:        "커피한약방",
					Category:    "커피점/카페",
					Address:     "서울특별시 마포구 포은로 81",
					Coord:       &model.Coordinate{Lon: 127.002, Lat: 37.501},
					Source:      model.SourceSemasStore,
					TargetMatch: true,
				},
			},
		},
	}

	got := Merge(perSource)
	require.Len(t, got, 1)

	b := got[0]
	// The directory outranks keyword search even though it came second in
	// the input, so its spelling and category win.
	assert.Equal(t, "커피한약방", b.Name)
	assert.Equal(t, "커피점/카페", b.Category)
	assert.Equal(t, []model.SourceID{model.SourceSemasStore, model.SourceKakaoKeyword}, b.Sources)
	assert.True(t, b.IsTargetCategory)
	assert.True(t, b.CrossVerified())

	// Gaps fill from the lower-priority listing.
	assert.Equal(t, "+82212345678", b.Phone)
	require.NotNil(t, b.Coord)
	require.NotNil(t, b.DistanceM)
	assert.Equal(t, 208.0, *b.DistanceM)
}

func TestMerge_SeparateWhenAddressDiffers(t *testing.T) {
	perSource := []SourceListings{
		{
			Source: model.SourceKakaoKeyword,
			Listings: []model.RawListing{
				{Name: "메가커피", Address: "서울 마포구 포은로 81", Source: model.SourceKakaoKeyword},
				{Name: "메가커피", Address: "서울 마포구 월드컵로 20", Source: model.SourceKakaoKeyword},
			},
		},
	}

	got := Merge(perSource)
	assert.Len(t, got, 2)
}

func TestMerge_OverlapCounts(t *testing.T) {
	mk := func(src model.SourceID, names ...string) SourceListings {
		sl := SourceListings{Source: src}
		for _, n := range names {
			sl.Listings = append(sl.Listings, model.RawListing{
				Name:    n,
				Address: "서울 마포구 망원로 " + n,
				Source:  src,
			})
		}
		return sl
	}

	// Five from keyword search, three from category search, two shared.
	perSource := []SourceListings{
		mk(model.SourceKakaoKeyword, "가", "나", "다", "라", "마"),
		mk(model.SourceKakaoCategory, "가", "나", "바"),
	}

	got := Merge(perSource)
	assert.Len(t, got, 6)

	cross := 0
	attributions := 0
	for _, b := range got {
		attributions += len(b.Sources)
		if b.CrossVerified() {
			cross++
		}
	}
	assert.Equal(t, 2, cross)
	// No listing disappears: eight inputs, eight source attributions.
	assert.Equal(t, 8, attributions)
}

func TestMerge_DropsNamelessListing(t *testing.T) {
	perSource := []SourceListings{
		{
			Source: model.SourceNaverLocal,
			Listings: []model.RawListing{
				{Name: "   ", Address: "서울 마포구 망원로 1", Source: model.SourceNaverLocal},
				{Name: "온화상점", Address: "서울 마포구 망원로 2", Source: model.SourceNaverLocal},
			},
		},
	}

	got := Merge(perSource)
	require.Len(t, got, 1)
	assert.Equal(t, "온화상점", got[0].Name)
}

func TestMerge_Idempotent(t *testing.T) {
	perSource := []SourceListings{
		{
			Source: model.SourceKakaoKeyword,
			Listings: []model.RawListing{
				{Name: "봄날커피", Address: "A", DistanceM: fptr(10), Source: model.SourceKakaoKeyword},
				{Name: "온화", Address: "B", DistanceM: fptr(5), Source: model.SourceKakaoKeyword},
			},
		},
		{
			Source: model.SourceNaverLocal,
			Listings: []model.RawListing{
				{Name: "봄날커피", Address: "A", Source: model.SourceNaverLocal},
			},
		},
	}

	first := Merge(perSource)
	second := Merge(perSource)
	assert.Equal(t, first, second)
}

func TestMerge_Ordering(t *testing.T) {
	perSource := []SourceListings{
		{
			Source: model.SourceSemasStore,
			Listings: []model.RawListing{
				{Name: "멀리두번", Address: "X", DistanceM: fptr(300), Source: model.SourceSemasStore},
				{Name: "가까이두번", Address: "Y", DistanceM: fptr(100), Source: model.SourceSemasStore},
			},
		},
		{
			Source: model.SourceNaverLocal,
			Listings: []model.RawListing{
				{Name: "멀리두번", Address: "X", Source: model.SourceNaverLocal},
				{Name: "가까이두번", Address: "Y", Source: model.SourceNaverLocal},
				{Name: "가까이한번", Address: "Z", DistanceM: fptr(5), Source: model.SourceNaverLocal},
				{Name: "거리미상", Address: "W", Source: model.SourceNaverLocal},
			},
		},
	}

	got := Merge(perSource)
	require.Len(t, got, 4)

	names := make([]string, len(got))
	for i, b := range got {
		names[i] = b.Name
	}
	// Cross-verified first (nearest leading), then single-source by
	// distance, unknown distance last.
	assert.Equal(t, []string{"가까이두번", "멀리두번", "가까이한번", "거리미상"}, names)
}
