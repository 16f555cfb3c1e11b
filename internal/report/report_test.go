package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikjoobang/xivix-best-map/internal/category"
	"github.com/ikjoobang/xivix-best-map/internal/classify"
	"github.com/ikjoobang/xivix-best-map/internal/model"
	"github.com/ikjoobang/xivix-best-map/internal/provider"
	"github.com/ikjoobang/xivix-best-map/pkg/naver"
)

func iptr(v int) *int { return &v }

func fptr(v float64) *float64 { return &v }

func testQuery() provider.Query {
	return provider.Query{
		Center:      model.Coordinate{Lon: 127.0056, Lat: 37.5558},
		RadiusM:     500,
		Category:    category.Category{Key: "cafe", Display: "카페"},
		AddressHint: "서울 마포구 망원동",
	}
}

func testOutcomes() []provider.Outcome {
	return []provider.Outcome{
		{
			Source: model.SourceSemasStore,
			Result: &provider.Result{
				ReportedTotal: iptr(15),
				Listings:      make([]model.RawListing, 12),
			},
		},
		{
			Source: model.SourceKakaoKeyword,
			Result: &provider.Result{
				ReportedTotal: iptr(40),
				Listings:      make([]model.RawListing, 30),
			},
		},
		{
			Source: model.SourceNaverLocal,
			Err: provider.Classify(model.SourceNaverLocal, &naver.APIError{
				StatusCode: 500,
				ErrorCode:  "900",
				Message:    "system error, key=sk-secret",
			}),
		},
	}
}

func TestAssemble(t *testing.T) {
	summary := model.AnalysisSummary{
		EstimatedCompetitorCount: 24,
		AreaKm2:                  0.785,
		DensityPerKm2:            30.6,
		RiskTier:                 model.RiskMedium,
		RiskDescription:          "반경 내 동종 업체가 24곳으로 추정됩니다.",
		CrossVerifiedCount:       2,
		Reliability:              model.ReliabilityMedium,
	}
	competitors := []model.Business{
		{Name: "커피한약방", Category: "커피점/카페", Sources: []model.SourceID{model.SourceSemasStore, model.SourceKakaoKeyword}},
	}
	breakdown := classify.Breakdown{
		{Category: "커피점/카페", Count: 15},
		{Category: "한식", Count: 5},
	}

	r := Assemble(testQuery(), testOutcomes(), breakdown, competitors, summary)
	require.NotNil(t, r)

	assert.NotEmpty(t, r.Meta.AnalysisID)
	assert.WithinDuration(t, time.Now(), r.Meta.AnalyzedAt, 5*time.Second)
	assert.Equal(t, 127.0056, r.Meta.CenterLon)
	assert.Equal(t, 37.5558, r.Meta.CenterLat)
	assert.Equal(t, 500, r.Meta.RadiusMeters)
	assert.Equal(t, "카페", r.Meta.Category)
	assert.Equal(t, "cafe", r.Meta.CategoryKey)
	assert.Equal(t, "서울 마포구 망원동", r.Meta.AddressHint)

	require.Len(t, r.PerSource, 3)
	semasSt := r.PerSource[model.SourceSemasStore]
	assert.True(t, semasSt.OK)
	require.NotNil(t, semasSt.ReportedTotal)
	assert.Equal(t, 15, *semasSt.ReportedTotal)
	assert.Equal(t, 12, semasSt.ReturnedCount)

	naverSt := r.PerSource[model.SourceNaverLocal]
	assert.False(t, naverSt.OK)
	assert.Nil(t, naverSt.ReportedTotal)
	assert.Zero(t, naverSt.ReturnedCount)

	assert.Equal(t, map[string]int{"커피점/카페": 15, "한식": 5}, r.CategoryBreakdown)
	assert.Equal(t, competitors, r.Competitors)
	assert.Equal(t, summary, r.Summary)
}

func TestAssemble_DistinctIDs(t *testing.T) {
	a := Assemble(testQuery(), nil, nil, nil, model.AnalysisSummary{})
	b := Assemble(testQuery(), nil, nil, nil, model.AnalysisSummary{})
	assert.NotEqual(t, a.Meta.AnalysisID, b.Meta.AnalysisID)
}

func TestAssemble_FailureCarriesNoErrorDetails(t *testing.T) {
	r := Assemble(testQuery(), testOutcomes(), nil, nil, model.AnalysisSummary{})

	raw, err := json.Marshal(r)
	require.NoError(t, err)

	// A failed source surfaces only as ok=false; provider error text,
	// status codes, and key material must not reach the response.
	assert.NotContains(t, string(raw), "sk-secret")
	assert.NotContains(t, string(raw), "system error")
	assert.NotContains(t, string(raw), "status error")
}

func TestFacts(t *testing.T) {
	summary := model.AnalysisSummary{
		EstimatedCompetitorCount: 24,
		AreaKm2:                  0.785,
		DensityPerKm2:            30.6,
		RiskTier:                 model.RiskMedium,
		RiskDescription:          "반경 내 동종 업체가 24곳으로 추정됩니다. 차별화 전략이 필요합니다.",
		CrossVerifiedCount:       2,
		Reliability:              model.ReliabilityMedium,
	}
	competitors := []model.Business{
		{Name: "커피한약방", Category: "커피점/카페", DistanceM: fptr(208), Sources: []model.SourceID{model.SourceSemasStore, model.SourceKakaoKeyword}},
		{Name: "메가커피 망원점", Category: "카페", DistanceM: fptr(120), Sources: []model.SourceID{model.SourceKakaoKeyword}},
		{Name: "거리미상집", Sources: []model.SourceID{model.SourceNaverLocal}},
	}
	breakdown := classify.Breakdown{
		{Category: "커피점/카페", Count: 15},
		{Category: "한식", Count: 5},
	}

	r := Assemble(testQuery(), testOutcomes(), breakdown, competitors, summary)
	facts := Facts(r)

	assert.Contains(t, facts, "# 상권 분석 결과: 카페")
	assert.Contains(t, facts, "중심 좌표: (127.005600, 37.555800)")
	assert.Contains(t, facts, "반경: 500m")
	assert.Contains(t, facts, "기준 주소: 서울 마포구 망원동")
	assert.Contains(t, facts, "추정 경쟁 업체 수: 24")
	assert.Contains(t, facts, "차별화 전략이 필요합니다")
	assert.Contains(t, facts, "semas_store: 정상, 보고 총계 15, 수집 12건")
	assert.Contains(t, facts, "naver_local: 실패, 수집 0건")
	assert.Contains(t, facts, "커피점/카페: 15곳")
	assert.Contains(t, facts, "커피한약방 (커피점/카페, 208m, 확인 소스 2개)")
	assert.Contains(t, facts, "거리미상집 (업종 미상, 거리 미상, 확인 소스 1개)")

	// Biggest bucket renders before the smaller one.
	assert.Less(t, strings.Index(facts, "커피점/카페: 15곳"), strings.Index(facts, "한식: 5곳"))
}

func TestFacts_CapsCompetitorList(t *testing.T) {
	competitors := make([]model.Business, 14)
	for i := range competitors {
		competitors[i] = model.Business{
			Name:    fmt.Sprintf("업체%02d", i),
			Sources: []model.SourceID{model.SourceKakaoKeyword},
		}
	}

	r := Assemble(testQuery(), nil, nil, competitors, model.AnalysisSummary{})
	facts := Facts(r)

	assert.Contains(t, facts, "업체09")
	assert.NotContains(t, facts, "업체10")
	assert.Contains(t, facts, "외 4곳")
}

func TestFacts_OmitsEmptySections(t *testing.T) {
	r := Assemble(provider.Query{
		Center:   model.Coordinate{Lon: 127.0, Lat: 37.5},
		RadiusM:  300,
		Category: category.Category{Key: "cafe", Display: "카페"},
	}, nil, nil, nil, model.AnalysisSummary{
		RiskTier:    model.RiskBlueOcean,
		Reliability: model.ReliabilityUnavailable,
	})
	facts := Facts(r)

	assert.NotContains(t, facts, "기준 주소")
	assert.NotContains(t, facts, "## 업종 구성")
	assert.NotContains(t, facts, "## 주요 경쟁 업체")
	assert.Contains(t, facts, "신뢰도: unavailable")
}
