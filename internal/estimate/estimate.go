// Package estimate turns partial per-source competitor totals into a
// weighted estimate with density, risk tier, and reliability grading.
package estimate

import (
	"fmt"
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ikjoobang/xivix-best-map/internal/geo"
	"github.com/ikjoobang/xivix-best-map/internal/model"
)

// weightTolerance allows float drift when checking that weights sum to 1.
const weightTolerance = 1e-6

// crossVerifiedHighBar: more multi-source confirmations than this rates
// the summary high-reliability.
const crossVerifiedHighBar = 5

// DefaultWeights is the convex weighting over source totals. The store
// directory carries the most weight because its totals are category-coded
// census counts, not search-result sizes.
func DefaultWeights() map[model.SourceID]float64 {
	return map[model.SourceID]float64{
		model.SourceSemasStore:    0.40,
		model.SourceKakaoKeyword:  0.25,
		model.SourceKakaoCategory: 0.20,
		model.SourceNaverLocal:    0.15,
	}
}

// Estimator computes the analysis summary from whatever subset of sources
// answered.
type Estimator struct {
	weights map[model.SourceID]float64
}

// NewEstimator validates that weights are non-negative and sum to 1.
// Empty weights fall back to the defaults.
func NewEstimator(weights map[model.SourceID]float64) (*Estimator, error) {
	if len(weights) == 0 {
		weights = DefaultWeights()
	}

	sum := 0.0
	for src, w := range weights {
		if w < 0 {
			return nil, eris.Errorf("estimate: weight for %s must be >= 0", src)
		}
		sum += w
	}
	if math.Abs(sum-1) > weightTolerance {
		return nil, eris.Errorf("estimate: weights sum to %.4f, want 1.0", sum)
	}
	return &Estimator{weights: weights}, nil
}

// Estimate computes the summary. perSourceTotals carries one entry per
// succeeded source, nil-valued when that source reported no usable total;
// failed sources are absent entirely. The distinction matters: an empty
// map forces the unavailable sentinel, a zero-valued total is a confirmed
// zero.
func (e *Estimator) Estimate(perSourceTotals map[model.SourceID]*int, businesses []model.Business, radiusMeters int) model.AnalysisSummary {
	area := geo.CircleAreaKm2(radiusMeters)

	crossVerified := 0
	targets := 0
	for _, b := range businesses {
		if b.CrossVerified() {
			crossVerified++
		}
		if b.IsTargetCategory {
			targets++
		}
	}

	if len(perSourceTotals) == 0 {
		return model.AnalysisSummary{
			AreaKm2:            area,
			RiskTier:           model.RiskBlueOcean,
			RiskDescription:    "모든 데이터 소스 조회에 실패하여 경쟁 현황을 추정할 수 없습니다.",
			CrossVerifiedCount: crossVerified,
			Reliability:        model.ReliabilityUnavailable,
		}
	}

	count := 0
	if weighted, ok := e.weightedEstimate(perSourceTotals); ok {
		count = int(math.Round(weighted))
	} else {
		// Sources answered but none carried a total: the merged set itself
		// is the best remaining count.
		zap.L().Debug("no source totals, falling back to merged target count",
			zap.Int("targets", targets),
		)
		count = targets
	}

	tier, desc := riskTier(count)

	reliability := model.ReliabilityMedium
	if crossVerified > crossVerifiedHighBar {
		reliability = model.ReliabilityHigh
	}

	return model.AnalysisSummary{
		EstimatedCompetitorCount: count,
		AreaKm2:                  area,
		DensityPerKm2:            float64(count) / area,
		RiskTier:                 tier,
		RiskDescription:          desc,
		CrossVerifiedCount:       crossVerified,
		Reliability:              reliability,
	}
}

// weightedEstimate folds the reported totals into a convex combination.
// Dividing by the participating weight mass redistributes missing sources'
// weights proportionally; an absent total never counts as zero.
func (e *Estimator) weightedEstimate(totals map[model.SourceID]*int) (float64, bool) {
	num, den := 0.0, 0.0
	for src, total := range totals {
		if total == nil {
			continue
		}
		w, ok := e.weights[src]
		if !ok {
			zap.L().Warn("source has no estimator weight, ignoring its total",
				zap.String("source", string(src)),
			)
			continue
		}
		num += w * float64(*total)
		den += w
	}
	if den == 0 {
		return 0, false
	}
	return num / den, true
}

func riskTier(count int) (model.RiskTier, string) {
	switch {
	case count <= 0:
		return model.RiskBlueOcean,
			"반경 내 동종 업체가 확인되지 않았습니다. 수요 검증이 선행되어야 하는 미개척 상권입니다."
	case count <= 10:
		return model.RiskLow,
			fmt.Sprintf("반경 내 추정 경쟁 업체 %d곳으로 경쟁 강도가 낮은 상권입니다.", count)
	case count <= 30:
		return model.RiskMedium,
			fmt.Sprintf("반경 내 추정 경쟁 업체 %d곳으로 경쟁이 형성된 상권입니다. 차별화 전략이 필요합니다.", count)
	case count <= 70:
		return model.RiskHigh,
			fmt.Sprintf("반경 내 추정 경쟁 업체 %d곳으로 경쟁이 치열한 상권입니다. 입지 재검토를 권합니다.", count)
	default:
		return model.RiskVeryHigh,
			fmt.Sprintf("반경 내 추정 경쟁 업체 %d곳으로 과포화 상권입니다. 진입 위험이 매우 높습니다.", count)
	}
}
