// Package report assembles the analysis response object and renders the
// plain-text fact sheet the advisory generator consumes.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ikjoobang/xivix-best-map/internal/classify"
	"github.com/ikjoobang/xivix-best-map/internal/model"
	"github.com/ikjoobang/xivix-best-map/internal/provider"
)

// factCompetitorCap bounds how many competitors the fact sheet lists.
const factCompetitorCap = 10

// Assemble packages one analysis into the response object. Pure data
// transformation: per source only a success flag and counts survive, never
// credentials or error chains.
func Assemble(q provider.Query, outcomes []provider.Outcome, breakdown classify.Breakdown, competitors []model.Business, summary model.AnalysisSummary) *model.AnalysisReport {
	perSource := make(map[model.SourceID]model.SourceStatus, len(outcomes))
	for _, o := range outcomes {
		st := model.SourceStatus{OK: o.Err == nil}
		if o.Result != nil {
			st.ReportedTotal = o.Result.ReportedTotal
			st.ReturnedCount = len(o.Result.Listings)
		}
		perSource[o.Source] = st
	}

	return &model.AnalysisReport{
		Meta: model.ReportMeta{
			AnalysisID:   uuid.NewString(),
			CenterLon:    q.Center.Lon,
			CenterLat:    q.Center.Lat,
			RadiusMeters: q.RadiusM,
			Category:     q.Category.Display,
			CategoryKey:  string(q.Category.Key),
			AddressHint:  q.AddressHint,
			AnalyzedAt:   time.Now(),
		},
		PerSource:         perSource,
		Summary:           summary,
		Competitors:       competitors,
		CategoryBreakdown: breakdown.Counts(),
	}
}

// Facts renders the report as a plain-text fact base. The advisory
// generator receives this verbatim, so everything it should reason about
// has to be in here.
func Facts(r *model.AnalysisReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# 상권 분석 결과: %s\n", r.Meta.Category)
	fmt.Fprintf(&b, "중심 좌표: (%.6f, %.6f)\n", r.Meta.CenterLon, r.Meta.CenterLat)
	fmt.Fprintf(&b, "반경: %dm (면적 %.3f km²)\n", r.Meta.RadiusMeters, r.Summary.AreaKm2)
	if r.Meta.AddressHint != "" {
		fmt.Fprintf(&b, "기준 주소: %s\n", r.Meta.AddressHint)
	}
	b.WriteString("\n")

	// Summary.
	b.WriteString("## 요약\n")
	fmt.Fprintf(&b, "- 추정 경쟁 업체 수: %d\n", r.Summary.EstimatedCompetitorCount)
	fmt.Fprintf(&b, "- 밀도: %.1f개/km²\n", r.Summary.DensityPerKm2)
	fmt.Fprintf(&b, "- 위험 등급: %s\n", r.Summary.RiskTier)
	fmt.Fprintf(&b, "- 평가: %s\n", r.Summary.RiskDescription)
	fmt.Fprintf(&b, "- 교차 확인 업체 수: %d\n", r.Summary.CrossVerifiedCount)
	fmt.Fprintf(&b, "- 신뢰도: %s\n\n", r.Summary.Reliability)

	// Source status.
	b.WriteString("## 데이터 소스\n")
	ids := make([]string, 0, len(r.PerSource))
	for id := range r.PerSource {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)
	for _, id := range ids {
		st := r.PerSource[model.SourceID(id)]
		status := "실패"
		if st.OK {
			status = "정상"
		}
		if st.ReportedTotal != nil {
			fmt.Fprintf(&b, "- %s: %s, 보고 총계 %d, 수집 %d건\n", id, status, *st.ReportedTotal, st.ReturnedCount)
		} else {
			fmt.Fprintf(&b, "- %s: %s, 수집 %d건\n", id, status, st.ReturnedCount)
		}
	}
	b.WriteString("\n")

	// Category mix, biggest bucket first.
	if len(r.CategoryBreakdown) > 0 {
		b.WriteString("## 업종 구성\n")
		type entry struct {
			name  string
			count int
		}
		entries := make([]entry, 0, len(r.CategoryBreakdown))
		for name, count := range r.CategoryBreakdown {
			entries = append(entries, entry{name, count})
		}
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].count != entries[j].count {
				return entries[i].count > entries[j].count
			}
			return entries[i].name < entries[j].name
		})
		for _, e := range entries {
			fmt.Fprintf(&b, "- %s: %d곳\n", e.name, e.count)
		}
		b.WriteString("\n")
	}

	// Competitors, nearest first per the aggregation order.
	if len(r.Competitors) > 0 {
		b.WriteString("## 주요 경쟁 업체\n")
		for i, c := range r.Competitors {
			if i == factCompetitorCap {
				fmt.Fprintf(&b, "외 %d곳\n", len(r.Competitors)-factCompetitorCap)
				break
			}
			dist := "거리 미상"
			if c.DistanceM != nil {
				dist = fmt.Sprintf("%.0fm", *c.DistanceM)
			}
			cat := c.Category
			if cat == "" {
				cat = "업종 미상"
			}
			fmt.Fprintf(&b, "- %s (%s, %s, 확인 소스 %d개)\n", c.Name, cat, dist, len(c.Sources))
		}
	}

	return b.String()
}
