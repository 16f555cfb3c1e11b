package model

import "time"

// RiskTier is a coarse ordinal classification of competitive density.
type RiskTier string

const (
	RiskBlueOcean RiskTier = "blue_ocean"
	RiskLow       RiskTier = "low"
	RiskMedium    RiskTier = "medium"
	RiskHigh      RiskTier = "high"
	RiskVeryHigh  RiskTier = "very_high"
)

// Reliability grades how much cross-source confirmation backs a summary.
// ReliabilityUnavailable is the sentinel for "zero sources succeeded":
// consumers must not read its zero competitor count as a confirmed zero.
type Reliability string

const (
	ReliabilityLow         Reliability = "low"
	ReliabilityMedium      Reliability = "medium"
	ReliabilityHigh        Reliability = "high"
	ReliabilityUnavailable Reliability = "unavailable"
)

// AnalysisSummary holds the derived statistics for one analysis.
type AnalysisSummary struct {
	EstimatedCompetitorCount int         `json:"estimatedCompetitorCount"`
	AreaKm2                  float64     `json:"areaKm2"`
	DensityPerKm2            float64     `json:"densityPerKm2"`
	RiskTier                 RiskTier    `json:"riskTier"`
	RiskDescription          string      `json:"riskDescription"`
	CrossVerifiedCount       int         `json:"crossVerifiedCount"`
	Reliability              Reliability `json:"reliability"`
}

// SourceStatus is the per-provider provenance entry in a report: name,
// success flag, and counts only. Error details stay in the logs.
type SourceStatus struct {
	OK            bool `json:"ok"`
	ReportedTotal *int `json:"reportedTotal"`
	ReturnedCount int  `json:"returnedCount"`
}

// ReportMeta echoes the analysis input.
type ReportMeta struct {
	AnalysisID   string    `json:"analysisId"`
	CenterLon    float64   `json:"centerLon"`
	CenterLat    float64   `json:"centerLat"`
	RadiusMeters int       `json:"radiusMeters"`
	Category     string    `json:"category"`
	CategoryKey  string    `json:"categoryKey"`
	AddressHint  string    `json:"addressHint,omitempty"`
	AnalyzedAt   time.Time `json:"analyzedAt"`
}

// AnalysisReport is the single response object for one analysis, consumed
// both by API clients and as the fact base for advisory text generation.
type AnalysisReport struct {
	Meta              ReportMeta               `json:"meta"`
	PerSource         map[SourceID]SourceStatus `json:"perSource"`
	Summary           AnalysisSummary          `json:"summary"`
	Competitors       []Business               `json:"competitors"`
	CategoryBreakdown map[string]int           `json:"categoryBreakdown"`
}

// Degraded reports whether the analysis ran with zero successful sources.
func (r *AnalysisReport) Degraded() bool {
	return r.Summary.Reliability == ReliabilityUnavailable
}

// AnalyzedAtISO returns the analysis timestamp in RFC3339 UTC form.
func (m ReportMeta) AnalyzedAtISO() string {
	return m.AnalyzedAt.UTC().Format(time.RFC3339)
}
