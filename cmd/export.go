package main

import (
	"fmt"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/ikjoobang/xivix-best-map/internal/analysis"
	"github.com/ikjoobang/xivix-best-map/internal/model"
)

var (
	exportLon      float64
	exportLat      float64
	exportRadius   int
	exportCategory string
	exportAddress  string
	exportOut      string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Run an analysis and write the result to an XLSX workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initAnalysis("analyze")
		if err != nil {
			return err
		}

		r, err := env.Analyzer.Analyze(cmd.Context(), analysis.Request{
			CenterLon:    exportLon,
			CenterLat:    exportLat,
			RadiusMeters: exportRadius,
			Category:     exportCategory,
			AddressHint:  exportAddress,
		})
		if err != nil {
			return eris.Wrap(err, "analyze")
		}

		if err := writeWorkbook(r, exportOut); err != nil {
			return err
		}

		zap.L().Info("workbook written",
			zap.String("path", exportOut),
			zap.Int("competitors", len(r.Competitors)),
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().Float64Var(&exportLon, "lon", 0, "center longitude, WGS84 (required)")
	exportCmd.Flags().Float64Var(&exportLat, "lat", 0, "center latitude, WGS84 (required)")
	exportCmd.Flags().IntVar(&exportRadius, "radius", 500, "search radius in meters")
	exportCmd.Flags().StringVar(&exportCategory, "category", "", "business category (required)")
	exportCmd.Flags().StringVar(&exportAddress, "address", "", "address hint (reverse-geocoded when empty)")
	exportCmd.Flags().StringVar(&exportOut, "out", "analysis.xlsx", "output workbook path")
	_ = exportCmd.MarkFlagRequired("lon")
	_ = exportCmd.MarkFlagRequired("lat")
	_ = exportCmd.MarkFlagRequired("category")
	rootCmd.AddCommand(exportCmd)
}

// writeWorkbook writes the summary, competitor list, and category mix as
// three sheets.
func writeWorkbook(r *model.AnalysisReport, path string) error {
	f := xlsx.NewFile()

	if err := addSummarySheet(f, r); err != nil {
		return err
	}
	if err := addCompetitorSheet(f, r); err != nil {
		return err
	}
	if err := addBreakdownSheet(f, r); err != nil {
		return err
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "export: save workbook")
	}
	return nil
}

func addSummarySheet(f *xlsx.File, r *model.AnalysisReport) error {
	sheet, err := f.AddSheet("요약")
	if err != nil {
		return eris.Wrap(err, "export: add summary sheet")
	}

	addKV(sheet, "분석 ID", r.Meta.AnalysisID)
	addKV(sheet, "분석 시각", r.Meta.AnalyzedAtISO())
	addKV(sheet, "중심 좌표", fmt.Sprintf("%.6f, %.6f", r.Meta.CenterLon, r.Meta.CenterLat))
	addKV(sheet, "반경(m)", fmt.Sprintf("%d", r.Meta.RadiusMeters))
	addKV(sheet, "업종", r.Meta.Category)
	addKV(sheet, "기준 주소", r.Meta.AddressHint)
	addKV(sheet, "추정 경쟁 업체 수", fmt.Sprintf("%d", r.Summary.EstimatedCompetitorCount))
	addKV(sheet, "면적(km²)", fmt.Sprintf("%.3f", r.Summary.AreaKm2))
	addKV(sheet, "밀도(개/km²)", fmt.Sprintf("%.1f", r.Summary.DensityPerKm2))
	addKV(sheet, "위험 등급", string(r.Summary.RiskTier))
	addKV(sheet, "평가", r.Summary.RiskDescription)
	addKV(sheet, "교차 확인 업체 수", fmt.Sprintf("%d", r.Summary.CrossVerifiedCount))
	addKV(sheet, "신뢰도", string(r.Summary.Reliability))

	// Per-source status block, stable order.
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
		total := "-"
		if st.ReportedTotal != nil {
			total = fmt.Sprintf("%d", *st.ReportedTotal)
		}
		addKV(sheet, "소스 "+id, fmt.Sprintf("%s / 총계 %s / 수집 %d건", status, total, st.ReturnedCount))
	}

	return nil
}

func addCompetitorSheet(f *xlsx.File, r *model.AnalysisReport) error {
	sheet, err := f.AddSheet("경쟁업체")
	if err != nil {
		return eris.Wrap(err, "export: add competitor sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{"상호명", "업종", "주소", "전화", "거리(m)", "확인 소스", "교차확인"} {
		header.AddCell().SetString(h)
	}

	for _, c := range r.Competitors {
		row := sheet.AddRow()
		row.AddCell().SetString(c.Name)
		row.AddCell().SetString(c.Category)
		row.AddCell().SetString(c.Address)
		row.AddCell().SetString(c.Phone)
		if c.DistanceM != nil {
			row.AddCell().SetFloat(*c.DistanceM)
		} else {
			row.AddCell().SetString("")
		}
		row.AddCell().SetString(joinSources(c.Sources))
		if c.CrossVerified() {
			row.AddCell().SetString("Y")
		} else {
			row.AddCell().SetString("N")
		}
	}

	return nil
}

func addBreakdownSheet(f *xlsx.File, r *model.AnalysisReport) error {
	sheet, err := f.AddSheet("업종구성")
	if err != nil {
		return eris.Wrap(err, "export: add breakdown sheet")
	}

	header := sheet.AddRow()
	header.AddCell().SetString("업종")
	header.AddCell().SetString("업체 수")

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
		row := sheet.AddRow()
		row.AddCell().SetString(e.name)
		row.AddCell().SetInt(e.count)
	}

	return nil
}

func addKV(sheet *xlsx.Sheet, key, value string) {
	row := sheet.AddRow()
	row.AddCell().SetString(key)
	row.AddCell().SetString(value)
}

func joinSources(sources []model.SourceID) string {
	out := ""
	for i, s := range sources {
		if i > 0 {
			out += ", "
		}
		out += string(s)
	}
	return out
}
