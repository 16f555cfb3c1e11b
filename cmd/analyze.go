package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ikjoobang/xivix-best-map/internal/analysis"
	"github.com/ikjoobang/xivix-best-map/internal/model"
	"github.com/ikjoobang/xivix-best-map/internal/report"
)

var (
	analyzeLon      float64
	analyzeLat      float64
	analyzeRadius   int
	analyzeCategory string
	analyzeAddress  string
	analyzeAdvice   bool
	analyzeFacts    bool
)

// analyzeOutput is the analyze command's stdout JSON: the report with the
// advisory text inlined when requested.
type analyzeOutput struct {
	*model.AnalysisReport
	Advice string `json:"advice,omitempty"`
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze business viability around a point",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initAnalysis("analyze")
		if err != nil {
			return err
		}

		r, err := env.Analyzer.Analyze(ctx, analysis.Request{
			CenterLon:    analyzeLon,
			CenterLat:    analyzeLat,
			RadiusMeters: analyzeRadius,
			Category:     analyzeCategory,
			AddressHint:  analyzeAddress,
		})
		if err != nil {
			return eris.Wrap(err, "analyze")
		}

		out := analyzeOutput{AnalysisReport: r}
		if analyzeAdvice {
			if env.Advisor == nil {
				return eris.New("advisor.key is not configured, cannot generate advice")
			}
			advice, adviceErr := env.Advisor.Advise(ctx, report.Facts(r))
			if adviceErr != nil {
				// The analysis itself succeeded; report it without advice.
				zap.L().Warn("advice generation failed", zap.Error(adviceErr))
			}
			out.Advice = advice
		}

		if analyzeFacts {
			fmt.Fprintln(os.Stdout, report.Facts(r))
			if out.Advice != "" {
				fmt.Fprintf(os.Stdout, "## 조언\n%s\n", out.Advice)
			}
			return nil
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	analyzeCmd.Flags().Float64Var(&analyzeLon, "lon", 0, "center longitude, WGS84 (required)")
	analyzeCmd.Flags().Float64Var(&analyzeLat, "lat", 0, "center latitude, WGS84 (required)")
	analyzeCmd.Flags().IntVar(&analyzeRadius, "radius", 500, "search radius in meters")
	analyzeCmd.Flags().StringVar(&analyzeCategory, "category", "", "business category, e.g. cafe or 카페 (required)")
	analyzeCmd.Flags().StringVar(&analyzeAddress, "address", "", "address hint (reverse-geocoded when empty)")
	analyzeCmd.Flags().BoolVar(&analyzeAdvice, "advice", false, "generate advisory text for the result")
	analyzeCmd.Flags().BoolVar(&analyzeFacts, "facts", false, "print the plain-text fact sheet instead of JSON")
	_ = analyzeCmd.MarkFlagRequired("lon")
	_ = analyzeCmd.MarkFlagRequired("lat")
	_ = analyzeCmd.MarkFlagRequired("category")
	rootCmd.AddCommand(analyzeCmd)
}
