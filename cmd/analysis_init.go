package main

import (
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ikjoobang/xivix-best-map/internal/analysis"
	"github.com/ikjoobang/xivix-best-map/internal/category"
	"github.com/ikjoobang/xivix-best-map/internal/estimate"
	"github.com/ikjoobang/xivix-best-map/internal/model"
	"github.com/ikjoobang/xivix-best-map/internal/provider"
	"github.com/ikjoobang/xivix-best-map/internal/resilience"
	"github.com/ikjoobang/xivix-best-map/pkg/advisor"
	"github.com/ikjoobang/xivix-best-map/pkg/kakao"
	"github.com/ikjoobang/xivix-best-map/pkg/naver"
	"github.com/ikjoobang/xivix-best-map/pkg/semas"
)

// analysisEnv holds the initialized clients, registry, and analyzer shared
// by the analyze/serve/export commands.
type analysisEnv struct {
	Analyzer *analysis.Analyzer
	Registry *category.Registry
	Kakao    kakao.Client
	Advisor  advisor.Client // nil when no advisor key is configured
}

// initAnalysis validates config for the given mode and wires the provider
// clients, category registry, estimator, and analyzer.
func initAnalysis(mode string) (*analysisEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	reg := category.NewRegistry()
	if cfg.Analysis.CategoryFile != "" {
		if err := reg.LoadFile(cfg.Analysis.CategoryFile); err != nil {
			return nil, eris.Wrap(err, "load category file")
		}
		zap.L().Info("category table extended", zap.String("file", cfg.Analysis.CategoryFile))
	}

	kakaoClient := kakao.NewClient(cfg.Kakao.RESTKey, kakao.WithBaseURL(cfg.Kakao.BaseURL))
	naverClient := naver.NewClient(cfg.Naver.ClientID, cfg.Naver.ClientSecret, naver.WithBaseURL(cfg.Naver.BaseURL))
	semasClient := semas.NewClient(cfg.Semas.ServiceKey, semas.WithBaseURL(cfg.Semas.BaseURL))

	retry := resilience.FromAttempts(cfg.Analysis.RetryAttempts)
	adapters := []provider.Adapter{
		provider.NewSemasStore(semasClient, retry),
		provider.NewKakaoKeyword(kakaoClient, retry),
		provider.NewKakaoCategory(kakaoClient, retry),
		provider.NewNaverLocal(naverClient, retry),
	}

	weights := make(map[model.SourceID]float64, len(cfg.Analysis.SourceWeights))
	for src, w := range cfg.Analysis.SourceWeights {
		weights[model.SourceID(src)] = w
	}
	est, err := estimate.NewEstimator(weights)
	if err != nil {
		return nil, err
	}

	analyzer := analysis.New(adapters, reg, est, kakaoClient,
		analysis.WithAdapterTimeout(time.Duration(cfg.Analysis.AdapterTimeoutSecs)*time.Second),
		analysis.WithMaxRadius(cfg.Analysis.MaxRadiusMeters),
		analysis.WithSampleCap(cfg.Analysis.SampleCap),
	)

	var adv advisor.Client
	if cfg.Advisor.Key != "" {
		adv = advisor.NewClient(cfg.Advisor.Key,
			advisor.WithModel(cfg.Advisor.Model),
			advisor.WithMaxTokens(int64(cfg.Advisor.MaxTokens)),
		)
		zap.L().Info("advisor enabled", zap.String("model", cfg.Advisor.Model))
	} else {
		zap.L().Debug("BESTMAP_ADVISOR_KEY not set, advice generation disabled")
	}

	return &analysisEnv{
		Analyzer: analyzer,
		Registry: reg,
		Kakao:    kakaoClient,
		Advisor:  adv,
	}, nil
}
