package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ikjoobang/xivix-best-map/internal/analysis"
	"github.com/ikjoobang/xivix-best-map/internal/model"
	"github.com/ikjoobang/xivix-best-map/internal/report"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the analysis HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg.Server.Port = resolvePort(servePort, cfg.Server.Port)

		env, err := initAnalysis("serve")
		if err != nil {
			return err
		}

		return startServer(ctx, newRouter(env), cfg.Server.Port)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// resolvePort prefers the flag value over the configured one.
func resolvePort(flag, configured int) int {
	if flag != 0 {
		return flag
	}
	return configured
}

func startServer(ctx context.Context, handler http.Handler, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zap.L().Warn("server shutdown", zap.Error(err))
		}
	}()

	zap.L().Info("starting server", zap.Int("port", port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return eris.Wrap(err, "server listen")
	}
	return nil
}

func newRouter(env *analysisEnv) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/analyze", handleAnalyze(env))
		r.Post("/advice", handleAdvice(env))
		r.Get("/address", handleAddress(env))
		r.Get("/categories", handleCategories(env))
	})

	return r
}

// requestLogger writes one zap line per request. Health and metrics probes
// are skipped to keep the log signal clean.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" || r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleAnalyze(env *analysisEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeAnalysisRequest(w, r)
		if !ok {
			return
		}

		rep, err := env.Analyzer.Analyze(r.Context(), req)
		if err != nil {
			writeAnalysisError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rep)
	}
}

func handleAdvice(env *analysisEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if env.Advisor == nil {
			writeError(w, http.StatusServiceUnavailable, "advice generation is disabled")
			return
		}

		req, ok := decodeAnalysisRequest(w, r)
		if !ok {
			return
		}

		rep, err := env.Analyzer.Analyze(r.Context(), req)
		if err != nil {
			writeAnalysisError(w, err)
			return
		}

		advice, err := env.Advisor.Advise(r.Context(), report.Facts(rep))
		if err != nil {
			zap.L().Error("advice generation failed", zap.Error(err))
			writeError(w, http.StatusBadGateway, "advice generation failed")
			return
		}

		writeJSON(w, http.StatusOK, struct {
			Advice string                `json:"advice"`
			Report *model.AnalysisReport `json:"report"`
		}{Advice: advice, Report: rep})
	}
}

func handleAddress(env *analysisEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lon, lonErr := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
		lat, latErr := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
		if lonErr != nil || latErr != nil {
			writeError(w, http.StatusBadRequest, "lon and lat query parameters are required")
			return
		}

		resp, err := env.Kakao.ReverseGeocode(r.Context(), lon, lat)
		if err != nil {
			zap.L().Warn("reverse geocode failed", zap.Error(err))
			writeError(w, http.StatusBadGateway, "reverse geocode failed")
			return
		}

		writeJSON(w, http.StatusOK, struct {
			Lon     float64 `json:"lon"`
			Lat     float64 `json:"lat"`
			Address string  `json:"address"`
		}{Lon: lon, Lat: lat, Address: resp.PrimaryAddress()})
	}
}

func handleCategories(env *analysisEnv) http.HandlerFunc {
	type categoryEntry struct {
		Key     string   `json:"key"`
		Display string   `json:"display"`
		Aliases []string `json:"aliases,omitempty"`
	}

	return func(w http.ResponseWriter, _ *http.Request) {
		all := env.Registry.All()
		out := make([]categoryEntry, 0, len(all))
		for _, c := range all {
			out = append(out, categoryEntry{
				Key:     string(c.Key),
				Display: c.Display,
				Aliases: c.Aliases,
			})
		}
		writeJSON(w, http.StatusOK, struct {
			Categories []categoryEntry `json:"categories"`
		}{Categories: out})
	}
}

func decodeAnalysisRequest(w http.ResponseWriter, r *http.Request) (analysis.Request, bool) {
	var req analysis.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return analysis.Request{}, false
	}
	return req, true
}

// writeAnalysisError maps a rejected request to 400 and anything else to
// 500 without leaking internals.
func writeAnalysisError(w http.ResponseWriter, err error) {
	var reqErr *analysis.RequestError
	if errors.As(err, &reqErr) {
		writeError(w, http.StatusBadRequest, reqErr.Error())
		return
	}
	zap.L().Error("analysis failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "analysis failed")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("write response failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
