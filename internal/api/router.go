// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/eventlens/eventlens/internal/config"
	"github.com/eventlens/eventlens/internal/evaluation"
	"github.com/eventlens/eventlens/internal/models"
	"github.com/eventlens/eventlens/internal/recommend"
)

// Server wires the recommendation engine and research toolkits to the
// HTTP surface.
type Server struct {
	engine    *recommend.Engine
	evaluator *evaluation.Evaluator
	cfg       config.ServerConfig
	rec       config.RecommendConfig
	logger    zerolog.Logger
	mw        *Middleware
}

// NewServer builds the HTTP server from config and an engine. The
// evaluator keeps an in-memory history of comprehensive reports.
func NewServer(cfg *config.Config, engine *recommend.Engine, logger zerolog.Logger) *Server {
	return &Server{
		engine:    engine,
		evaluator: evaluation.NewEvaluator(),
		cfg:       cfg.Server,
		rec:       cfg.Recommend,
		logger:    logger.With().Str("component", "api").Logger(),
		mw:        NewMiddleware(cfg.Server, logger),
	}
}

// Routes builds the full route tree.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(s.mw.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.mw.CORS())
	r.Use(s.mw.RateLimit())
	r.Use(s.mw.Metrics)

	// Subrouters inherit these only when set before the routes are defined.
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, models.ErrCodeNotFound,
			"route not found: "+r.URL.Path, nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, models.ErrCodeValidation,
			"method not allowed", nil)
	})

	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/recommendations", func(r chi.Router) {
			r.Post("/train", s.handleTrain)
			r.Get("/user/{userID}", s.handleUserRecommendations)
			r.Get("/similar/{eventID}", s.handleSimilarEvents)
			r.Post("/interactions", s.handleRecordInteraction)
			r.Get("/stats", s.handleStats)
		})

		r.Route("/research", func(r chi.Router) {
			r.Route("/evaluation", func(r chi.Router) {
				r.Post("/ranking-metrics", s.handleRankingMetrics)
				r.Post("/diversity", s.handleDiversity)
				r.Post("/novelty", s.handleNovelty)
				r.Post("/popularity-bias", s.handlePopularityBias)
				r.Post("/demographic-parity", s.handleDemographicParity)
				r.Post("/provider-parity", s.handleProviderParity)
				r.Post("/business-kpis", s.handleBusinessKPIs)
				r.Post("/comprehensive", s.handleComprehensive)
				r.Get("/history", s.handleEvaluationHistory)
			})

			r.Route("/features", func(r chi.Router) {
				r.Post("/extract", s.handleFeatureExtract)
				r.Post("/ablation-study", s.handleAblationStudy)
			})

			r.Route("/models", func(r chi.Router) {
				r.Post("/benchmark", s.handleBenchmark)
				r.Post("/hyperparameter-search", s.handleHyperparameterSearch)
				r.Post("/ensemble", s.handleEnsemble)
				r.Post("/significance-test", s.handleSignificanceTest)
				r.Post("/compare-cf-hybrid-graph", s.handleCompareCFHybridGraph)
			})

			r.Route("/behavior", func(r chi.Router) {
				r.Post("/clicks", s.handleClickAnalysis)
				r.Post("/bookings", s.handleBookingAnalysis)
				r.Post("/intent-clusters", s.handleIntentClusters)
				r.Post("/cold-start", s.handleColdStart)
			})
		})
	})

	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"model":  s.engine.Stats().Status,
	})
}
