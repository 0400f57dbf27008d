// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

package api

import (
	"net/http"

	"github.com/eventlens/eventlens/internal/evaluation"
	"github.com/eventlens/eventlens/internal/models"
	"github.com/eventlens/eventlens/internal/validation"
)

var rankingMetricsByName = map[string]evaluation.RankingMetric{
	"ndcg":      evaluation.NDCGAtK,
	"map":       evaluation.MAPAtK,
	"recall":    evaluation.RecallAtK,
	"precision": evaluation.PrecisionAtK,
}

type rankingMetricsRequest struct {
	Recommended []string `json:"recommended" validate:"required,min=1"`
	Relevant    []string `json:"relevant" validate:"required,min=1"`
	Cutoffs     []int    `json:"cutoffs" validate:"omitempty,dive,min=1"`
}

func (s *Server) handleRankingMetrics(w http.ResponseWriter, r *http.Request) {
	var req rankingMetricsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	cutoffs := req.Cutoffs
	if len(cutoffs) == 0 {
		cutoffs = []int{5, 10, 20}
	}

	results := make(map[int]map[string]float64, len(cutoffs))
	for _, k := range cutoffs {
		results[k] = map[string]float64{
			"ndcg":      evaluation.NDCGAtK(req.Recommended, req.Relevant, k),
			"map":       evaluation.MAPAtK(req.Recommended, req.Relevant, k),
			"recall":    evaluation.RecallAtK(req.Recommended, req.Relevant, k),
			"precision": evaluation.PrecisionAtK(req.Recommended, req.Relevant, k),
		}
	}
	respondJSON(w, r, http.StatusOK, map[string]interface{}{"metrics": results})
}

type diversityRequest struct {
	Recommended  []string            `json:"recommended" validate:"required,min=1"`
	ItemFeatures map[string][]string `json:"item_features" validate:"required"`
}

func (s *Server) handleDiversity(w http.ResponseWriter, r *http.Request) {
	var req diversityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}
	score := evaluation.DiversityScore(req.Recommended, req.ItemFeatures)
	respondJSON(w, r, http.StatusOK, map[string]interface{}{"diversity": score})
}

type noveltyRequest struct {
	Recommended       []string       `json:"recommended" validate:"required,min=1"`
	Popularity        map[string]int `json:"popularity" validate:"required"`
	TotalInteractions int            `json:"total_interactions" validate:"required,min=1"`
}

func (s *Server) handleNovelty(w http.ResponseWriter, r *http.Request) {
	var req noveltyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}
	score := evaluation.NoveltyScore(req.Recommended, req.Popularity, req.TotalInteractions)
	respondJSON(w, r, http.StatusOK, map[string]interface{}{"novelty": score})
}

type popularityBiasRequest struct {
	Recommended []string       `json:"recommended" validate:"required,min=1"`
	Popularity  map[string]int `json:"popularity" validate:"required"`
}

func (s *Server) handlePopularityBias(w http.ResponseWriter, r *http.Request) {
	var req popularityBiasRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}
	bias := evaluation.PopularityBias(req.Recommended, req.Popularity)
	respondJSON(w, r, http.StatusOK, map[string]interface{}{"popularity_bias": bias})
}

type demographicParityRequest struct {
	Recommendations map[string][]string `json:"recommendations" validate:"required"`
	Relevant        map[string][]string `json:"relevant" validate:"required"`
	UserGroups      map[string]string   `json:"user_groups" validate:"required"`
	K               int                 `json:"k" validate:"omitempty,min=1"`
	Metric          string              `json:"metric" validate:"omitempty,oneof=ndcg map recall precision"`
}

func (s *Server) handleDemographicParity(w http.ResponseWriter, r *http.Request) {
	var req demographicParityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	k := req.K
	if k == 0 {
		k = 10
	}
	metricName := req.Metric
	if metricName == "" {
		metricName = "ndcg"
	}
	result := evaluation.DemographicParity(req.Recommendations, req.Relevant, req.UserGroups, k, rankingMetricsByName[metricName])
	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"metric": metricName,
		"k":      k,
		"parity": result,
	})
}

type providerParityRequest struct {
	Recommended   []string          `json:"recommended" validate:"required,min=1"`
	ItemProvider  map[string]string `json:"item_provider" validate:"required"`
	CatalogCounts map[string]int    `json:"catalog_counts" validate:"required"`
}

func (s *Server) handleProviderParity(w http.ResponseWriter, r *http.Request) {
	var req providerParityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}
	result := evaluation.ProviderParity(req.Recommended, req.ItemProvider, req.CatalogCounts)
	respondJSON(w, r, http.StatusOK, result)
}

type businessKPIRequest struct {
	Recommended  []string          `json:"recommended" validate:"required,min=1"`
	Interactions map[string]string `json:"interactions" validate:"required"`
	Conversions  []string          `json:"conversions"`
}

func (s *Server) handleBusinessKPIs(w http.ResponseWriter, r *http.Request) {
	var req businessKPIRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}
	result := evaluation.BusinessKPIs(req.Recommended, req.Interactions, req.Conversions)
	respondJSON(w, r, http.StatusOK, result)
}

type comprehensiveRequest struct {
	Recommendations   map[string][]string `json:"recommendations" validate:"required"`
	Relevant          map[string][]string `json:"relevant" validate:"required"`
	Cutoffs           []int               `json:"cutoffs" validate:"omitempty,dive,min=1"`
	ItemFeatures      map[string][]string `json:"item_features"`
	Popularity        map[string]int      `json:"popularity"`
	TotalInteractions int                 `json:"total_interactions"`
}

func (s *Server) handleComprehensive(w http.ResponseWriter, r *http.Request) {
	var req comprehensiveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}
	if len(req.Recommendations) == 0 {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation,
			"recommendations must not be empty", nil)
		return
	}

	report := s.evaluator.Comprehensive(evaluation.ComprehensiveInput{
		Recommendations:   req.Recommendations,
		Relevant:          req.Relevant,
		Cutoffs:           req.Cutoffs,
		ItemFeatures:      req.ItemFeatures,
		Popularity:        req.Popularity,
		TotalInteractions: req.TotalInteractions,
	})
	respondJSON(w, r, http.StatusOK, report)
}

func (s *Server) handleEvaluationHistory(w http.ResponseWriter, r *http.Request) {
	history := s.evaluator.History()
	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"reports": history,
		"count":   len(history),
	})
}
