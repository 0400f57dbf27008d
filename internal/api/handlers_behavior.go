// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

package api

import (
	"net/http"

	"github.com/eventlens/eventlens/internal/behavior"
	"github.com/eventlens/eventlens/internal/models"
	"github.com/eventlens/eventlens/internal/validation"
)

type clickAnalysisRequest struct {
	Records []behavior.ClickRecord `json:"records" validate:"required,min=1"`
}

func (s *Server) handleClickAnalysis(w http.ResponseWriter, r *http.Request) {
	var req clickAnalysisRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}
	respondJSON(w, r, http.StatusOK, behavior.SummarizeClicks(req.Records))
}

type bookingAnalysisRequest struct {
	Records   []behavior.BookingRecord `json:"records" validate:"required,min=1"`
	TopEvents int                      `json:"top_events" validate:"omitempty,min=1"`
}

func (s *Server) handleBookingAnalysis(w http.ResponseWriter, r *http.Request) {
	var req bookingAnalysisRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	topEvents := req.TopEvents
	if topEvents == 0 {
		topEvents = 10
	}
	respondJSON(w, r, http.StatusOK, behavior.SummarizeBookings(req.Records, topEvents))
}

type intentClustersRequest struct {
	Features map[string][]float64 `json:"features" validate:"required"`
	K        int                  `json:"k" validate:"required,min=1"`
	Seed     int64                `json:"seed"`
}

func (s *Server) handleIntentClusters(w http.ResponseWriter, r *http.Request) {
	var req intentClustersRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	result, err := behavior.ClusterUserIntents(req.Features, req.K, req.Seed)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, err.Error(), nil)
		return
	}
	respondJSON(w, r, http.StatusOK, result)
}

type coldStartRequest struct {
	Strategy    string                   `json:"strategy" validate:"required,oneof=popularity content"`
	N           int                      `json:"n" validate:"omitempty,min=1"`
	Events      []behavior.EventStats    `json:"events"`
	Preferences behavior.UserPreferences `json:"preferences"`
	Catalog     []behavior.EventProfile  `json:"catalog"`
	Actual      []string                 `json:"actual"`
}

func (s *Server) handleColdStart(w http.ResponseWriter, r *http.Request) {
	var req coldStartRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	n := req.N
	if n == 0 {
		n = s.rec.DefaultTopN
	}

	var recommended []behavior.ScoredEvent
	switch req.Strategy {
	case "popularity":
		if len(req.Events) == 0 {
			respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation,
				"popularity strategy requires events", nil)
			return
		}
		recommended = behavior.PopularityPrior(req.Events, n)
	case "content":
		if len(req.Catalog) == 0 {
			respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation,
				"content strategy requires a catalog", nil)
			return
		}
		recommended = behavior.ContentSimilarity(req.Preferences, req.Catalog, n)
	}

	data := map[string]interface{}{
		"strategy":    req.Strategy,
		"recommended": recommended,
	}
	if len(req.Actual) > 0 {
		data["evaluation"] = behavior.EvaluateColdStartStrategy(recommended, req.Actual)
	}
	respondJSON(w, r, http.StatusOK, data)
}
