// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/eventlens/eventlens/internal/logging"
	"github.com/eventlens/eventlens/internal/metrics"
	"github.com/eventlens/eventlens/internal/models"
	"github.com/eventlens/eventlens/internal/recommend"
	"github.com/eventlens/eventlens/internal/validation"
)

type trainRequest struct {
	Interactions []recommend.InteractionRecord `json:"interactions"`
	NFactors     int                           `json:"n_factors" validate:"omitempty,min=1,max=500"`
}

func (s *Server) handleTrain(w http.ResponseWriter, r *http.Request) {
	var req trainRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	nFactors := req.NFactors
	if nFactors == 0 {
		nFactors = s.rec.NFactors
	}
	records := req.Interactions
	if len(records) == 0 {
		records = s.engine.Interactions()
	}

	start := time.Now()
	result := s.engine.Train(r.Context(), records, nFactors)
	duration := time.Since(start)

	if result.Status == "error" {
		metrics.RecordTrainingRun(duration, 0, 0, 0, 0, errors.New(result.Message))
		logging.Ctx(r.Context()).Error().
			Str("message", result.Message).
			Msg("training failed, previous model still serving")

		code := models.ErrCodeTraining
		status := http.StatusInternalServerError
		if isValidationMessage(result.Message) {
			code = models.ErrCodeValidation
			status = http.StatusBadRequest
		}
		respondError(w, r, status, code, result.Message, nil)
		return
	}

	stats := s.engine.Stats()
	metrics.RecordTrainingRun(duration, result.NUsers, result.NEvents, result.NFactor, stats.ExplainedVariance, nil)
	respondJSON(w, r, http.StatusOK, result)
}

func isValidationMessage(msg string) bool {
	return strings.HasPrefix(msg, "invalid interaction data")
}

func (s *Server) handleUserRecommendations(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	n := queryInt(r, "n", s.rec.DefaultTopN)
	excludeViewed := queryBool(r, "exclude_viewed", s.rec.ExcludeViewed)

	recs := s.engine.Recommend(userID, n, excludeViewed)
	coldStart := len(recs) > 0 && recs[0].Reason == recommend.ReasonPopular
	metrics.RecordRecommendation("user", coldStart)

	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"user_id":         userID,
		"recommendations": recs,
		"count":           len(recs),
	})
}

func (s *Server) handleSimilarEvents(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	n := queryInt(r, "n", s.rec.DefaultTopN)

	recs := s.engine.SimilarEvents(eventID, n)
	metrics.RecordRecommendation("similar", len(recs) == 0)

	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"event_id": eventID,
		"similar":  recs,
		"count":    len(recs),
	})
}

func (s *Server) handleRecordInteraction(w http.ResponseWriter, r *http.Request) {
	var rec recommend.InteractionRecord
	if !decodeJSON(w, r, &rec) {
		return
	}
	if verr := validation.ValidateStruct(&rec); verr != nil {
		apiErr := verr.ToAPIError()
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	ack, err := s.engine.RecordInteraction(rec)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, err.Error(), nil)
		return
	}
	metrics.RecordInteraction(string(rec.Type))
	respondJSON(w, r, http.StatusCreated, ack)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := s.engine.Stats()
	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"model":             stats,
		"interaction_count": s.engine.InteractionCount(),
		"last_trained_at":   lastTrained(s.engine.LastTrainedAt()),
	})
}

func lastTrained(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}

func queryBool(r *http.Request, key string, fallback bool) bool {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}
