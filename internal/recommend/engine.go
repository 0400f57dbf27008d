// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/eventlens/eventlens/internal/recommend/storage"
)

// Note: this package has no dependencies on other internal packages apart
// from its own storage adapter, to keep the engine embeddable and testable
// in isolation. Metrics and transport concerns live in the API layer.

// Engine is the serving component of the recommendation pipeline. It owns
// the current trained model behind an atomically swappable pointer, the
// in-memory interaction log, and the persistence adapter.
//
// Reads (Recommend, SimilarEvents, Stats, Evaluate) never block on
// training and never observe a partially trained model. Training is
// serialized internally; a failed retrain leaves the previous model and
// its artifact untouched.
type Engine struct {
	logger zerolog.Logger
	store  *storage.Store // nil disables persistence

	model atomic.Pointer[Model]

	trainMu       sync.Mutex
	lastTrainedAt time.Time

	logMu        sync.RWMutex
	interactions []InteractionRecord

	// now anchors recency decay; overridable in tests.
	now func() time.Time
}

// NewEngine creates an engine with an untrained model. The store may be
// nil when persistence is disabled.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(logger zerolog.Logger, store *storage.Store) *Engine {
	e := &Engine{
		logger: logger.With().Str("component", "recommend").Logger(),
		store:  store,
		now:    time.Now,
	}
	e.model.Store(NewModel())
	return e
}

// LoadArtifact restores the model from the persisted artifact, if one
// exists. A missing artifact is not an error; the engine simply starts
// untrained.
func (e *Engine) LoadArtifact(ctx context.Context) error {
	if e.store == nil {
		return nil
	}

	state, meta, err := e.store.Load(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNoArtifact) {
			e.logger.Info().Str("path", e.store.Path()).Msg("no model artifact, starting untrained")
			return nil
		}
		return fmt.Errorf("load model artifact: %w", err)
	}

	model, err := RestoreModel(state)
	if err != nil {
		return fmt.Errorf("restore model: %w", err)
	}

	e.model.Store(model)
	e.trainMu.Lock()
	e.lastTrainedAt = meta.TrainedAt
	e.trainMu.Unlock()

	e.logger.Info().
		Int("n_users", model.NumUsers()).
		Int("n_events", model.NumEvents()).
		Int("n_factors", model.NumFactors()).
		Time("trained_at", meta.TrainedAt).
		Msg("restored model from artifact")
	return nil
}

// RecordInteraction validates and appends an interaction to the in-memory
// log, filling in the implicit rating for records that carry none. The
// acknowledgement echoes the record with its computed rating.
func (e *Engine) RecordInteraction(rec InteractionRecord) (Acknowledgement, error) {
	if rec.UserID == "" {
		return Acknowledgement{}, newValidationError("missing required field user_id")
	}
	if rec.EventID == "" {
		return Acknowledgement{}, newValidationError("missing required field event_id")
	}

	if rec.Rating == nil {
		implicit := rec.Type.ImplicitRating(rec.RatingValue)
		rec.Rating = &implicit
	}
	if rec.Timestamp == nil {
		ts := e.now()
		rec.Timestamp = &ts
	}

	e.logMu.Lock()
	e.interactions = append(e.interactions, rec)
	total := len(e.interactions)
	e.logMu.Unlock()

	e.logger.Debug().
		Str("user_id", rec.UserID).
		Str("event_id", rec.EventID).
		Str("type", string(rec.Type)).
		Float64("rating", *rec.Rating).
		Int("log_size", total).
		Msg("recorded interaction")

	return Acknowledgement{
		Status:      "success",
		Message:     "Interaction recorded",
		Interaction: rec,
	}, nil
}

// InteractionCount returns the size of the in-memory interaction log.
func (e *Engine) InteractionCount() int {
	e.logMu.RLock()
	defer e.logMu.RUnlock()
	return len(e.interactions)
}

// Interactions returns a copy of the in-memory interaction log.
func (e *Engine) Interactions() []InteractionRecord {
	e.logMu.RLock()
	defer e.logMu.RUnlock()
	return append([]InteractionRecord(nil), e.interactions...)
}

// Train runs the full pipeline: weight interactions, build the matrix,
// factor it, persist the artifact, then atomically swap the serving
// model. When records is nil the in-memory interaction log is used.
//
// Any failure is reported in the result with status "error" and leaves
// the serving model, the interaction log and the artifact untouched.
func (e *Engine) Train(ctx context.Context, records []InteractionRecord, nFactors int) TrainResult {
	e.trainMu.Lock()
	defer e.trainMu.Unlock()

	if records == nil {
		records = e.Interactions()
	}

	start := e.now()
	ratings, err := WeightInteractions(records, start)
	if err != nil {
		return e.trainError(err, "weight interactions")
	}

	model := NewModel()
	if err := model.BuildMatrix(ratings); err != nil {
		return e.trainError(err, "build matrix")
	}
	if err := model.Train(nFactors); err != nil {
		return e.trainError(err, "train model")
	}

	if e.store != nil {
		state, err := model.Snapshot()
		if err != nil {
			return e.trainError(err, "snapshot model")
		}
		meta := storage.ModelMetadata{
			TrainedAt:        start,
			InteractionCount: len(records),
			UserCount:        model.NumUsers(),
			EventCount:       model.NumEvents(),
		}
		if err := e.store.Save(ctx, state, meta); err != nil {
			return e.trainError(err, "persist model")
		}
	}

	e.model.Store(model)
	e.lastTrainedAt = start

	e.logger.Info().
		Int("n_users", model.NumUsers()).
		Int("n_events", model.NumEvents()).
		Int("n_factors", model.NumFactors()).
		Float64("explained_variance", model.ExplainedVariance()).
		Dur("duration", e.now().Sub(start)).
		Msg("model trained")

	return TrainResult{
		Status:  "success",
		NUsers:  model.NumUsers(),
		NEvents: model.NumEvents(),
		NFactor: model.NumFactors(),
	}
}

func (e *Engine) trainError(err error, stage string) TrainResult {
	e.logger.Error().Err(err).Str("stage", stage).Msg("training failed, previous model retained")
	return TrainResult{
		Status:  "error",
		Message: err.Error(),
	}
}

// Recommend returns ranked recommendations from the current model.
func (e *Engine) Recommend(userID string, n int, excludeViewed bool) []Recommendation {
	return e.model.Load().Recommend(userID, n, excludeViewed)
}

// SimilarEvents returns the most similar events from the current model.
func (e *Engine) SimilarEvents(eventID string, n int) []Recommendation {
	return e.model.Load().SimilarEvents(eventID, n)
}

// Evaluate runs the offline proxy evaluation against the current model.
func (e *Engine) Evaluate(heldOut []Rating, k int) EvaluationResult {
	return e.model.Load().Evaluate(heldOut, k)
}

// Stats describes the currently served model.
func (e *Engine) Stats() ModelStats {
	m := e.model.Load()
	if !m.IsTrained() {
		return ModelStats{
			Status:  "not_trained",
			Message: "Model has not been trained yet",
		}
	}
	return ModelStats{
		Status:            "trained",
		NUsers:            m.NumUsers(),
		NEvents:           m.NumEvents(),
		NFactors:          m.NumFactors(),
		ExplainedVariance: m.ExplainedVariance(),
	}
}

// LastTrainedAt returns when the serving model was trained, zero when
// untrained.
func (e *Engine) LastTrainedAt() time.Time {
	e.trainMu.Lock()
	defer e.trainMu.Unlock()
	return e.lastTrainedAt
}
