// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/eventlens/eventlens/internal/metrics"
	"github.com/eventlens/eventlens/internal/recommend"
)

// TrainingEngine is the slice of the recommendation engine the training
// loop needs. Satisfied by *recommend.Engine.
type TrainingEngine interface {
	Train(ctx context.Context, records []recommend.InteractionRecord, nFactors int) recommend.TrainResult
	InteractionCount() int
	Stats() recommend.ModelStats
}

// TrainingConfig tunes the periodic retraining loop.
type TrainingConfig struct {
	// TrainOnStartup triggers one training cycle when the service starts.
	TrainOnStartup bool

	// TrainInterval is how often to retrain. Defaults to 24h.
	TrainInterval time.Duration

	// MinInteractions is the minimum recorded interactions before a
	// scheduled cycle runs; below it the cycle is skipped.
	MinInteractions int

	// NFactors is the latent dimension used for scheduled training.
	NFactors int
}

// TrainingService retrains the model on a fixed interval. Failed cycles
// are logged and retried on the next tick; the serving model is never
// replaced by a failed run.
type TrainingService struct {
	engine TrainingEngine
	config TrainingConfig
	logger zerolog.Logger
}

// NewTrainingService creates the periodic training service.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewTrainingService(engine TrainingEngine, cfg TrainingConfig, logger zerolog.Logger) *TrainingService {
	if cfg.TrainInterval <= 0 {
		cfg.TrainInterval = 24 * time.Hour
	}
	if cfg.NFactors <= 0 {
		cfg.NFactors = 10
	}
	return &TrainingService{
		engine: engine,
		config: cfg,
		logger: logger.With().Str("service", "training").Logger(),
	}
}

// Serve implements suture.Service.
func (s *TrainingService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("train_on_startup", s.config.TrainOnStartup).
		Dur("train_interval", s.config.TrainInterval).
		Int("min_interactions", s.config.MinInteractions).
		Msg("training service starting")

	if s.config.TrainOnStartup {
		s.runCycle(ctx)
	}

	ticker := time.NewTicker(s.config.TrainInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("training service shutting down")
			return ctx.Err()

		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

// runCycle performs one training cycle over the engine's recorded
// interaction log.
func (s *TrainingService) runCycle(ctx context.Context) {
	count := s.engine.InteractionCount()
	if count < s.config.MinInteractions {
		metrics.RecordTrainingSkipped()
		s.logger.Debug().
			Int("interactions", count).
			Int("min_interactions", s.config.MinInteractions).
			Msg("skipping training, not enough interactions")
		return
	}

	trainCtx, cancel := context.WithTimeout(ctx, 30*time.Minute)
	defer cancel()

	start := time.Now()
	result := s.engine.Train(trainCtx, nil, s.config.NFactors)
	duration := time.Since(start)

	if result.Status != "success" {
		metrics.RecordTrainingRun(duration, 0, 0, 0, 0, errors.New(result.Message))
		s.logger.Warn().
			Str("message", result.Message).
			Msg("scheduled training failed, previous model retained")
		return
	}

	stats := s.engine.Stats()
	metrics.RecordTrainingRun(duration, result.NUsers, result.NEvents, result.NFactor, stats.ExplainedVariance, nil)
	s.logger.Info().
		Int("n_users", result.NUsers).
		Int("n_events", result.NEvents).
		Int("n_factors", result.NFactor).
		Dur("duration", duration).
		Msg("scheduled training complete")
}

// String identifies the service in suture logs.
func (s *TrainingService) String() string {
	return "training-service"
}
