// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

// Package main is the entry point for the Eventlens server.
//
// Eventlens serves collaborative-filtering event recommendations and an
// offline research API for evaluating them: ranking and beyond-accuracy
// metrics, fairness audits, feature ablations, model comparisons and
// behavior-log mining.
//
// # Startup order
//
//  1. Configuration: Koanf v2 layered load (defaults, config.yaml,
//     ENVLENS_* environment variables)
//  2. Logging: zerolog global logger per the logging config
//  3. Engine: recommendation engine, restoring a persisted model
//     artifact when one exists
//  4. Supervision: suture tree running the HTTP server and the
//     periodic training loop
//
// # Signal handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the HTTP server stops
// accepting connections and in-flight requests get the configured
// shutdown timeout to finish.
//
// # Example
//
//	export ENVLENS_SERVER_PORT=8080
//	export ENVLENS_RECOMMEND_MODEL_PATH=/data/eventlens/model.gob.gz
//	export ENVLENS_TRAINING_ENABLED=true
//	./eventlens
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/eventlens/eventlens/internal/api"
	"github.com/eventlens/eventlens/internal/config"
	"github.com/eventlens/eventlens/internal/logging"
	"github.com/eventlens/eventlens/internal/recommend"
	"github.com/eventlens/eventlens/internal/recommend/storage"
	"github.com/eventlens/eventlens/internal/supervisor"
	"github.com/eventlens/eventlens/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Config is not available yet, so this goes through the default logger.
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.Format = cfg.Logging.Format
	logCfg.Caller = cfg.Logging.Caller
	logging.Init(logCfg)
	logger := logging.Logger()

	logger.Info().
		Str("addr", cfg.Server.Addr()).
		Str("model_path", cfg.Recommend.ModelPath).
		Bool("training_enabled", cfg.Training.Enabled).
		Msg("eventlens starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := buildStore(cfg.Recommend.ModelPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize model storage")
	}
	if store == nil {
		logger.Info().Msg("model persistence disabled")
	}

	engine := recommend.NewEngine(logger, store)
	if err := engine.LoadArtifact(ctx); err != nil {
		// A corrupt artifact is not fatal; the engine serves popularity
		// fallbacks until the first training run.
		logger.Warn().Err(err).Msg("model artifact not restored")
	}

	server := api.NewServer(cfg, engine, logger)
	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      server.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree, err := supervisor.NewTree(logging.NewSlogLogger(), treeCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build supervision tree")
	}

	tree.AddAPIService(services.NewHTTPService(httpServer, cfg.Server.ShutdownTimeout))

	if cfg.Training.Enabled {
		tree.AddTrainingService(services.NewTrainingService(engine, services.TrainingConfig{
			TrainOnStartup:  cfg.Training.TrainOnStartup,
			TrainInterval:   cfg.Training.TrainInterval,
			MinInteractions: cfg.Training.MinInteractions,
			NFactors:        cfg.Recommend.NFactors,
		}, logger))
	} else {
		logger.Info().Msg("periodic training disabled")
	}

	logger.Info().Str("addr", cfg.Server.Addr()).Msg("serving")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("supervisor terminated with error")
		os.Exit(1)
	}

	if unstopped, err := tree.UnstoppedServiceReport(); err == nil && len(unstopped) > 0 {
		for _, svc := range unstopped {
			logger.Warn().Str("service", svc.Name).Msg("service did not stop in time")
		}
	}

	logger.Info().Msg("eventlens stopped")
}

// buildStore returns the model artifact store, or nil when persistence
// is disabled by an empty path. The engine accepts a nil store and
// simply keeps models in memory.
func buildStore(path string) (*storage.Store, error) {
	if path == "" {
		return nil, nil
	}
	return storage.NewStore(path)
}
