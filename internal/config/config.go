// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

package config

import (
	"fmt"
	"time"
)

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Recommend RecommendConfig `koanf:"recommend"`
	Training  TrainingConfig  `koanf:"training"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig configures the HTTP listener and its middleware.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// Addr returns the host:port pair the server binds to.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RecommendConfig configures the recommendation engine.
type RecommendConfig struct {
	// NFactors is the latent dimensionality of the factorization.
	NFactors int `koanf:"n_factors"`

	// DefaultTopN is the recommendation list length when a request
	// does not specify one.
	DefaultTopN int `koanf:"default_top_n"`

	// ExcludeViewed drops already-interacted events from
	// recommendation lists by default.
	ExcludeViewed bool `koanf:"exclude_viewed"`

	// ModelPath is the model artifact location. Empty disables
	// persistence.
	ModelPath string `koanf:"model_path"`
}

// TrainingConfig configures the background retraining service.
type TrainingConfig struct {
	Enabled        bool          `koanf:"enabled"`
	TrainOnStartup bool          `koanf:"train_on_startup"`
	TrainInterval  time.Duration `koanf:"train_interval"`

	// MinInteractions is the smallest interaction log that triggers
	// a scheduled retrain; smaller logs are skipped, not failed.
	MinInteractions int `koanf:"min_interactions"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns the built-in defaults, applied before the
// config file and environment layers.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8080,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      60 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Recommend: RecommendConfig{
			NFactors:      10,
			DefaultTopN:   10,
			ExcludeViewed: true,
			ModelPath:     "/data/eventlens/model.gob.gz",
		},
		Training: TrainingConfig{
			Enabled:         true,
			TrainOnStartup:  false,
			TrainInterval:   24 * time.Hour,
			MinInteractions: 100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks the configuration for values that would leave the
// service unusable. Returns the first problem found.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1,65535], got %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive")
	}
	if !c.Server.RateLimitDisabled {
		if c.Server.RateLimitRequests < 1 {
			return fmt.Errorf("server.rate_limit_requests must be positive, got %d", c.Server.RateLimitRequests)
		}
		if c.Server.RateLimitWindow <= 0 {
			return fmt.Errorf("server.rate_limit_window must be positive")
		}
	}

	if c.Recommend.NFactors < 1 {
		return fmt.Errorf("recommend.n_factors must be positive, got %d", c.Recommend.NFactors)
	}
	if c.Recommend.DefaultTopN < 1 {
		return fmt.Errorf("recommend.default_top_n must be positive, got %d", c.Recommend.DefaultTopN)
	}

	if c.Training.Enabled {
		if c.Training.TrainInterval <= 0 {
			return fmt.Errorf("training.train_interval must be positive when training is enabled")
		}
		if c.Training.MinInteractions < 1 {
			return fmt.Errorf("training.min_interactions must be positive, got %d", c.Training.MinInteractions)
		}
	}

	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}

	return nil
}
