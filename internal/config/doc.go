// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

// Package config loads and validates the service configuration.
//
// Configuration is layered with koanf: struct defaults first, then an
// optional YAML config file, then ENVLENS_* environment variables, each
// layer overriding the previous one. Load fails fast on values that
// would leave the service in an unusable state.
package config
