// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

// Package services wraps application components as suture services: the
// HTTP server and the periodic model training loop.
package services
