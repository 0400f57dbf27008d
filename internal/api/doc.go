// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

// Package api is the HTTP transport adapter.
//
// It exposes the recommendation engine and the offline research
// toolkits (evaluation, features, model comparison, behavior mining)
// over a chi router. Handlers decode and validate requests, call into
// the domain packages and wrap results in the models.APIResponse
// envelope; no engine logic lives here.
package api
