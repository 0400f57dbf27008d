// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

// Package recommend implements the event recommendation core.
//
// The pipeline turns raw heterogeneous interaction records (views, clicks,
// bookmarks, bookings, explicit ratings, promotion and notification
// responses) into a single quality-adjusted rating signal, factors the
// resulting user-event matrix with a truncated SVD, and serves ranked
// recommendations and similar-event lookups from the latent factors.
//
// # Components
//
//   - Interaction weighting: WeightInteractions applies seven multiplicative
//     signal-quality factors and produces the three training columns
//     (user, event, effective rating).
//   - Model: an immutable-once-trained latent factor model with a
//     popularity fallback for cold-start users.
//   - Engine: the serving component. It owns an atomically swappable model
//     handle so that concurrent reads never observe a partially trained
//     model, and a failed retrain leaves the previous model untouched.
//
// # Thread Safety
//
// A trained Model is read-only and safe for concurrent use. The Engine
// serializes training internally; Recommend and SimilarEvents may be called
// concurrently with training.
package recommend
