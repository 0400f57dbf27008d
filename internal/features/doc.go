// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

// Package features derives model features from interaction and event
// attributes.
//
// Three extractor families add columns to a Frame: temporal (hour, day,
// cyclical encodings, season, lead times), price sensitivity (relative
// price, discounts, quintile tiers) and location distance (haversine
// distance, tiers, travel estimates). Extractors compose in any order,
// only ever add columns, and silently no-op for a family whose source
// fields are entirely absent.
//
// The package also provides ablation studies that measure each feature
// group's marginal contribution to prediction accuracy, and side-by-side
// comparison of whole feature sets.
package features
