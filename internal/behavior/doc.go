// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

// Package behavior mines interaction logs for engagement patterns.
//
// It summarizes click and booking activity, clusters users by intent
// with a seeded k-means over standardized behavioral features, and
// provides two cold-start recommendation strategies (popularity prior
// and content similarity) together with an offline precision/recall/F1
// evaluation of either strategy against observed interactions.
package behavior
