// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

// Package evaluation provides offline scoring of recommendation output.
//
// It covers ranked-retrieval quality (NDCG, MAP, Recall, Precision @K),
// beyond-accuracy metrics (diversity, novelty, popularity bias), fairness
// across user groups and content providers, and business KPIs. All metric
// functions are pure and total on well-formed input: degenerate inputs
// (empty lists, zero denominators) return documented zero values rather
// than errors.
//
// The Evaluator bundles metrics into timestamped reports and keeps an
// append-only in-memory history for the process lifetime.
package evaluation
