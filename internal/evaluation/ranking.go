// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

package evaluation

import "math"

// RankingMetric scores a ranked recommendation list against a relevance
// set at cutoff k. All metrics in this package satisfy this signature.
type RankingMetric func(recommended, relevant []string, k int) float64

func relevanceSet(relevant []string) map[string]struct{} {
	set := make(map[string]struct{}, len(relevant))
	for _, id := range relevant {
		set[id] = struct{}{}
	}
	return set
}

func topK(recommended []string, k int) []string {
	if k < len(recommended) {
		return recommended[:k]
	}
	return recommended
}

// NDCGAtK computes normalized discounted cumulative gain with binary
// relevance. The ideal DCG assumes min(|relevant|, k) hits in the top
// positions. Returns 0 when the ideal DCG is 0.
func NDCGAtK(recommended, relevant []string, k int) float64 {
	if k <= 0 || len(relevant) == 0 {
		return 0
	}
	rel := relevanceSet(relevant)

	var dcg float64
	for rank, id := range topK(recommended, k) {
		if _, ok := rel[id]; ok {
			dcg += 1.0 / math.Log2(float64(rank)+2)
		}
	}

	idealHits := min(len(rel), k)
	var idcg float64
	for rank := 0; rank < idealHits; rank++ {
		idcg += 1.0 / math.Log2(float64(rank)+2)
	}
	if idcg == 0 {
		return 0
	}
	return dcg / idcg
}

// MAPAtK computes mean average precision at k: the running precision at
// each relevant hit, averaged over min(|relevant|, k). Returns 0 for an
// empty relevance set.
func MAPAtK(recommended, relevant []string, k int) float64 {
	if k <= 0 || len(relevant) == 0 {
		return 0
	}
	rel := relevanceSet(relevant)

	var sum float64
	hits := 0
	for rank, id := range topK(recommended, k) {
		if _, ok := rel[id]; ok {
			hits++
			sum += float64(hits) / float64(rank+1)
		}
	}
	return sum / float64(min(len(rel), k))
}

// RecallAtK is the fraction of relevant items found in the top k.
// Returns 0 for an empty relevance set.
func RecallAtK(recommended, relevant []string, k int) float64 {
	if len(relevant) == 0 {
		return 0
	}
	rel := relevanceSet(relevant)

	hits := 0
	for _, id := range topK(recommended, k) {
		if _, ok := rel[id]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(rel))
}

// PrecisionAtK is the fraction of the top k that is relevant.
// Returns 0 when k is 0.
func PrecisionAtK(recommended, relevant []string, k int) float64 {
	if k <= 0 {
		return 0
	}
	rel := relevanceSet(relevant)

	hits := 0
	for _, id := range topK(recommended, k) {
		if _, ok := rel[id]; ok {
			hits++
		}
	}
	return float64(hits) / float64(k)
}
