// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

package evaluation

import (
	"math"
	"sort"
)

// DiversityScore is the mean pairwise Jaccard distance between the
// feature sets of recommended items, over all C(n,2) pairs. Items with
// no feature data are skipped; fewer than two comparable items yields 0.
func DiversityScore(recommended []string, itemFeatures map[string][]string) float64 {
	var sets []map[string]struct{}
	for _, id := range recommended {
		feats, ok := itemFeatures[id]
		if !ok || len(feats) == 0 {
			continue
		}
		set := make(map[string]struct{}, len(feats))
		for _, f := range feats {
			set[f] = struct{}{}
		}
		sets = append(sets, set)
	}
	if len(sets) < 2 {
		return 0
	}

	var sum float64
	pairs := 0
	for i := 0; i < len(sets); i++ {
		for j := i + 1; j < len(sets); j++ {
			sum += 1.0 - jaccard(sets[i], sets[j])
			pairs++
		}
	}
	return sum / float64(pairs)
}

func jaccard(a, b map[string]struct{}) float64 {
	intersection := 0
	for f := range a {
		if _, ok := b[f]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// NoveltyScore is the mean self-information −log2(popularity/total) of
// recommended items. Items with zero observed popularity get the maximum
// novelty log2(total). Returns 0 for an empty list or zero total.
func NoveltyScore(recommended []string, popularity map[string]int, totalInteractions int) float64 {
	if len(recommended) == 0 || totalInteractions <= 0 {
		return 0
	}

	maxNovelty := math.Log2(float64(totalInteractions))
	var sum float64
	for _, id := range recommended {
		pop := popularity[id]
		if pop <= 0 {
			sum += maxNovelty
			continue
		}
		sum += -math.Log2(float64(pop) / float64(totalInteractions))
	}
	return sum / float64(len(recommended))
}

// PopularityBias is the mean popularity rank of recommended items, where
// rank 0 is the most popular known item. Items outside the known catalog
// get the worst-case rank equal to the catalog size. Lower values mean a
// stronger skew toward popular content. Returns 0 for an empty list.
func PopularityBias(recommended []string, popularity map[string]int) float64 {
	if len(recommended) == 0 {
		return 0
	}

	type itemPop struct {
		id  string
		pop int
	}
	catalog := make([]itemPop, 0, len(popularity))
	for id, pop := range popularity {
		catalog = append(catalog, itemPop{id: id, pop: pop})
	}
	// Descending popularity, id as the deterministic tiebreak.
	sort.Slice(catalog, func(i, j int) bool {
		if catalog[i].pop != catalog[j].pop {
			return catalog[i].pop > catalog[j].pop
		}
		return catalog[i].id < catalog[j].id
	})

	ranks := make(map[string]int, len(catalog))
	for rank, item := range catalog {
		ranks[item.id] = rank
	}

	var sum float64
	for _, id := range recommended {
		rank, ok := ranks[id]
		if !ok {
			rank = len(catalog)
		}
		sum += float64(rank)
	}
	return sum / float64(len(recommended))
}
